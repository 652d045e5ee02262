package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

const (
	welcomeText = "Hi! Once a day I will ask you how your day went " +
		"and collect the answers into your personal mood history.\n\n" +
		"The first poll is on its way. Send /stop any time to pause."
	welcomeBackText = "You are already subscribed. The next poll arrives on schedule."
	stoppedText     = "Subscription paused. Send /start whenever you want to resume."
	firstAnswerText = "First answer recorded! Keep going: the history becomes " +
		"interesting after a week or so. /get_stat shows how everyone else is doing."
	answerSavedText   = "Saved."
	eventsSavedText   = "Events recorded."
	optionsPromptText = "Pick the daily events you want to track. " +
		"Press Done when you are happy with the selection."
	selectionQueued    = "Selection saved, the next events poll is queued."
	selectionUnchanged = "Selection saved."
	selectionDisabled  = "Empty selection, events polls are paused. " +
		"Run /daily_events again to re-enable them."
	scheduleUsageText = "Send the time as /setup_schedule HH:MM (UTC), for example /setup_schedule 21:30."
	scheduleSetText   = "Done! New polls will arrive at the chosen time."
	helpText          = "Here is what I can do:\n\n" +
		"/start - subscribe to the daily mood poll\n" +
		"/stop - pause the subscription\n" +
		"/get_stat - today's community mood and your last week\n" +
		"/daily_events - choose the daily events to track\n" +
		"/setup_schedule - set the poll time, for example /setup_schedule 21:30\n" +
		"/help - show this message"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	logger := b.logger.With("chat_tg_id", chatID, "command", msg.Command())

	var err error
	switch msg.Command() {
	case "start":
		err = b.handleStart(ctx, chatID)
	case "stop":
		err = b.handleStop(ctx, chatID)
	case "get_stat":
		err = b.handleGetStat(ctx, chatID)
	case "daily_events":
		err = b.handleDailyEvents(ctx, chatID)
	case "setup_schedule":
		err = b.handleSetupSchedule(ctx, chatID, msg.CommandArguments())
	case "help":
		err = b.channel.SendMessage(ctx, chatID, helpText)
	default:
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) error {
	result, err := b.services.Subscriptions.Subscribe(ctx, chatID)
	if err != nil {
		return err
	}
	if result.AlreadyActive {
		return b.channel.SendMessage(ctx, chatID, welcomeBackText)
	}
	return b.channel.SendMessage(ctx, chatID, welcomeText)
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) error {
	if _, err := b.services.Subscriptions.Unsubscribe(ctx, chatID); err != nil {
		return err
	}
	return b.channel.SendMessage(ctx, chatID, stoppedText)
}

func (b *Bot) handleGetStat(ctx context.Context, chatID int64) error {
	report, err := b.services.Stats.DailyReport(ctx, domain.PollKindHowWasYourDay, chatID, time.Now().UTC())
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, report)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleDailyEvents(ctx context.Context, chatID int64) error {
	selection, err := b.services.Options.GetSelection(ctx, chatID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, optionsPromptText)
	msg.ReplyMarkup = optionsKeyboard(selection)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleSetupSchedule(ctx context.Context, chatID int64, args string) error {
	at, err := domain.ParseTimeOfDay(strings.TrimSpace(args))
	if err != nil {
		return b.channel.SendMessage(ctx, chatID, scheduleUsageText)
	}
	if err := b.services.Settings.SetSendAt(ctx, chatID, at); err != nil {
		return err
	}
	return b.channel.SendMessage(ctx, chatID, scheduleSetText)
}

// handlePollUpdate ingests a poll-state event. Telegram sends one whenever the
// vote set of a non-anonymous poll changes.
func (b *Bot) handlePollUpdate(ctx context.Context, poll *tgbotapi.Poll) {
	update := ports.PollUpdate{TgID: poll.ID}
	for _, option := range poll.Options {
		update.Options = append(update.Options, ports.AnsweredOption{
			Text:       option.Text,
			VoterCount: option.VoterCount,
		})
	}

	answered, err := b.services.Answers.Ingest(ctx, update)
	if err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			b.logger.WarnContext(ctx, "answer for unknown poll", "poll_tg_id", poll.ID)
			return
		}
		b.logger.ErrorContext(ctx, "failed to ingest answer", "poll_tg_id", poll.ID, "error", err)
		return
	}

	if err := b.react(ctx, answered); err != nil {
		b.logger.WarnContext(ctx, "failed to acknowledge answer",
			"chat_tg_id", answered.ChatTgID, "error", err)
	}
}

// react sends the post-answer acknowledgement. The first answer to the mood
// poll gets an onboarding message instead of the short one.
func (b *Bot) react(ctx context.Context, poll *domain.Poll) error {
	switch poll.Kind {
	case domain.PollKindHowWasYourDay:
		count, err := b.services.Users.CountAnsweredPolls(ctx, poll.ChatTgID, poll.Kind)
		if err != nil {
			return err
		}
		if count == 1 {
			return b.channel.SendMessage(ctx, poll.ChatTgID, firstAnswerText)
		}
		return b.channel.SendMessage(ctx, poll.ChatTgID, answerSavedText)
	case domain.PollKindDailyEvents:
		return b.channel.SendMessage(ctx, poll.ChatTgID, eventsSavedText)
	default:
		return nil
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	logger := b.logger.With("chat_tg_id", chatID, "callback", cq.Data)

	var (
		selection *domain.PollCustomOptions
		err       error
	)
	switch {
	case cq.Data == callbackEnableAll:
		selection, err = b.services.Options.EnableAll(ctx, chatID)
	case cq.Data == callbackDisableAll:
		selection, err = b.services.Options.DisableAll(ctx, chatID)
	case cq.Data == callbackDone:
		b.completeSelection(ctx, cq)
		return
	default:
		option, ok := toggledOption(cq.Data)
		if !ok {
			return
		}
		selection, err = b.services.Options.Toggle(ctx, chatID, option)
	}
	if err != nil {
		logger.ErrorContext(ctx, "callback failed", "error", err)
		b.answerCallback(cq.ID, "Something went wrong, try again")
		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, cq.Message.MessageID, optionsKeyboard(selection))
	if _, err := b.api.Send(edit); err != nil {
		logger.WarnContext(ctx, "failed to refresh keyboard", "error", err)
	}
	b.answerCallback(cq.ID, "")
}

func (b *Bot) completeSelection(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	outcome, err := b.services.Options.Complete(ctx, chatID)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to complete selection", "chat_tg_id", chatID, "error", err)
		b.answerCallback(cq.ID, "Something went wrong, try again")
		return
	}
	b.answerCallback(cq.ID, "")

	// Selection flow is over, drop the keyboard message.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, cq.Message.MessageID)); err != nil {
		b.logger.WarnContext(ctx, "failed to delete keyboard message", "chat_tg_id", chatID, "error", err)
	}

	text := selectionUnchanged
	switch outcome {
	case ports.SelectionQueued:
		text = selectionQueued
	case ports.SelectionDisabled:
		text = selectionDisabled
	}
	if err := b.channel.SendMessage(ctx, chatID, text); err != nil {
		b.logger.WarnContext(ctx, "failed to confirm selection", "chat_tg_id", chatID, "error", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warn("failed to answer callback query", "error", err)
	}
}
