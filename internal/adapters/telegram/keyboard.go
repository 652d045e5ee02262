package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daypulse/bot/internal/core/domain"
)

const (
	callbackToggle     = "opt|"
	callbackEnableAll  = "opt-all"
	callbackDisableAll = "opt-none"
	callbackDone       = "opt-done"
)

// optionsKeyboard renders the DailyEvents catalogue as an inline keyboard with
// a check mark on every enabled option. Callback data carries the option text,
// which the catalogue keeps short enough for the 64-byte limit.
func optionsKeyboard(selection *domain.PollCustomOptions) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(domain.DailyEventsCatalogue)+1)

	for _, option := range domain.DailyEventsCatalogue {
		label := option
		if selection.Enabled(option) {
			label = "✅ " + option
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackToggle+option),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("All", callbackEnableAll),
		tgbotapi.NewInlineKeyboardButtonData("None", callbackDisableAll),
		tgbotapi.NewInlineKeyboardButtonData("Done", callbackDone),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// toggledOption extracts the option text from toggle callback data, reporting
// false for any other callback.
func toggledOption(data string) (string, bool) {
	return strings.CutPrefix(data, callbackToggle)
}
