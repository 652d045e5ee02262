package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daypulse/bot/internal/core/domain"
	"github.com/daypulse/bot/internal/core/ports"
)

// surveyDayShift moves the day boundary so late-evening polls and their
// after-midnight answers land on the same survey day.
const surveyDayShift = -22 * time.Hour

const statsBarWidth = 20

// SurveyDay maps an instant to the survey day its answers belong to.
func SurveyDay(now time.Time) time.Time {
	return now.Add(surveyDayShift)
}

type statsService struct {
	answers ports.AnswerRepository
	logger  *slog.Logger
}

func NewStatsService(answers ports.AnswerRepository, logger *slog.Logger) ports.StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &statsService{
		answers: answers,
		logger:  logger,
	}
}

func (s *statsService) DailyReport(ctx context.Context, kind domain.PollKind, chatTgID int64, now time.Time) (string, error) {
	day := SurveyDay(now)

	stats, err := s.answers.GetDayStats(ctx, kind, day)
	if err != nil {
		return "", fmt.Errorf("reading day stats: %w", err)
	}

	personal, err := s.answers.GetUserStats(ctx, kind, chatTgID, now.Add(-7*24*time.Hour), now.Add(-time.Minute))
	if err != nil {
		return "", fmt.Errorf("reading personal stats: %w", err)
	}

	var b strings.Builder
	b.WriteString("Today so far:\n")
	b.WriteString(renderDistribution(stats, kind.StaticOptions()))

	if len(personal) > 0 {
		b.WriteString("\nYour last week: ")
		b.WriteString(renderPersonalWeek(personal, kind.StaticOptions()))
		b.WriteString("\n")
	}

	return b.String(), nil
}

// renderDistribution draws a left-to-right bar per option, scaled to the most
// selected one.
func renderDistribution(stats []domain.PollStat, labels []string) string {
	counts := make([]int64, len(labels))
	var total, max int64
	for _, stat := range stats {
		if stat.SelectedValue < 0 || stat.SelectedValue >= len(counts) {
			continue
		}
		counts[stat.SelectedValue] = stat.NSelected
		total += stat.NSelected
		if stat.NSelected > max {
			max = stat.NSelected
		}
	}

	if total == 0 {
		return "no answers yet\n"
	}

	width := 0
	for _, label := range labels {
		if len(label) > width {
			width = len(label)
		}
	}

	var b strings.Builder
	for idx, label := range labels {
		bar := int(counts[idx] * statsBarWidth / max)
		fmt.Fprintf(&b, "%-*s %s %d%%\n",
			width, label,
			strings.Repeat("█", bar),
			counts[idx]*100/total,
		)
	}
	return b.String()
}

func renderPersonalWeek(personal []domain.PollUserStat, labels []string) string {
	parts := make([]string, 0, len(personal))
	for _, stat := range personal {
		if stat.SelectedValue < 0 || stat.SelectedValue >= len(labels) {
			continue
		}
		// Short form of the option label, e.g. "+2 (perfect)" -> "+2".
		label, _, _ := strings.Cut(labels[stat.SelectedValue], " ")
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}
