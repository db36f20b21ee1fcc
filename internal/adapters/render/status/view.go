package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ahamitd/notifyai/internal/application"
	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
	ChartWidth int
}

func renderView(status application.UsageStatus, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("NotifyAI Usage"),
	}

	if status.Provider == "" {
		lines = append(lines, s.empty.Render("No provider configured. Run `notifyai auth set` first."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines,
		s.provider.Render(fmt.Sprintf("%s / %s", status.Provider, status.Model)),
		s.section.Render(dailyLine(status, opts, s)),
		s.detail.Render(remainingLine(status)),
	)

	if line := quotaLine(status.Quota, opts, s); line != "" {
		lines = append(lines, line)
	}

	lines = append(lines, s.section.Render(lastCallLine(status.Counters, opts.Now, s)))
	if status.Counters.LastError != "" {
		lines = append(lines, s.failure.Render("last error: "+status.Counters.LastError))
	}

	if chart := historyChart(status.History, opts.ChartWidth, s); chart != "" {
		lines = append(lines, s.section.Render(chart))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func dailyLine(status application.UsageStatus, opts RenderOptions, s styles) string {
	count := status.Counters.DailyCount
	label := s.limitKey.Render("daily calls:")

	if status.DailyLimit <= 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.detail.Render(fmt.Sprintf("%s (limit unknown)", domain.CompactCount(count))))
	}

	usedPercent := float64(count) / float64(status.DailyLimit) * 100
	leftPercent := clampPercent(100 - usedPercent)
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(leftPercent, 0, 100))

	parts := []string{
		label,
		" ",
		renderProgressBar(usedPercent, 24, s),
		" ",
		s.detail.Render(fmt.Sprintf("%s / %s", domain.CompactCount(count), domain.CompactCount(status.DailyLimit))),
		" ",
		percentStyle.Render(fmt.Sprintf("%2.0f%% left", leftPercent)),
	}
	if !opts.Now.IsZero() {
		parts = append(parts, " ", s.header.Render(fmt.Sprintf("(%s)", formatResetRelative(nextMidnight(opts.Now), opts.Now))))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func remainingLine(status application.UsageStatus) string {
	if status.Remaining < 0 {
		return "remaining today: unknown"
	}
	return fmt.Sprintf("remaining today: %s", domain.CompactCount(status.Remaining))
}

func quotaLine(quota *domain.QuotaSnapshot, opts RenderOptions, s styles) string {
	if quota == nil || quota.RequestsPerMinuteLimit <= 0 {
		return ""
	}

	line := s.detail.Render(fmt.Sprintf("per minute: %d of %d left", quota.RequestsPerMinuteRemaining, quota.RequestsPerMinuteLimit))
	if !opts.Now.IsZero() && quota.IsStale(opts.Now, opts.StaleAfter) {
		line += " " + s.warning.Render("[stale]")
	}
	return line
}

func lastCallLine(counters domain.UsageCounters, now time.Time, s styles) string {
	if counters.LastCallTime.IsZero() {
		return s.empty.Render("no calls yet")
	}

	statusStyle := s.detail
	if counters.LastCallStatus == domain.CallStatusError {
		statusStyle = s.failure
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.limitKey.Render("last call:"),
		" ",
		statusStyle.Render(counters.LastCallStatus),
		" ",
		s.header.Render(formatCallTime(counters.LastCallTime, now)),
	)
}

func historyChart(history []ports.DailyCount, width int, s styles) string {
	if len(history) < 2 {
		return ""
	}
	if width < 20 {
		width = 20
	}

	data := make([]float64, 0, len(history))
	for _, day := range history {
		data = append(data, float64(day.Count))
	}

	caption := fmt.Sprintf("calls per day, %s to %s",
		history[0].Day.Format("02 Jan"), history[len(history)-1].Day.Format("02 Jan"))

	return s.chart.Render(asciigraph.Plot(data,
		asciigraph.Height(5),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	))
}

func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	leftFraction := (100.0 - used) / 100.0
	filled := int(math.Round(float64(width) * leftFraction))
	filled = min(max(filled, 0), width)

	empty := width - filled
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatCallTime(at, now time.Time) string {
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.In(now.Location()).Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return "at " + at.In(now.Location()).Format("15:04")
	}

	return "at " + at.In(now.Location()).Format("15:04 on 02 Jan")
}

func formatResetRelative(resetsAt, now time.Time) string {
	if !resetsAt.After(now) {
		return "resets now"
	}

	remaining := resetsAt.Sub(now)
	hours := int(math.Ceil(remaining.Hours()))
	if hours <= 1 {
		minutes := max(int(math.Ceil(remaining.Minutes())), 1)
		return fmt.Sprintf("resets in %d min", minutes)
	}

	return fmt.Sprintf("resets in %d hours", hours)
}

func nextMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp: 240 (faded) at min, 255 (bright) at max.
	interpolated := 240.0 + (255.0-240.0)*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
