package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// StaleAfter flags records older than this. Zero disables the flag.
	StaleAfter time.Duration
}

func renderView(record *domain.SessionRecord, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("Last session")}

	if record == nil {
		lines = append(lines, s.empty.Render("No session recorded yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.header.Render(fmt.Sprintf("id: %s", record.ID)))

	fields := []string{
		field("status", codeBadge(record.Code, s), s),
		field("pool", s.detail.Render(record.PoolName), s),
		field("user", s.detail.Render(record.Username), s),
		field("endpoint", s.detail.Render(orNone(record.Endpoint)), s),
		field("started", startedLine(record.StartedAt, opts, s), s),
		field("acquired", s.detail.Render(formatDuration(record.Duration())), s),
	}
	fields = append(fields, launchLine(record, s))

	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, fields...)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(name string, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(name+":"), " ", value)
}

func codeBadge(code domain.StatusCode, s styles) string {
	label := fmt.Sprintf("%d %s", code, code.Message())
	switch code {
	case domain.StatusSuccess:
		return s.success.Render(label)
	case domain.StatusBadCredentials:
		return s.caution.Render(label)
	default:
		return s.problem.Render(label)
	}
}

func startedLine(started time.Time, opts RenderOptions, s styles) string {
	if started.IsZero() {
		return s.detail.Render("unknown")
	}

	local := started.Local()
	if opts.Now.IsZero() {
		return s.detail.Render(local.Format(time.RFC3339))
	}

	age := opts.Now.Sub(started)
	color := interpolateColor(float64(24*time.Hour-age), 0, float64(24*time.Hour))
	line := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%s (%s)", formatAge(age), local.Format("15:04 on 02 Jan")))

	if opts.StaleAfter > 0 && age > opts.StaleAfter {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func launchLine(record *domain.SessionRecord, s styles) string {
	switch {
	case record.LaunchedAt.IsZero():
		return field("launch", s.faintest.Render("not launched"), s)
	case record.LaunchError != "":
		return field("launch", s.problem.Render("failed: "+record.LaunchError), s)
	default:
		return field("launch", s.success.Render("ok"), s)
	}
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "none"
	}

	return value
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}

	return d.Round(time.Second).String()
}

func formatAge(age time.Duration) string {
	if age < time.Minute {
		return "just now"
	}
	if age < time.Hour {
		minutes := int(age.Minutes())
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "minute"))
	}
	if age < 24*time.Hour {
		hours := int(age.Hours())
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	}

	days := int(math.Floor(age.Hours() / 24))
	return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}

	return unit + "s"
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
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

	const (
		baseColor   = 240.0
		targetColor = 255.0
	)

	return lipgloss.Color(fmt.Sprintf("%d", int(baseColor+(targetColor-baseColor)*normalized)))
}
