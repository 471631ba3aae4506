// Package console renders notices and reminder stats for the command line.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"stretchtime/internal/core/notice"
	"stretchtime/internal/core/reminder"
)

type styles struct {
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer) styles {
	return styles{
		info: renderer.NewStyle().
			Foreground(lipgloss.Color("39")),
		success: renderer.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true),
		warning: renderer.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
		failure: renderer.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		label: renderer.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(16),
		value: renderer.NewStyle().
			Bold(true),
	}
}

// Emitter prints notices as styled lines.
type Emitter struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
}

// NewEmitter writes to out, choosing colours for the terminal behind it.
func NewEmitter(out io.Writer) *Emitter {
	return &Emitter{
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Show implements notice.Emitter.
func (emitter *Emitter) Show(message string, kind notice.Kind) {
	line := emitter.styles.forKind(kind).Render(prefix(kind) + " " + message)

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	fmt.Fprintln(emitter.out, line)
}

// Stats prints reminder statistics as an aligned list.
func (emitter *Emitter) Stats(stats reminder.Stats) {
	enabled := "no"
	if stats.Enabled {
		enabled = "yes"
	}
	rows := [][2]string{
		{"Enabled", enabled},
		{"Scheduled time", stats.ScheduledTime},
		{"Permission", string(stats.Permission)},
		{"Reminders sent", fmt.Sprintf("%d", stats.Total)},
		{"This week", fmt.Sprintf("%d", stats.ThisWeek)},
	}

	var builder strings.Builder
	for _, row := range rows {
		builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			emitter.styles.label.Render(row[0]),
			emitter.styles.value.Render(row[1]),
		))
		builder.WriteString("\n")
	}

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	io.WriteString(emitter.out, builder.String())
}

func (s styles) forKind(kind notice.Kind) lipgloss.Style {
	switch kind {
	case notice.Success:
		return s.success
	case notice.Warning:
		return s.warning
	case notice.Error:
		return s.failure
	default:
		return s.info
	}
}

func prefix(kind notice.Kind) string {
	switch kind {
	case notice.Success:
		return "✓"
	case notice.Warning:
		return "!"
	case notice.Error:
		return "✗"
	default:
		return "•"
	}
}
