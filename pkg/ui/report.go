package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/rewards-distributor/business/rewards/app"
)

// RenderReport formats a diagnostics report as a bordered box.
func RenderReport(r *app.Report) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(r.Title))
	b.WriteString("\n")
	b.WriteString(MutedValue.Render(r.GeneratedAt.UTC().Format(time.RFC3339)))
	b.WriteString("\n\n")

	rows := make([]string, 0, len(r.Checks))
	for _, c := range r.Checks {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			NameStyle.Render(c.Name),
			badge(c.Status),
			" ",
			c.Detail,
		))
	}
	b.WriteString(BoxStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	switch {
	case r.Failed():
		b.WriteString(FailStyle.Render(fmt.Sprintf("%d check(s) failed", count(r, app.CheckFail))))
	case count(r, app.CheckWarn) > 0:
		b.WriteString(WarnStyle.Render(fmt.Sprintf("passed with %d warning(s)", count(r, app.CheckWarn))))
	default:
		b.WriteString(PassStyle.Render("all checks passed"))
	}
	b.WriteString("\n")
	return b.String()
}

func badge(s app.CheckStatus) string {
	label := fmt.Sprintf("[%-4s]", strings.ToUpper(string(s)))
	switch s {
	case app.CheckPass:
		return PassStyle.Render(label)
	case app.CheckFail:
		return FailStyle.Render(label)
	case app.CheckWarn:
		return WarnStyle.Render(label)
	default:
		return MutedValue.Render(label)
	}
}

func count(r *app.Report, s app.CheckStatus) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == s {
			n++
		}
	}
	return n
}
