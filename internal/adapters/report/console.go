// Package report renders consistency summaries, scored races and standings
// for the console or as JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
)

// Console writes human-readable reports.
type Console struct {
	out      io.Writer
	verbose  bool
	colorize bool
}

// NewConsole creates a console reporter. Verbose adds informational issues
// and passing categories.
func NewConsole(out io.Writer, verbose, colorize bool) *Console {
	return &Console{out: out, verbose: verbose, colorize: colorize}
}

func (c *Console) style(color string) lipgloss.Style {
	if !c.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (c *Console) severityStyle(sev consistency.Severity) lipgloss.Style {
	switch sev {
	case consistency.SeverityError:
		return c.style("9") // red
	case consistency.SeverityWarning:
		return c.style("3") // yellow
	default:
		return c.style("7") // gray
	}
}

func (c *Console) statusMark(st consistency.Status) string {
	switch st {
	case consistency.StatusError:
		return c.style("9").Render("✗")
	case consistency.StatusWarning:
		return c.style("3").Render("⚠")
	default:
		return c.style("10").Render("✓")
	}
}

// Summary prints every category with its issues, then the totals.
func (c *Console) Summary(sum consistency.Summary) error {
	var b strings.Builder
	label := lipgloss.NewStyle().Width(14)

	for _, r := range sum.Results {
		fmt.Fprintf(&b, "%s %s %d/%d valid\n", c.statusMark(r.Status), label.Render(string(r.Category)), r.Valid, r.Total)
		for _, is := range r.Issues {
			if is.Severity == consistency.SeverityInfo && !c.verbose {
				continue
			}
			c.writeIssue(&b, is)
		}
	}

	fmt.Fprintf(&b, "\n%d passed, %d warnings, %d errors (run %s)\n", sum.Passed, sum.Warnings, sum.Errors, sum.CorrelationID)
	_, err := io.WriteString(c.out, b.String())
	return err
}

func (c *Console) writeIssue(b *strings.Builder, is consistency.Issue) {
	prefix := "    "
	switch is.Severity {
	case consistency.SeverityError:
		prefix = "    ✘ "
	case consistency.SeverityWarning:
		prefix = "    ⚠ "
	case consistency.SeverityInfo:
		prefix = "    ℹ "
	}
	entity := is.Entity
	if is.Field != "" {
		entity += "." + is.Field
	}
	fmt.Fprintf(b, "%s%s: %s\n", prefix, c.severityStyle(is.Severity).Render(entity), is.Message)
}

// Race prints the scores computed for one race and the skipped predictions.
func (c *Console) Race(u standings.Update) error {
	var b strings.Builder
	team := lipgloss.NewStyle().Width(20)
	pts := lipgloss.NewStyle().Width(4).Align(lipgloss.Right)

	for _, d := range u.Race {
		note := ""
		if d.CarriedForward {
			note = c.style("7").Render(" (carried forward from " + d.SourceRaceID + ")")
		}
		fmt.Fprintf(&b, "%s %s  %s%s\n", team.Render(d.OwnerID), pts.Render(fmt.Sprint(d.TotalPoints)), d.Breakdown, note)
	}
	for _, s := range u.Skipped {
		owner := s.OwnerID
		if owner == "" {
			owner = "(no owner)"
		}
		fmt.Fprintf(&b, "%s %s\n", team.Render(owner), c.style("3").Render("skipped: "+string(s.Reason)))
	}
	_, err := io.WriteString(c.out, b.String())
	return err
}

// Standings prints the ranked table.
func (c *Console) Standings(entries []types.Entry) error {
	var b strings.Builder
	rank := lipgloss.NewStyle().Width(4).Align(lipgloss.Right)
	team := lipgloss.NewStyle().Width(20).PaddingLeft(2)
	head := c.style("12").Bold(c.colorize)

	fmt.Fprintf(&b, "%s%s%s\n", rank.Render(head.Render("#")), team.Render(head.Render("Team")), head.Render("Points"))
	for _, e := range entries {
		fmt.Fprintf(&b, "%s%s%d\n", rank.Render(fmt.Sprint(e.Rank)), team.Render(e.TeamID), e.Points)
	}
	_, err := io.WriteString(c.out, b.String())
	return err
}
