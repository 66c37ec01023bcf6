package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// consoleStyles colors grades and headers.
type consoleStyles struct {
	header lipgloss.Style
	gradeA lipgloss.Style
	gradeB lipgloss.Style
	gradeC lipgloss.Style
	gradeF lipgloss.Style
	dim    lipgloss.Style
	warn   lipgloss.Style
}

func newConsoleStyles() consoleStyles {
	return consoleStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		gradeA: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		gradeB: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		gradeC: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		gradeF: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// ConsoleFormatter renders one table per profile followed by a warning
// summary.
type ConsoleFormatter struct {
	styles consoleStyles
	// Limit caps rows per profile; zero shows all.
	Limit int
}

// NewConsoleFormatter creates a ConsoleFormatter.
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{styles: newConsoleStyles()}
}

// Format renders report.
func (f *ConsoleFormatter) Format(w io.Writer, report model.Report) error {
	title := fmt.Sprintf("Season %d", report.Season)
	if report.Variant != "" {
		title += " (" + report.Variant + " weights)"
	}
	if _, err := fmt.Fprintln(w, f.styles.header.Render(title)); err != nil {
		return err
	}

	byProfile := map[string][]model.Bundle{}
	for _, b := range report.Bundles {
		byProfile[b.Profile] = append(byProfile[b.Profile], b)
	}
	for _, p := range report.Profiles {
		if err := f.profile(w, p, byProfile[p.Profile]); err != nil {
			return err
		}
	}
	return f.warnings(w, report.Warnings)
}

func (f *ConsoleFormatter) profile(w io.Writer, p model.ProfileSummary, bundles []model.Bundle) error {
	head := fmt.Sprintf("\n%s: %d players", p.Profile, p.Players)
	if len(p.Cohorts) > 0 {
		head += ", cohorts " + strings.Join(p.Cohorts, " ")
	}
	if p.Shortlisted > 0 {
		head += fmt.Sprintf(", %d shortlisted", p.Shortlisted)
	}
	if _, err := fmt.Fprintln(w, f.styles.header.Render(head)); err != nil {
		return err
	}
	if len(p.StyleMetrics) > 0 {
		if _, err := fmt.Fprintln(w, f.styles.dim.Render("style metrics: "+strings.Join(p.StyleMetrics, ", "))); err != nil {
			return err
		}
	}
	if len(bundles) == 0 {
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.styles.dim).
		Headers("#", "Player", "Team", "Cohort", "Total", "Pctl", "Scale", "Grade", "Broad", "Consist", "Style", "TopN", "Delta", "List")
	for i, b := range bundles {
		if f.Limit > 0 && i == f.Limit {
			break
		}
		name := b.PlayerID
		if b.Name != "" {
			name = b.Name
		}
		style := "-"
		if b.StyleFit != nil {
			style = fmt.Sprintf("%d/%d", b.StyleFit.Count, b.StyleFit.Qualified)
		}
		listed := ""
		if b.Shortlisted {
			listed = "yes"
		}
		t.Row(
			strconv.Itoa(i+1),
			name,
			b.Team,
			b.Score.Cohort,
			fmt.Sprintf("%.2f", b.Score.TotalScore),
			fmt.Sprintf("%.1f", b.Score.Percentile),
			fmt.Sprintf("%.1f", b.Score.Scale),
			f.grade(b.Score.Grade),
			f.grade(b.Score.Broad.Grade),
			fmt.Sprintf("%.1f", b.Consistency.Score),
			style,
			strconv.Itoa(b.TopNCount),
			delta(b.Progression),
			listed,
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func (f *ConsoleFormatter) grade(g string) string {
	switch g {
	case "A":
		return f.styles.gradeA.Render(g)
	case "B":
		return f.styles.gradeB.Render(g)
	case "C", "D":
		return f.styles.gradeC.Render(g)
	default:
		return f.styles.gradeF.Render(g)
	}
}

func delta(p *model.ProgressionResult) string {
	if p == nil {
		return ""
	}
	switch p.Status {
	case model.HasPriorScore:
		return fmt.Sprintf("%+.2f", *p.Delta)
	case model.PositionChanged:
		return "moved"
	default:
		return "new"
	}
}

func (f *ConsoleFormatter) warnings(w io.Writer, ws []model.Warning) error {
	if len(ws) == 0 {
		return nil
	}
	counts := map[model.WarningKind]int{}
	for _, wr := range ws {
		counts[wr.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[model.WarningKind(k)])
	}
	_, err := fmt.Fprintln(w, f.styles.warn.Render(fmt.Sprintf("\n%d warnings: %s", len(ws), strings.Join(parts, " "))))
	return err
}
