package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/usecase"
)

// Output formats accepted by --format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	badgeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("0"))

	gradeColors = map[domain.Grade]lipgloss.Color{
		domain.GradeA: lipgloss.Color("#038141"),
		domain.GradeB: lipgloss.Color("#85BB2F"),
		domain.GradeC: lipgloss.Color("#FECB02"),
		domain.GradeD: lipgloss.Color("#EE8100"),
		domain.GradeE: lipgloss.Color("#E63E11"),
	}

	tipStyles = map[usecase.TipKind]lipgloss.Style{
		usecase.TipSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		usecase.TipInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		usecase.TipWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
)

func validFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// encode writes v as JSON or YAML. YAML goes through the JSON form so the
// custom grade and CO2 encodings are kept, along with field order.
func encode(w io.Writer, format string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if format == FormatJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	clearStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// clearStyle drops the flow/quoted styles a JSON document parses with
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

// gradeBadge renders a grade as a coloured letter; Unknown shows as C, dimmed
func gradeBadge(g domain.Grade) string {
	shown := g.Display()
	style := badgeStyle.Background(gradeColors[shown])
	if !g.Known() {
		return style.Faint(true).Render(shown.String() + "?")
	}
	return style.Render(shown.String())
}

func impactLine(i domain.Impact) string {
	if !i.HasData() {
		return string(domain.ImpactNoData)
	}
	return fmt.Sprintf("%d/100 %s (%s)", i.Score, i.Label, i.Range)
}

func renderProduct(w io.Writer, view *usecase.ProductView) {
	d := view.Details
	fmt.Fprintln(w, titleStyle.Render(d.Name))
	if d.Brand != "" {
		fmt.Fprintf(w, "Brand:        %s\n", d.Brand)
	}
	fmt.Fprintf(w, "Barcode:      %s %s\n", view.Barcode, mutedStyle.Render("via "+view.Strategy))
	fmt.Fprintf(w, "Nutrition:    %s\n", gradeBadge(view.Scores.NutritionGrade))
	fmt.Fprintf(w, "Environment:  %s\n", gradeBadge(view.Scores.EnvironmentGrade))
	fmt.Fprintf(w, "CO2:          %s\n", view.Scores.CO2.String())
	fmt.Fprintf(w, "Impact:       %s\n", impactLine(view.Scores.Impact))

	if d.AdditivesTotal > 0 {
		fmt.Fprintf(w, "Additives:    %s", strings.Join(d.Additives, ", "))
		if d.AdditivesTotal > len(d.Additives) {
			fmt.Fprintf(w, " (+%d more)", d.AdditivesTotal-len(d.Additives))
		}
		fmt.Fprintln(w)
	}

	if len(d.Nutrients) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Per 100g"))
		for _, n := range d.Nutrients {
			fmt.Fprintf(w, "  %-15s %g %s\n", n.Label, n.Value, n.Unit)
		}
	}

	if len(view.Tips) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Tips"))
		for _, tip := range view.Tips {
			fmt.Fprintf(w, "  %s\n", tipStyles[tip.Kind].Render("• "+tip.Text))
		}
	}

	if view.Scan != nil {
		fmt.Fprintf(w, "\n+%d points (total %d, level %d)\n", view.Scan.PointsEarned, view.Scan.TotalPoints, view.Scan.Level)
		if view.Scan.LeveledUp {
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Level up! You reached level %d", view.Scan.Level)))
		}
		for _, id := range view.Scan.NewlyEarned {
			fmt.Fprintf(w, "Achievement unlocked: %s\n", id)
		}
	}
}

func renderSearch(w io.Writer, view *usecase.SearchView) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fmt.Sprintf("%d results for", view.Count)), view.Query)
	if len(view.Candidates) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No products matched. Try a barcode or fewer words."))
		return
	}
	for _, c := range view.Candidates {
		name := c.Name
		if c.Brand != "" {
			name += " · " + c.Brand
		}
		fmt.Fprintf(w, "%s %s  %-14s %s\n",
			gradeBadge(c.Scores.NutritionGrade),
			gradeBadge(c.Scores.EnvironmentGrade),
			c.Barcode,
			name)
	}
}

func renderNotFound(w io.Writer, nf *domain.NotFoundError) {
	fmt.Fprintln(w, nf.Message())
	if len(nf.PaddedTried) > 0 {
		fmt.Fprintf(w, "Padded variants tried: %s\n", strings.Join(nf.PaddedTried, ", "))
	}
	fmt.Fprintf(w, "Examples: %s\n", strings.Join(nf.Suggestions, ", "))
}

func renderHistory(w io.Writer, filter domain.HistoryFilter, entries []domain.HistoryEntry) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fmt.Sprintf("%d scans", len(entries))), mutedStyle.Render("("+string(filter)+")"))
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s  %s  %-14s %s\n",
			gradeBadge(e.NutritionGrade),
			gradeBadge(e.EnvironmentGrade),
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Barcode,
			e.DisplayName)
	}
}

func renderProfile(w io.Writer, s *domain.ProfileSummary) {
	fmt.Fprintln(w, titleStyle.Render("Profile "+s.ProfileID))
	fmt.Fprintf(w, "Level %d · %d points · %d to next level (%d%%)\n", s.Level, s.Points, s.ToNextLevel, s.Progress)
	fmt.Fprintf(w, "Scans: %d · healthy choices: %d · eco choices: %d\n", s.Stats.TotalScans, s.Stats.HealthyChoices, s.Stats.EcoChoices)
	fmt.Fprintf(w, "Average nutrition %s  environment %s\n", gradeBadge(s.AvgNutrition), gradeBadge(s.AvgEnvironment))
	if s.AvgCO2Grams > 0 {
		fmt.Fprintf(w, "Average CO2: %s\n", domain.MeasuredCO2(s.AvgCO2Grams))
	}
	fmt.Fprintf(w, "Impact: %s · %s\n", impactLine(s.Impact), s.ImpactProfileTag)

	fmt.Fprintln(w, titleStyle.Render("Achievements"))
	for _, a := range s.Achievements {
		mark := mutedStyle.Render("[ ]")
		if a.Unlocked {
			mark = "[x]"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", mark, a.Title, a.Description)
	}

	if len(s.Recent) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Recent"))
		for _, e := range s.Recent {
			fmt.Fprintf(w, "  %s %s  %s\n", gradeBadge(e.NutritionGrade), gradeBadge(e.EnvironmentGrade), e.DisplayName)
		}
	}
}
