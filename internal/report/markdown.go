package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/scorelens-cli/internal/analysis"
)

// Markdown renders every computed section as plain Markdown.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[RUN]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(r.Columns, ", ")))

	if r.Summary != nil {
		b.WriteString("\n[DESCRIPTIVE STATISTICS]\n")
		writeSummary(&b, r.Summary)
	}
	if r.Subgroups != nil {
		b.WriteString("\n[CORRELATIONS]\n")
		writeCorr(&b, fmt.Sprintf("All rows (n=%d)", r.Subgroups.All.Rows), r.Subgroups.All)
		writeCorr(&b, fmt.Sprintf("First %d rows (%s)", r.Subgroups.Bottom.Rows, span(r.Subgroups.BottomRows)), r.Subgroups.Bottom)
		writeCorr(&b, fmt.Sprintf("Last %d rows (%s)", r.Subgroups.Top.Rows, span(r.Subgroups.TopRows)), r.Subgroups.Top)
	}
	if len(r.Distributions) > 0 {
		b.WriteString("\n[DISTRIBUTIONS]\n")
		for _, d := range r.Distributions {
			writeDist(&b, d)
		}
	}
	if len(r.Box) > 0 {
		b.WriteString(fmt.Sprintf("\n[%s BY %s]\n", strings.ToUpper(r.BoxOf), strings.ToUpper(r.BoxBy)))
		b.WriteString(fmt.Sprintf("| %s | n | min | 25%% | median | 75%% | max |\n", r.BoxBy))
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
		for _, g := range r.Box {
			b.WriteString(fmt.Sprintf("| %.4g | %d | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				g.Key, g.Count, g.Min, g.P25, g.Median, g.P75, g.Max))
		}
	}
	if len(r.Elbow) > 0 {
		b.WriteString("\n[ELBOW]\n")
		for _, p := range r.Elbow {
			b.WriteString(fmt.Sprintf("- k=%d: inertia %.4f", p.K, p.Inertia))
			if !p.Converged {
				b.WriteString(" (not converged)")
			}
			b.WriteString("\n")
		}
	}
	if c := r.Clusters; c != nil {
		b.WriteString("\n[CLUSTERS]\n")
		b.WriteString(fmt.Sprintf("k=%d, inertia %.4f, %d iterations, best of %d restarts", c.K, c.Inertia, c.Iterations, c.Restarts))
		if !c.Converged {
			b.WriteString(", not converged")
		}
		b.WriteString("\n")
		for k := range c.Centroids {
			parts := make([]string, len(c.Columns))
			for j, name := range c.Columns {
				parts[j] = fmt.Sprintf("%s %.2f", name, c.Centroids[k][j])
			}
			b.WriteString(fmt.Sprintf("- cluster %d (n=%d): %s\n", k, c.Sizes[k], strings.Join(parts, ", ")))
			b.WriteString(fmt.Sprintf("  rows: %s\n", joinInts(c.Members(k))))
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

func writeSummary(b *strings.Builder, s *analysis.Summary) {
	b.WriteString("| stat |")
	for _, c := range s.Columns {
		b.WriteString(" " + c.Name + " |")
	}
	b.WriteString("\n|---|")
	for range s.Columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	m := s.Map()
	for _, stat := range analysis.StatNames {
		b.WriteString("| " + stat + " |")
		for _, c := range s.Columns {
			b.WriteString(" " + m[c.Name][stat].String() + " |")
		}
		b.WriteString("\n")
	}
	for _, c := range s.Columns {
		if c.Outliers.Threshold > 0 && c.Outliers.MaxAbsZ.Valid {
			b.WriteString(fmt.Sprintf("- %s: outliers: %d above |z|>%.1f (max |z|≈%.2f)\n",
				c.Name, c.Outliers.Count, c.Outliers.Threshold, c.Outliers.MaxAbsZ.V))
		}
	}
}

func writeCorr(b *strings.Builder, title string, m *analysis.CorrMatrix) {
	b.WriteString("- " + title + ":\n")
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			v := m.Values[i][j]
			if v.Valid {
				b.WriteString(fmt.Sprintf("  • %s ~ %s: r=%.3f\n", m.Columns[i], m.Columns[j], v.V))
			} else {
				b.WriteString(fmt.Sprintf("  • %s ~ %s: r=n/a\n", m.Columns[i], m.Columns[j]))
			}
		}
	}
}

func writeDist(b *strings.Builder, d *analysis.Dist) {
	b.WriteString(fmt.Sprintf("- %s (n=%d", d.Column, d.Count))
	if d.Bandwidth.Valid {
		b.WriteString(fmt.Sprintf(", KDE bandwidth %.3g", d.Bandwidth.V))
	}
	b.WriteString("):\n")
	peak := 0
	for _, bin := range d.Bins {
		if bin.Count > peak {
			peak = bin.Count
		}
	}
	for _, bin := range d.Bins {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("#", (bin.Count*20+peak-1)/peak)
		}
		b.WriteString(fmt.Sprintf("  [%6.2f, %6.2f) %3d %s\n", bin.Lo, bin.Hi, bin.Count, bar))
	}
}

func span(rows []int) string {
	if len(rows) == 0 {
		return "none"
	}
	return fmt.Sprintf("rows %d-%d", rows[0], rows[len(rows)-1])
}
