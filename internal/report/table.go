package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/scorelens-cli/internal/analysis"
	"github.com/olekukonko/tablewriter"
)

// WriteTable renders the computed sections as ASCII tables.
func (r *Report) WriteTable(w io.Writer) error {
	fmt.Fprintf(w, "Run %s: %s, %d rows\n", r.RunID, r.Source, r.Rows)

	if s := r.Summary; s != nil {
		fmt.Fprintln(w, "\nDescriptive statistics")
		table := tablewriter.NewWriter(w)
		header := []string{"Stat"}
		for _, c := range s.Columns {
			header = append(header, c.Name)
		}
		table.SetHeader(header)
		table.SetAutoFormatHeaders(false)
		m := s.Map()
		for _, stat := range analysis.StatNames {
			row := []string{stat}
			for _, c := range s.Columns {
				row = append(row, m[c.Name][stat].String())
			}
			table.Append(row)
		}
		table.Render()
	}

	if sg := r.Subgroups; sg != nil {
		for _, part := range []struct {
			title string
			m     *analysis.CorrMatrix
		}{
			{fmt.Sprintf("Correlation, all rows (n=%d)", sg.All.Rows), sg.All},
			{fmt.Sprintf("Correlation, first %d rows", sg.Bottom.Rows), sg.Bottom},
			{fmt.Sprintf("Correlation, last %d rows", sg.Top.Rows), sg.Top},
		} {
			fmt.Fprintln(w, "\n"+part.title)
			writeCorrTable(w, part.m)
		}
	}

	if len(r.Box) > 0 {
		fmt.Fprintf(w, "\n%s by %s\n", r.BoxOf, r.BoxBy)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{r.BoxBy, "n", "min", "25%", "median", "75%", "max"})
		table.SetAutoFormatHeaders(false)
		for _, g := range r.Box {
			table.Append([]string{num(g.Key), strconv.Itoa(g.Count), num(g.Min), num(g.P25), num(g.Median), num(g.P75), num(g.Max)})
		}
		table.Render()
	}

	if len(r.Elbow) > 0 {
		fmt.Fprintln(w, "\nElbow")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"k", "Inertia", "Converged"})
		for _, p := range r.Elbow {
			table.Append([]string{strconv.Itoa(p.K), strconv.FormatFloat(p.Inertia, 'f', 4, 64), strconv.FormatBool(p.Converged)})
		}
		table.Render()
	}

	if c := r.Clusters; c != nil {
		fmt.Fprintf(w, "\nClusters (k=%d, inertia %.4f)\n", c.K, c.Inertia)
		table := tablewriter.NewWriter(w)
		table.SetHeader(append([]string{"Cluster", "Size"}, c.Columns...))
		table.SetAutoFormatHeaders(false)
		for k, ctr := range c.Centroids {
			row := []string{strconv.Itoa(k), strconv.Itoa(c.Sizes[k])}
			for _, v := range ctr {
				row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
			}
			table.Append(row)
		}
		table.Render()

		fmt.Fprintln(w, "\nAssignments")
		at := tablewriter.NewWriter(w)
		at.SetHeader([]string{"Row", "Cluster"})
		for i, l := range c.Labels {
			at.Append([]string{strconv.Itoa(c.Rows[i]), strconv.Itoa(l)})
		}
		at.Render()
	}

	if len(r.Notes) > 0 {
		fmt.Fprintln(w, "\nNotes")
		for _, n := range r.Notes {
			fmt.Fprintln(w, "- "+n)
		}
	}
	return nil
}

func writeCorrTable(w io.Writer, m *analysis.CorrMatrix) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{""}, m.Columns...))
	table.SetAutoFormatHeaders(false)
	for i, name := range m.Columns {
		row := []string{name}
		for j := range m.Columns {
			row = append(row, m.Values[i][j].String())
		}
		table.Append(row)
	}
	table.Render()
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }
