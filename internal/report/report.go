// Package report renders sort and trial results for the terminal or as JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/lozenge/internal/trial"
	"github.com/joshuapare/lozenge/stats"
)

// Row summarizes one batch of trials for one strategy configuration.
type Row struct {
	Name       string       `json:"name"`
	Size       int          `json:"size"`
	Trials     int          `json:"trials"`
	Mean       float64      `json:"mean_comparisons"`
	MeanMerge  float64      `json:"mean_merge"`
	MeanWork   float64      `json:"mean_work"`
	Ratio      float64      `json:"ratio_nlogn"`
	Levels     []LevelMeans `json:"levels,omitempty"`
	Throughput float64      `json:"records_per_second"`
	Failures   int          `json:"failures"`
}

// LevelMeans holds the average comparisons per sort at one level.
type LevelMeans struct {
	Merge float64 `json:"merge"`
	Work  float64 `json:"work"`
}

// FromTrial builds a row from a finished batch.
func FromTrial(name string, r *trial.Result) Row {
	row := Row{
		Name:       name,
		Size:       r.Size,
		Trials:     r.Trials,
		Mean:       r.Stats.Mean(),
		Throughput: r.RecordsPerSecond(),
		Failures:   len(r.Failures),
	}
	row.fill(r.Stats)
	return row
}

func (row *Row) fill(c *stats.Collector) {
	sorts := float64(c.Sorts())
	if sorts == 0 {
		return
	}
	t := c.Totals()
	row.MeanMerge = float64(t.Merge) / sorts
	row.MeanWork = float64(t.Work) / sorts
	if bound := NLogN(row.Size); bound > 0 {
		row.Ratio = row.Mean / bound
	}
	row.Levels = make([]LevelMeans, c.Levels())
	for i := range row.Levels {
		l := c.Level(i)
		row.Levels[i] = LevelMeans{Merge: float64(l.Merge) / sorts, Work: float64(l.Work) / sorts}
	}
}

// NLogN returns n*log2(n), the comparison scale of a merge sort.
func NLogN(n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(n) * math.Log2(float64(n))
}

// Options controls terminal rendering.
type Options struct {
	NoColor  bool
	PerLevel bool // add one column per merge level
}

// Table writes rows as an aligned table.
func Table(w io.Writer, rows []Row, opts Options) error {
	p := message.NewPrinter(language.English)
	header := lipgloss.NewRenderer(w).NewStyle().Bold(true)
	if opts.NoColor {
		header = lipgloss.NewStyle()
	}

	levels := 0
	if opts.PerLevel {
		for _, r := range rows {
			levels = max(levels, len(r.Levels))
		}
	}

	cols := []string{"STRATEGY", "SIZE", "TRIALS", "MEAN", "MERGE", "WORK", "/NLOGN", "THROUGHPUT"}
	for i := 0; i < levels; i++ {
		cols = append(cols, fmt.Sprintf("L%d", i))
	}
	cols = append(cols, "FAILED")

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(cols, "\t")+"\t")
	for _, r := range rows {
		cells := []string{
			r.Name,
			p.Sprintf("%d", r.Size),
			p.Sprintf("%d", r.Trials),
			p.Sprintf("%.1f", r.Mean),
			p.Sprintf("%.1f", r.MeanMerge),
			p.Sprintf("%.1f", r.MeanWork),
			fmt.Sprintf("%.3f", r.Ratio),
			humanize.SIWithDigits(r.Throughput, 1, "rec/s"),
		}
		for i := 0; i < levels; i++ {
			var v float64
			if i < len(r.Levels) {
				v = r.Levels[i].Merge + r.Levels[i].Work
			}
			cells = append(cells, p.Sprintf("%.1f", v))
		}
		cells = append(cells, p.Sprintf("%d", r.Failures))
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Style the aligned header line as a whole so escapes do not skew widths.
	first, rest, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	if _, err := fmt.Fprintln(w, header.Render(string(first))); err != nil {
		return err
	}
	_, err := w.Write(rest)
	return err
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Count formats n with digit grouping.
func Count(n uint64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
