// Package report renders tournament outcomes for people: a results table
// with the winner block, and a bar chart of the candidates' accuracies.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/YuminosukeSato/tourney/metrics"
	"github.com/YuminosukeSato/tourney/tournament"
)

// Table returns the results in registry order, one row per candidate.
func Table(results []tournament.EvaluationResult) string {
	t := table.NewWriter()
	t.SetTitle("TOURNAMENT RESULTS")
	t.AppendHeader(table.Row{"#", "Algorithm", "Correctly Class.", "Accuracy", "Fold Mean ± Std", "Time"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.AppendRows(lo.Map(results, func(r tournament.EvaluationResult, i int) table.Row {
		if r.Failed() {
			return table.Row{i + 1, r.Name, "0", "0.00%", "-", r.Duration.Round(time.Millisecond).String()}
		}
		return table.Row{
			i + 1,
			r.Name,
			fmt.Sprintf("%.0f", r.CorrectCount),
			fmt.Sprintf("%.2f%%", r.AccuracyPercent),
			fmt.Sprintf("%.2f ± %.2f", r.MeanAccuracy, r.StdAccuracy),
			r.Duration.Round(time.Millisecond).String(),
		}
	}))
	return t.Render()
}

// Winner returns the winner block, or a notice when every candidate failed.
func Winner(best *tournament.EvaluationResult) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 70) + "\n")
	if best == nil {
		sb.WriteString("No candidate completed successfully.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "WINNER: %s\n", best.Name)
	fmt.Fprintf(&sb, "Accuracy: %.2f%% (%.0f instances)\n", best.AccuracyPercent, best.CorrectCount)
	return sb.String()
}

// ClassMetrics returns one row per class with the precision, recall and F1
// read off cm, followed by their unweighted averages.
func ClassMetrics(cm *metrics.ConfusionMatrix) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Class", "Precision", "Recall", "F1"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	labels := cm.Labels()
	var sumP, sumR, sumF float64
	for c, label := range labels {
		p, r, f := cm.Precision(c), cm.Recall(c), cm.F1(c)
		sumP, sumR, sumF = sumP+p, sumR+r, sumF+f
		t.AppendRow(table.Row{label, fmt.Sprintf("%.3f", p), fmt.Sprintf("%.3f", r), fmt.Sprintf("%.3f", f)})
	}
	if n := float64(len(labels)); n > 0 {
		t.AppendFooter(table.Row{"Macro Avg.", fmt.Sprintf("%.3f", sumP/n), fmt.Sprintf("%.3f", sumR/n), fmt.Sprintf("%.3f", sumF/n)})
	}
	return t.Render()
}

// Write prints the table, the winner block and, when present, the winner's
// confusion matrix and per-class metrics.
func Write(w io.Writer, state *tournament.State) error {
	if _, err := fmt.Fprintln(w, Table(state.Results)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, Winner(state.Best)); err != nil {
		return err
	}
	if state.Best == nil || state.Best.Confusion == nil {
		return nil
	}
	cm := state.Best.Confusion
	if _, err := fmt.Fprintf(w, "\n=== Confusion Matrix ===\n\n%s", cm); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n=== Detailed Accuracy By Class ===\n\n%s\n", ClassMetrics(cm))
	return err
}
