package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"prelims-drill-service/internal/analysis"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// analysisInput is the YAML shape for a manually entered round-selection
// table and answer key, mirroring the post-hoc review flow.
type analysisInput struct {
	Total      int                        `yaml:"total"`
	Selections map[int]analysis.Selection `yaml:"selections"`
	Answers    map[int]string             `yaml:"answers"`
}

// NewAnalyzeCmd classifies a selections file without a live session.
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <selections.yaml>",
		Short: "Classify a round-selection table and print strategy metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var input analysisInput
			if err := yaml.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("parse selections file: %w", err)
			}
			if input.Total <= 0 {
				return fmt.Errorf("total must be positive")
			}
			report := analysis.BuildReport(input.Total, input.Selections, input.Answers)
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func printReport(w io.Writer, report analysis.Report) {
	ids := make([]int, 0, len(report.Categories))
	for id := range report.Categories {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fmt.Fprintf(w, "questions: %d\n\n", report.Total)
	for _, id := range ids {
		fmt.Fprintf(w, "Q%-3d %s\n", id, report.Categories[id])
	}

	b := report.Breakdown
	fmt.Fprintf(w, "\nbreakdown: A1=%d B1=%d C1=%d D1=%d D2=%d E1=%d E2=%d unresolved=%d\n",
		b.A1, b.B1, b.C1, b.D1, b.D2, b.E1, b.E2, b.Unresolved)

	for _, round := range report.Rounds {
		fmt.Fprintf(w, "round %d: attempted=%d hit=%d miss=%d\n",
			round.Round, round.Attempted, round.Hit, round.Miss)
	}

	m := report.Metrics
	f := report.Flags
	fmt.Fprintf(w, "\ncontent gap index:         %5.1f%% %s\n", m.ContentGapIndex, flagNote(f.HighContentGap, "high"))
	fmt.Fprintf(w, "carelessness index:        %5.1f%% %s\n", m.CarelessnessIndex, flagNote(f.HighCarelessness, "high"))
	fmt.Fprintf(w, "elimination efficiency:    %5.1f%% %s\n", m.EliminationEfficiency, flagNote(f.LowEliminationEfficiency, "low"))
	fmt.Fprintf(w, "logic risk ratio:          %5.1f%% %s\n", m.LogicRiskRatio, flagNote(f.HighLogicRisk, "high"))
	fmt.Fprintf(w, "strategy discipline score: %5.1f%% %s\n", m.StrategyDisciplineScore, flagNote(f.LowStrategyDiscipline, "low"))
}

func flagNote(flagged bool, label string) string {
	if flagged {
		return "(" + label + ")"
	}
	return ""
}
