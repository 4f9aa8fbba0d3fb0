package analysis_test

import (
	"testing"

	"prelims-drill-service/internal/analysis"
)

func TestClassifyDecisionTable(t *testing.T) {
	cases := []struct {
		name      string
		sel       *analysis.Selection
		canonical string
		want      analysis.Category
	}{
		{"no selection", nil, "A", analysis.CategoryContentGap},
		{"selection without option", &analysis.Selection{Round: 1}, "A", analysis.CategoryContentGap},
		{"wrong round 1", &analysis.Selection{Round: 1, Option: "B"}, "A", analysis.CategoryCarelessness},
		{"correct round 1", &analysis.Selection{Round: 1, Option: "A"}, "A", analysis.CategoryStrongFoundation},
		{"correct round 2", &analysis.Selection{Round: 2, Option: "C"}, "C", analysis.CategoryEffectiveElimination},
		{"wrong round 2", &analysis.Selection{Round: 2, Option: "D"}, "C", analysis.CategoryEliminationFlaw},
		{"correct round 3", &analysis.Selection{Round: 3, Option: "B"}, "B", analysis.CategoryLogicalMastery},
		{"wrong round 3", &analysis.Selection{Round: 3, Option: "A"}, "B", analysis.CategoryLogicalError},
		{"missing canonical", &analysis.Selection{Round: 2, Option: "A"}, "", analysis.CategoryUnresolved},
		{"invalid round", &analysis.Selection{Round: 4, Option: "A"}, "A", analysis.CategoryUnresolved},
		{"case-insensitive match", &analysis.Selection{Round: 1, Option: "a"}, "A", analysis.CategoryStrongFoundation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := analysis.Classify(tc.sel, tc.canonical); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClassifyAllPartitionsQuestions(t *testing.T) {
	selections := map[int]analysis.Selection{
		1: {Round: 1, Option: "A"},
		2: {Round: 1, Option: "B"},
		3: {Round: 2, Option: "A"},
		4: {Round: 3, Option: "C"},
		6: {Round: 2, Option: "D"}, // no canonical answer -> unresolved
	}
	key := map[int]string{1: "A", 2: "A", 3: "A", 4: "B", 5: "D"}

	categories, breakdown := analysis.ClassifyAll(7, selections, key)

	if len(categories) != 7 {
		t.Fatalf("expected a category per question, got %d", len(categories))
	}
	sum := breakdown.A1 + breakdown.B1 + breakdown.C1 + breakdown.D1 +
		breakdown.D2 + breakdown.E1 + breakdown.E2 + breakdown.Unresolved
	if sum != breakdown.Total || breakdown.Total != 7 {
		t.Fatalf("category counts must sum to total, got sum=%d breakdown=%+v", sum, breakdown)
	}

	want := map[int]analysis.Category{
		1: analysis.CategoryStrongFoundation,
		2: analysis.CategoryCarelessness,
		3: analysis.CategoryEffectiveElimination,
		4: analysis.CategoryLogicalError,
		5: analysis.CategoryContentGap,
		6: analysis.CategoryUnresolved,
		7: analysis.CategoryContentGap,
	}
	for id, cat := range want {
		if categories[id] != cat {
			t.Fatalf("q%d: expected %s, got %s", id, cat, categories[id])
		}
	}
}

func TestBuildReportSoleWrongAnswer(t *testing.T) {
	selections := map[int]analysis.Selection{1: {Round: 1, Option: "B"}}
	key := map[int]string{1: "A"}

	report := analysis.BuildReport(1, selections, key)

	if report.Categories[1] != analysis.CategoryCarelessness {
		t.Fatalf("expected B1, got %s", report.Categories[1])
	}
	if report.Metrics.CarelessnessIndex != 100 {
		t.Fatalf("expected carelessness 100, got %v", report.Metrics.CarelessnessIndex)
	}
	if !report.Flags.HighCarelessness {
		t.Fatalf("expected high-carelessness flag")
	}
}

func TestBuildReportRoundSummaries(t *testing.T) {
	selections := map[int]analysis.Selection{
		1: {Round: 1, Option: "A"},
		2: {Round: 1, Option: "B"},
		3: {Round: 2, Option: "C"},
		4: {Round: 2, Option: "D"}, // canonical unknown: attempted, neither hit nor miss
	}
	key := map[int]string{1: "A", 2: "C", 3: "C"}

	report := analysis.BuildReport(5, selections, key)

	r1 := report.Rounds[0]
	if r1.Attempted != 2 || r1.Hit != 1 || r1.Miss != 1 {
		t.Fatalf("unexpected round 1 summary: %+v", r1)
	}
	r2 := report.Rounds[1]
	if r2.Attempted != 2 || r2.Hit != 1 || r2.Miss != 0 {
		t.Fatalf("unexpected round 2 summary: %+v", r2)
	}
	if report.Rounds[2].Attempted != 0 {
		t.Fatalf("round 3 should be empty, got %+v", report.Rounds[2])
	}
}
