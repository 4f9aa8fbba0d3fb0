// Package analysis classifies resolved questions into behavioral categories
// and derives strategy metrics from the category counts. Everything here is a
// pure function over a round-selection table and an answer key; it never
// touches live session state, so it can annotate a session after play or run
// standalone over manually entered tables.
package analysis

import "strings"

// Category is one of the behavioral buckets a question lands in.
type Category string

const (
	CategoryContentGap           Category = "A1" // never attempted
	CategoryCarelessness         Category = "B1" // wrong in round 1
	CategoryStrongFoundation     Category = "C1" // correct in round 1
	CategoryEffectiveElimination Category = "D1" // correct in round 2
	CategoryEliminationFlaw      Category = "D2" // wrong in round 2
	CategoryLogicalMastery       Category = "E1" // correct in round 3
	CategoryLogicalError         Category = "E2" // wrong in round 3

	// CategoryUnresolved marks a selection whose correctness cannot be judged
	// because the canonical answer is unknown (or the round tag is invalid).
	// It is never silently folded into the wrong buckets.
	CategoryUnresolved Category = "UNRESOLVED"
)

// Selection is one entry of the round-selection table: the single round in
// which a question was resolved and the option chosen there.
type Selection struct {
	Round  int    `json:"round" yaml:"round"`
	Option string `json:"option" yaml:"option"`
}

// Breakdown counts questions per category. Counts always sum to Total.
type Breakdown struct {
	A1         int `json:"a1"`
	B1         int `json:"b1"`
	C1         int `json:"c1"`
	D1         int `json:"d1"`
	D2         int `json:"d2"`
	E1         int `json:"e1"`
	E2         int `json:"e2"`
	Unresolved int `json:"unresolved"`
	Total      int `json:"total"`
}

// Classify maps one question's selection and canonical answer to a category.
// A nil selection, or one without a chosen option, means the question was
// never resolved (content gap).
func Classify(sel *Selection, canonical string) Category {
	if sel == nil || sel.Option == "" {
		return CategoryContentGap
	}
	if sel.Round < 1 || sel.Round > 3 {
		return CategoryUnresolved
	}
	if canonical == "" {
		return CategoryUnresolved
	}
	correct := strings.EqualFold(sel.Option, canonical)
	switch sel.Round {
	case 1:
		if correct {
			return CategoryStrongFoundation
		}
		return CategoryCarelessness
	case 2:
		if correct {
			return CategoryEffectiveElimination
		}
		return CategoryEliminationFlaw
	default:
		if correct {
			return CategoryLogicalMastery
		}
		return CategoryLogicalError
	}
}

// ClassifyAll classifies question ids 1..total against the selection and
// answer tables. Both tables may be partial.
func ClassifyAll(total int, selections map[int]Selection, key map[int]string) (map[int]Category, Breakdown) {
	categories := make(map[int]Category, total)
	breakdown := Breakdown{Total: total}
	for id := 1; id <= total; id++ {
		var sel *Selection
		if s, ok := selections[id]; ok {
			sel = &s
		}
		cat := Classify(sel, key[id])
		categories[id] = cat
		breakdown.add(cat)
	}
	return categories, breakdown
}

func (b *Breakdown) add(c Category) {
	switch c {
	case CategoryContentGap:
		b.A1++
	case CategoryCarelessness:
		b.B1++
	case CategoryStrongFoundation:
		b.C1++
	case CategoryEffectiveElimination:
		b.D1++
	case CategoryEliminationFlaw:
		b.D2++
	case CategoryLogicalMastery:
		b.E1++
	case CategoryLogicalError:
		b.E2++
	default:
		b.Unresolved++
	}
}

// RoundSummary is the attempted/hit/miss tally for one round. Selections
// without a known canonical answer count as attempted but neither hit nor
// miss.
type RoundSummary struct {
	Round     int `json:"round"`
	Attempted int `json:"attempted"`
	Hit       int `json:"hit"`
	Miss      int `json:"miss"`
}

// Report bundles everything the analysis produces for one table.
type Report struct {
	Total      int              `json:"total"`
	Categories map[int]Category `json:"categories"`
	Breakdown  Breakdown        `json:"breakdown"`
	Metrics    Metrics          `json:"metrics"`
	Flags      Flags            `json:"flags"`
	Rounds     []RoundSummary   `json:"rounds"`
}

// BuildReport runs classification, metrics, and per-round summaries over a
// selection table and answer key.
func BuildReport(total int, selections map[int]Selection, key map[int]string) Report {
	categories, breakdown := ClassifyAll(total, selections, key)
	metrics := ComputeMetrics(breakdown)

	rounds := make([]RoundSummary, 3)
	for i := range rounds {
		rounds[i].Round = i + 1
	}
	for id, sel := range selections {
		if sel.Round < 1 || sel.Round > 3 || sel.Option == "" {
			continue
		}
		summary := &rounds[sel.Round-1]
		summary.Attempted++
		canonical, ok := key[id]
		if !ok || canonical == "" {
			continue
		}
		if strings.EqualFold(sel.Option, canonical) {
			summary.Hit++
		} else {
			summary.Miss++
		}
	}

	return Report{
		Total:      total,
		Categories: categories,
		Breakdown:  breakdown,
		Metrics:    metrics,
		Flags:      metrics.Flags(),
		Rounds:     rounds,
	}
}
