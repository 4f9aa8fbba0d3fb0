package domain_test

import (
	"testing"

	"prelims-drill-service/internal/domain"
)

func TestBuildPoolFiltersAndRenumbers(t *testing.T) {
	raw := []domain.RawQuestion{
		{ID: 10, Question: "Keep me", Options: []string{"A. x", "B. y"}, Answer: "a"},
		{ID: 11, Question: "   ", Options: []string{"A. x", "B. y"}},
		{ID: 12, Question: "Too few options", Options: []string{"A. x"}},
		{ID: 13, Question: "No options at all"},
		{ID: 14, Question: "Keep me too", Options: []string{"A. x", "B. y", "C. z"}, Answer: "C"},
	}

	pool, dropped := domain.BuildPool(raw, 0)

	if dropped != 3 {
		t.Fatalf("expected 3 dropped, got %d", dropped)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(pool))
	}
	if pool[0].ID != 1 || pool[1].ID != 2 {
		t.Fatalf("expected ids renumbered 1..N, got %d and %d", pool[0].ID, pool[1].ID)
	}
	if pool[0].Prompt != "Keep me" || pool[1].Prompt != "Keep me too" {
		t.Fatalf("relative order not preserved: %+v", pool)
	}
	if pool[0].Answer != "A" {
		t.Fatalf("expected lowercase answer normalized to A, got %q", pool[0].Answer)
	}
}

func TestBuildPoolClearsUnmappableAnswers(t *testing.T) {
	raw := []domain.RawQuestion{
		{Question: "Answer letter beyond options", Options: []string{"A. x", "B. y"}, Answer: "D"},
		{Question: "Garbage answer", Options: []string{"A. x", "B. y"}, Answer: "yes"},
	}
	pool, dropped := domain.BuildPool(raw, 0)
	if dropped != 0 {
		t.Fatalf("expected no drops, got %d", dropped)
	}
	for _, q := range pool {
		if q.Answer != "" {
			t.Fatalf("expected unmappable answer cleared, got %q on %+v", q.Answer, q)
		}
	}
}

func TestBuildPoolCapsSize(t *testing.T) {
	raw := make([]domain.RawQuestion, 5)
	for i := range raw {
		raw[i] = domain.RawQuestion{Question: "q", Options: []string{"A. x", "B. y"}}
	}
	pool, dropped := domain.BuildPool(raw, 3)
	if dropped != 0 || len(pool) != 3 {
		t.Fatalf("expected capped pool of 3, got len=%d dropped=%d", len(pool), dropped)
	}
	if pool[2].ID != 3 {
		t.Fatalf("ids must be renumbered after capping, got %d", pool[2].ID)
	}
}

func TestBuildPoolEmptyInput(t *testing.T) {
	pool, dropped := domain.BuildPool(nil, 0)
	if len(pool) != 0 || dropped != 0 {
		t.Fatalf("expected empty pool without drops, got len=%d dropped=%d", len(pool), dropped)
	}
}

func TestOptionLetterRoundTrip(t *testing.T) {
	for i := 0; i < 10; i++ {
		letter := domain.OptionLetter(i)
		if letter == "" {
			t.Fatalf("expected a letter for index %d", i)
		}
		if got := domain.LetterIndex(letter); got != i {
			t.Fatalf("round trip failed for %q: %d", letter, got)
		}
	}
	if domain.OptionLetter(10) != "" || domain.OptionLetter(-1) != "" {
		t.Fatalf("out-of-range indexes must map to empty string")
	}
	if domain.LetterIndex("ab") != -1 || domain.LetterIndex("") != -1 || domain.LetterIndex("?") != -1 {
		t.Fatalf("invalid letters must map to -1")
	}
	if domain.LetterIndex("c") != 2 {
		t.Fatalf("lowercase letters must be accepted")
	}
}
