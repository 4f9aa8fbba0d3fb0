package domain

import "strings"

// BuildPool validates raw records into a playable pool. Records with a blank
// prompt or fewer than two options are dropped; survivors are renumbered 1..N
// in their original relative order. A positive max caps the pool size after
// filtering. Returns the pool and the number of dropped records. An empty
// pool is not an error; the session layer terminates immediately on one.
func BuildPool(raw []RawQuestion, max int) ([]Question, int) {
	valid := make([]Question, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Question) == "" || len(r.Options) < 2 {
			continue
		}
		valid = append(valid, Question{
			Prompt:  r.Question,
			Options: append([]string(nil), r.Options...),
			Answer:  normalizeAnswer(r.Answer, len(r.Options)),
		})
	}
	dropped := len(raw) - len(valid)

	if max > 0 && max < len(valid) {
		valid = valid[:max]
	}
	for i := range valid {
		valid[i].ID = i + 1
	}
	return valid, dropped
}

// normalizeAnswer upper-cases a canonical letter and clears it when it does
// not address one of the question's options.
func normalizeAnswer(answer string, optionCount int) string {
	idx := LetterIndex(strings.TrimSpace(answer))
	if idx < 0 || idx >= optionCount {
		return ""
	}
	return OptionLetter(idx)
}
