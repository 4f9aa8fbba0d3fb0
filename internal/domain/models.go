package domain

// RawQuestion is an untrusted question record as delivered by an external
// extraction collaborator (PDF/LLM pipeline, seed file, manual entry).
type RawQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer,omitempty"`
}

// Question is a validated pool entry. IDs are 1-based and assigned at pool
// build time; the record is immutable for the rest of the session, except that
// Answer may be filled in after play via an answer key.
type Question struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  string   `json:"answer,omitempty"` // canonical option letter, empty when unknown
}

// QuestionSet is a stored collection of raw questions keyed by set ID.
type QuestionSet struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Questions []RawQuestion `json:"questions"`
}

// Attempt records one answer event for a question. Skips never produce one.
type Attempt struct {
	Round          int    `json:"round"`
	SelectedOption string `json:"selectedOption"`
}

// QuestionStatus is the per-question view inside a session snapshot.
// AnsweredRound is 0 while the question has never been answered.
type QuestionStatus struct {
	Question
	AnsweredRound int       `json:"answeredRound"`
	Skipped       bool      `json:"skipped"`
	UserAnswer    string    `json:"userAnswer,omitempty"`
	Attempts      []Attempt `json:"attempts,omitempty"`
}

// Snapshot is the complete observable state of a drill session.
type Snapshot struct {
	SessionID        string           `json:"sessionId"`
	Round            int              `json:"round"`
	ActiveIDs        []int            `json:"activeIds"`
	Position         int              `json:"position"`
	CurrentID        int              `json:"currentId,omitempty"`
	RemainingSeconds int              `json:"remainingSeconds"`
	Terminated       bool             `json:"terminated"`
	Questions        []QuestionStatus `json:"questions"`
}

// Results is the per-round tally for a session. Correct/Incorrect only count
// answered questions whose canonical answer is known.
type Results struct {
	R1          int `json:"r1"`
	R2          int `json:"r2"`
	R3          int `json:"r3"`
	Unattempted int `json:"unattempted"`
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	TotalTime   int `json:"totalTime"` // seconds elapsed since session start
}

const optionLetters = "ABCDEFGHIJ"

// OptionLetter returns the display letter for a zero-based option index,
// or "" when the index is out of the supported range.
func OptionLetter(i int) string {
	if i < 0 || i >= len(optionLetters) {
		return ""
	}
	return string(optionLetters[i])
}

// LetterIndex maps an option letter back to its zero-based index, -1 if the
// letter is not a single character in the supported range.
func LetterIndex(letter string) int {
	if len(letter) != 1 {
		return -1
	}
	c := letter[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > optionLetters[len(optionLetters)-1] {
		return -1
	}
	return int(c - 'A')
}
