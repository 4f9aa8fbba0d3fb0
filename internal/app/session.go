package app

import (
	"sync"
	"time"

	"prelims-drill-service/internal/domain"
)

// questionState tracks one pool question across rounds. answeredRound stays 0
// until the question is answered; skips only flip the skipped flag.
type questionState struct {
	q             domain.Question
	answeredRound int
	skipped       bool
	userAnswer    string
	attempts      []domain.Attempt
}

// drillState is the complete scheduler state. Transitions never mutate a
// drillState in place: they return a fresh value with copied question slices,
// so every decision after an event reads the just-produced state and a stale
// snapshot can never re-admit an answered question.
type drillState struct {
	questions  []questionState // pool order, id == index+1
	round      int
	active     []int
	pos        int
	remaining  int
	terminated bool
}

func newDrillState(pool []domain.Question, durationSeconds int) drillState {
	questions := make([]questionState, len(pool))
	active := make([]int, len(pool))
	for i, q := range pool {
		questions[i] = questionState{q: q}
		active[i] = q.ID
	}
	st := drillState{
		questions: questions,
		round:     1,
		active:    active,
		remaining: durationSeconds,
	}
	if len(pool) == 0 {
		st.terminated = true
	}
	return st
}

// recordAttempt appends one attempt and marks the question answered.
func recordAttempt(qs questionState, round int, letter string) questionState {
	qs.answeredRound = round
	qs.userAnswer = letter
	qs.attempts = append(append([]domain.Attempt(nil), qs.attempts...), domain.Attempt{
		Round:          round,
		SelectedOption: letter,
	})
	return qs
}

func applyAnswer(st drillState, letter string) drillState {
	id := st.active[st.pos]
	next := st
	next.questions = append([]questionState(nil), st.questions...)
	next.questions[id-1] = recordAttempt(next.questions[id-1], st.round, letter)
	return advance(next, id, true)
}

func applySkip(st drillState) drillState {
	id := st.active[st.pos]
	next := st
	next.questions = append([]questionState(nil), st.questions...)
	qs := next.questions[id-1]
	qs.skipped = true
	next.questions[id-1] = qs
	return advance(next, id, false)
}

func applyTick(st drillState) drillState {
	if st.terminated {
		return st
	}
	next := st
	if next.remaining > 0 {
		next.remaining--
	}
	if next.remaining <= 0 {
		next.remaining = 0
		next.terminated = true
	}
	return next
}

// advance moves the pointer, or runs end-of-round logic at the last index.
// st must already carry the event's question update.
func advance(st drillState, resolvedID int, wasAnswered bool) drillState {
	if st.pos < len(st.active)-1 {
		st.pos++
		return st
	}
	return endOfRound(st, resolvedID, wasAnswered)
}

// endOfRound builds the next round's set from the post-update state. The
// resolved id is excluded again explicitly when it was answered; with the
// fresh state that filter is already satisfied, but keeping it makes the
// read-after-write correction independent of how st was produced.
func endOfRound(st drillState, resolvedID int, wasAnswered bool) drillState {
	nextSet := make([]int, 0, len(st.questions))
	for _, qs := range st.questions {
		if qs.answeredRound != 0 {
			continue
		}
		if wasAnswered && qs.q.ID == resolvedID {
			continue
		}
		nextSet = append(nextSet, qs.q.ID)
	}

	// Fail closed: an id outside the pool or an oversized set means corrupt
	// state, so the session ends instead of looping.
	if len(nextSet) > len(st.questions) {
		st.terminated = true
		return st
	}
	for _, id := range nextSet {
		if id < 1 || id > len(st.questions) {
			st.terminated = true
			return st
		}
	}

	if st.round >= 3 || len(nextSet) == 0 {
		st.terminated = true
		return st
	}
	st.round++
	st.active = nextSet
	st.pos = 0
	return st
}

func computeResults(questions []questionState, elapsedSeconds int) domain.Results {
	res := domain.Results{TotalTime: elapsedSeconds}
	for _, qs := range questions {
		switch qs.answeredRound {
		case 0:
			res.Unattempted++
			continue
		case 1:
			res.R1++
		case 2:
			res.R2++
		case 3:
			res.R3++
		}
		if qs.q.Answer == "" {
			continue
		}
		if qs.userAnswer == qs.q.Answer {
			res.Correct++
		} else {
			res.Incorrect++
		}
	}
	return res
}

// Session owns one drill's scheduler state and fans snapshots out to
// subscribers. All events are serialized behind the mutex, so a countdown
// tick can never observe a half-applied answer.
type Session struct {
	id        string
	dropped   int
	createdAt time.Time
	now       func() time.Time

	mu          sync.RWMutex
	state       drillState
	finishedAt  time.Time
	subscribers map[chan domain.Snapshot]struct{}
	stopClock   chan struct{}
}

// NewSession builds a session over a validated pool. A zero-question pool
// yields a session that is terminated from the start.
func NewSession(id string, pool []domain.Question, dropped, durationSeconds int) *Session {
	return NewSessionWithClock(id, pool, dropped, durationSeconds, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, pool []domain.Question, dropped, durationSeconds int, now func() time.Time) *Session {
	s := &Session{
		id:          id,
		dropped:     dropped,
		createdAt:   now(),
		now:         now,
		state:       newDrillState(pool, durationSeconds),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
	if s.state.terminated {
		s.finishedAt = s.createdAt
	}
	return s
}

// StartClock launches the countdown ticker. It stops itself once the session
// terminates; StopClock cancels it early (reset).
func (s *Session) StartClock(interval time.Duration) {
	s.mu.Lock()
	if s.stopClock != nil || s.state.terminated {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stopClock = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if snap := s.Tick(); snap.Terminated {
					return
				}
			}
		}
	}()
}

// StopClock cancels the countdown so it cannot fire after a reset.
func (s *Session) StopClock() {
	s.mu.Lock()
	s.stopClockLocked()
	s.mu.Unlock()
}

func (s *Session) stopClockLocked() {
	if s.stopClock != nil {
		close(s.stopClock)
		s.stopClock = nil
	}
}

// Answer applies the current question's answer event. Terminated sessions
// absorb the event untouched.
func (s *Session) Answer(letter string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.terminated {
		return s.snapshotLocked(), domain.ErrSessionFinished
	}
	id := s.state.active[s.state.pos]
	idx := domain.LetterIndex(letter)
	if idx < 0 || idx >= len(s.state.questions[id-1].q.Options) {
		return s.snapshotLocked(), domain.ErrUnknownOption
	}
	s.replaceLocked(applyAnswer(s.state, domain.OptionLetter(idx)))
	return s.broadcastLocked(), nil
}

// Skip marks the current question skipped and advances.
func (s *Session) Skip() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.terminated {
		return s.snapshotLocked(), domain.ErrSessionFinished
	}
	s.replaceLocked(applySkip(s.state))
	return s.broadcastLocked(), nil
}

// Tick advances the countdown by one second; at zero it terminates the
// session, leaving every unanswered question unattempted.
func (s *Session) Tick() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.terminated {
		return s.snapshotLocked()
	}
	s.replaceLocked(applyTick(s.state))
	return s.broadcastLocked()
}

// replaceLocked swaps in the new whole state and finishes bookkeeping when
// the transition crossed into termination.
func (s *Session) replaceLocked(next drillState) {
	crossed := !s.state.terminated && next.terminated
	s.state = next
	if crossed {
		s.finishedAt = s.now()
		s.stopClockLocked()
	}
}

// Results tallies the session; callable mid-play or after termination.
func (s *Session) Results() domain.Results {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return computeResults(s.state.questions, s.elapsedLocked())
}

// SetAnswerKey merges canonical answers into the pool (post-hoc answer key
// entry). Unknown ids and letters that don't address an option are ignored.
func (s *Session) SetAnswerKey(key map[int]string) domain.Results {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.questions = append([]questionState(nil), s.state.questions...)
	for id, letter := range key {
		if id < 1 || id > len(next.questions) {
			continue
		}
		qs := next.questions[id-1]
		idx := domain.LetterIndex(letter)
		if idx < 0 || idx >= len(qs.q.Options) {
			continue
		}
		qs.q.Answer = domain.OptionLetter(idx)
		next.questions[id-1] = qs
	}
	s.state = next
	s.broadcastLocked()
	return computeResults(s.state.questions, s.elapsedLocked())
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Statuses exposes the per-question view for post-session analysis.
func (s *Session) Statuses() []domain.QuestionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusesLocked()
}

// Terminated reports whether the session has ended.
func (s *Session) Terminated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.terminated
}

// DroppedCount is the number of raw records rejected at pool build time.
func (s *Session) DroppedCount() int {
	return s.dropped
}

// Subscribe returns a channel receiving a snapshot after every transition.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so slow readers never block events.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		SessionID:        s.id,
		Round:            s.state.round,
		ActiveIDs:        append([]int(nil), s.state.active...),
		Position:         s.state.pos,
		RemainingSeconds: s.state.remaining,
		Terminated:       s.state.terminated,
		Questions:        s.statusesLocked(),
	}
	if !snap.Terminated && snap.Position < len(snap.ActiveIDs) {
		snap.CurrentID = snap.ActiveIDs[snap.Position]
	}
	return snap
}

func (s *Session) statusesLocked() []domain.QuestionStatus {
	statuses := make([]domain.QuestionStatus, len(s.state.questions))
	for i, qs := range s.state.questions {
		statuses[i] = domain.QuestionStatus{
			Question:      qs.q,
			AnsweredRound: qs.answeredRound,
			Skipped:       qs.skipped,
			UserAnswer:    qs.userAnswer,
			Attempts:      append([]domain.Attempt(nil), qs.attempts...),
		}
	}
	return statuses
}

func (s *Session) elapsedLocked() int {
	end := s.finishedAt
	if end.IsZero() {
		end = s.now()
	}
	return int(end.Sub(s.createdAt) / time.Second)
}
