package app

import (
	"context"
	"time"

	"prelims-drill-service/internal/analysis"
	"prelims-drill-service/internal/domain"
)

// SessionRepository abstracts how drill sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, create func() *Session) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionSetRepository loads question sets (from cache/backing store).
type QuestionSetRepository interface {
	GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// StartOptions configure a new drill session.
type StartOptions struct {
	DurationSeconds int
	MaxQuestions    int
}

// DrillService contains the core drill use cases.
type DrillService struct {
	sessions SessionRepository
	sets     QuestionSetRepository
}

func NewDrillService(store SessionRepository, sets QuestionSetRepository) *DrillService {
	return &DrillService{sessions: store, sets: sets}
}

// Start loads a question set, validates it into a pool, and opens a session.
// Starting an already-open session id returns its current snapshot unchanged.
// The snapshot plus the count of dropped invalid records are returned.
func (s *DrillService) Start(ctx context.Context, sessionID, setID string, opts StartOptions) (domain.Snapshot, int, error) {
	set, err := s.sets.GetQuestionSet(ctx, setID)
	if err != nil {
		return domain.Snapshot{}, 0, err
	}

	session := s.sessions.GetOrCreate(sessionID, func() *Session {
		pool, dropped := domain.BuildPool(set.Questions, opts.MaxQuestions)
		created := NewSession(sessionID, pool, dropped, opts.DurationSeconds)
		if opts.DurationSeconds > 0 {
			created.StartClock(time.Second)
		}
		return created
	})
	return session.Snapshot(), session.DroppedCount(), nil
}

// Answer resolves the session's current question with the chosen letter.
func (s *DrillService) Answer(sessionID, letter string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Answer(letter)
}

// Skip passes over the session's current question.
func (s *DrillService) Skip(sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Skip()
}

// Results tallies a session's rounds; usable mid-play or after termination.
func (s *DrillService) Results(sessionID string) (domain.Results, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Results{}, domain.ErrSessionNotFound
	}
	return session.Results(), nil
}

// SetAnswerKey merges a canonical-answer table into the session pool after
// play and returns the recomputed results.
func (s *DrillService) SetAnswerKey(sessionID string, key map[int]string) (domain.Results, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Results{}, domain.ErrSessionNotFound
	}
	return session.SetAnswerKey(key), nil
}

// Report derives the round-selection table from the session's live state and
// runs the classification engine and metrics over it.
func (s *DrillService) Report(sessionID string) (analysis.Report, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return analysis.Report{}, domain.ErrSessionNotFound
	}
	selections, key, total := selectionTable(session.Statuses())
	return analysis.BuildReport(total, selections, key), nil
}

// Subscribe returns a channel that receives snapshot updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *DrillService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Reset cancels the session's countdown and drops it, so a pending tick can
// never fire into a replacement session.
func (s *DrillService) Reset(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.StopClock()
	s.sessions.Delete(sessionID)
}

// selectionTable converts per-question session state into the analysis
// tables: one (round, option) pair per answered question, plus the known
// canonical answers.
func selectionTable(statuses []domain.QuestionStatus) (map[int]analysis.Selection, map[int]string, int) {
	selections := make(map[int]analysis.Selection, len(statuses))
	key := make(map[int]string, len(statuses))
	for _, st := range statuses {
		if st.AnsweredRound != 0 && st.UserAnswer != "" {
			selections[st.ID] = analysis.Selection{Round: st.AnsweredRound, Option: st.UserAnswer}
		}
		if st.Answer != "" {
			key[st.ID] = st.Answer
		}
	}
	return selections, key, len(statuses)
}
