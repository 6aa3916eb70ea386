package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"iqboard-service/internal/domain"
)

// SessionRepository abstracts how live quiz sessions are stored (in-memory,
// Redis-aware, etc).
type SessionRepository interface {
	Put(session *QuizSession)
	Get(sessionID string) (*QuizSession, bool)
	Delete(sessionID string)
}

// CatalogRepository loads the question catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) ([]domain.Question, error)
}

// QuizService contains the quiz use cases: starting sessions, driving them,
// and shaping results for the card and analysis flows.
type QuizService struct {
	sessions SessionRepository
	catalog  CatalogRepository

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizService(store SessionRepository, catalog CatalogRepository) *QuizService {
	return &QuizService{
		sessions: store,
		catalog:  catalog,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartSession selects a fresh stratified question set and starts its
// countdown.
func (s *QuizService) StartSession(ctx context.Context) (*QuizSession, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, domain.ErrCatalogEmpty
	}

	s.rndMu.Lock()
	questions := SelectSessionQuestions(catalog, s.rnd)
	s.rndMu.Unlock()

	session := NewQuizSession(uuid.NewString(), questions)
	s.sessions.Put(session)
	return session, nil
}

// Session looks up a live session by ID.
func (s *QuizService) Session(sessionID string) (*QuizSession, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Abandon stops a session's countdown without scoring and forgets it.
func (s *QuizService) Abandon(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

// BuildAnalyzeRequest assembles the collaborator payload from a submitted
// session.
func (s *QuizService) BuildAnalyzeRequest(sessionID, username string) (domain.AnalyzeRequest, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnalyzeRequest{}, domain.ErrSessionNotFound
	}
	result, ok := session.Result()
	if !ok {
		return domain.AnalyzeRequest{}, domain.ErrSessionNotSubmitted
	}
	if username == "" {
		username = "anonymous"
	}
	return domain.AnalyzeRequest{
		Username:   username,
		Score:      result.Correct,
		Total:      result.Total,
		Percentage: result.Percentage,
		Rank:       string(result.Rank),
		Results:    session.Review(),
	}, nil
}
