package app

import (
	"sync"
	"time"

	"iqboard-service/internal/domain"
)

// SessionSeconds is the countdown budget for one quiz attempt.
const SessionSeconds = 300

// QuizSession drives a single user's quiz attempt: navigation, answer
// recording, the countdown, and a single idempotent submission. All
// transitions are total; out-of-bounds navigation is a no-op (or redirects to
// submit, for Next on the last question).
type QuizSession struct {
	id        string
	questions []domain.Question

	mu          sync.RWMutex
	index       int
	answers     []int
	secondsLeft int
	submitted   bool
	result      *domain.ScoreResult
	subscribers map[chan domain.SessionState]struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// NewQuizSession starts a session over the given questions with the countdown
// ticking once per second.
func NewQuizSession(id string, questions []domain.Question) *QuizSession {
	return newQuizSession(id, questions, time.Second)
}

// newQuizSession lets tests run the countdown on a faster tick.
func newQuizSession(id string, questions []domain.Question, tick time.Duration) *QuizSession {
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = domain.Unanswered
	}
	s := &QuizSession{
		id:          id,
		questions:   questions,
		answers:     answers,
		secondsLeft: SessionSeconds,
		subscribers: make(map[chan domain.SessionState]struct{}),
		done:        make(chan struct{}),
	}
	go s.countdown(tick)
	return s
}

func (s *QuizSession) countdown(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.tickSecond() {
				return
			}
		}
	}
}

// tickSecond burns one second of budget and reports whether the countdown is
// finished, submitting when the budget reaches zero.
func (s *QuizSession) tickSecond() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return true
	}
	s.secondsLeft--
	if s.secondsLeft <= 0 {
		s.secondsLeft = 0
		s.submitLocked()
		return true
	}
	s.broadcastLocked()
	return false
}

// ID returns the session identifier.
func (s *QuizSession) ID() string { return s.id }

// Questions returns the session's question list in presentation order.
func (s *QuizSession) Questions() []domain.Question {
	return s.questions
}

// SelectOption records the answer for the current question. Re-selecting
// overwrites; option range validation is the caller's contract.
func (s *QuizSession) SelectOption(option int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted || len(s.answers) == 0 {
		return
	}
	s.answers[s.index] = option
	s.broadcastLocked()
}

// Next advances to the following question, or submits when already on the
// last one.
func (s *QuizSession) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return
	}
	if s.index < len(s.questions)-1 {
		s.index++
		s.broadcastLocked()
		return
	}
	s.submitLocked()
}

// Prev steps back one question; a no-op at index zero. Never submits.
func (s *QuizSession) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted || s.index == 0 {
		return
	}
	s.index--
	s.broadcastLocked()
}

// Submit freezes the answers and computes the score. The first caller wins;
// the timer and manual submission may race and later calls are no-ops.
func (s *QuizSession) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitLocked()
}

func (s *QuizSession) submitLocked() {
	if s.submitted {
		return
	}
	s.submitted = true
	correct := 0
	for i, q := range s.questions {
		if s.answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	result := CalculateScore(len(s.questions), correct)
	s.result = &result
	s.broadcastLocked()
	s.stop()
}

// Close tears the session down without scoring: the countdown stops and no
// further state is produced.
func (s *QuizSession) Close() {
	s.stop()
}

func (s *QuizSession) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Result returns the score once the session has been submitted.
func (s *QuizSession) Result() (domain.ScoreResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.ScoreResult{}, false
	}
	return *s.result, true
}

// State snapshots the session for transport.
func (s *QuizSession) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Review builds the per-question breakdown for the analysis collaborator and
// the review view. Skipped questions carry the literal answer "Skipped".
func (s *QuizSession) Review() []domain.QuestionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.QuestionResult, 0, len(s.questions))
	for i, q := range s.questions {
		userAnswer := "Skipped"
		if s.answers[i] >= 0 && s.answers[i] < len(q.Options) {
			userAnswer = q.Options[s.answers[i]]
		}
		results = append(results, domain.QuestionResult{
			Question:      q.Question,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.Options[q.CorrectAnswer],
			IsCorrect:     s.answers[i] == q.CorrectAnswer,
			Category:      q.Category,
			Difficulty:    string(q.Difficulty),
		})
	}
	return results
}

// Subscribe returns a channel receiving state snapshots, starting with the
// current one. The caller must invoke cancel to avoid leaks.
func (s *QuizSession) Subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

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

func (s *QuizSession) broadcastLocked() {
	state := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Drop the stale snapshot so a slow reader never blocks transitions.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

func (s *QuizSession) snapshotLocked() domain.SessionState {
	answers := append([]int(nil), s.answers...)
	state := domain.SessionState{
		SessionID:   s.id,
		Index:       s.index,
		Answers:     answers,
		SecondsLeft: s.secondsLeft,
		Submitted:   s.submitted,
	}
	if s.result != nil {
		result := *s.result
		state.Result = &result
	}
	return state
}
