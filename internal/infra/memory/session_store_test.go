package memory

import (
	"testing"

	"iqboard-service/internal/app"
	"iqboard-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewQuizSession("s1", []domain.Question{
		{ID: "q1", Question: "?", Options: []string{"a", "b"}, CorrectAnswer: 0, Difficulty: domain.DifficultyEasy},
	})
	defer session.Close()

	store.Put(session)
	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected stored session back")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
