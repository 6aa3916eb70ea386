package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"iqboard-service/internal/domain"
	"iqboard-service/internal/infra/memory"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog()),
	}
	repo := NewCatalogRepository(client, loader, time.Minute)

	catalog, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(catalog))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(catalogKey) {
		t.Fatalf("expected catalog cached in redis")
	}

	// Second call should hit the redis cache, loader not incremented.
	catalog, err = repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if catalog[0].ID != "q1" || catalog[0].CorrectAnswer != 1 {
		t.Fatalf("cached catalog lost fields: %+v", catalog[0])
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func sampleCatalog() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			Question:      "Which network hosts OpenGradient model inference?",
			Options:       []string{"A sidechain", "Its own L1"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyEasy,
			Category:      "architecture",
		},
		{
			ID:            "q2",
			Question:      "What does TEE stand for?",
			Options:       []string{"Trusted Execution Environment", "Tokenized Edge Engine"},
			CorrectAnswer: 0,
			Difficulty:    domain.DifficultyMedium,
			Category:      "security",
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
