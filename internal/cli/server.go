package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"iqboard-service/internal/app"
	"iqboard-service/internal/avatar"
	"iqboard-service/internal/config"
	"iqboard-service/internal/domain"
	"iqboard-service/internal/infra/memory"
	pgcatalog "iqboard-service/internal/infra/postgres"
	redisinfra "iqboard-service/internal/infra/redis"
	"iqboard-service/internal/insight"
	transport "iqboard-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalog())
	if pool != nil {
		loader = pgcatalog.NewCatalogLoader(pool)
	} else if cfg.Catalog.Path != "" {
		loader = memory.NewFileCatalogLoader(cfg.Catalog.Path)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogRepo app.CatalogRepository
	if redisClient != nil {
		catalogRepo = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogRepo = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewQuizService(store, catalogRepo)

	avatarClient := &http.Client{Timeout: config.TTLDuration(cfg.Avatar.Timeout, 10*time.Second)}
	avatars := avatar.NewFetcher(avatarClient, cfg.Avatar.URLTemplate)

	insightHTTP := &http.Client{Timeout: config.TTLDuration(cfg.Insight.Timeout, 30*time.Second)}
	insightClient := insight.NewClient(insightHTTP, cfg.Insight.Endpoint)

	wsHandler := transport.NewWSHandler(service)
	restHandler := transport.NewRESTHandler(service, avatars, insightClient, cfg.Server.Origin)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	restHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting iqboard service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalog provides a demo question bank; production deployments load
// the full bank from Postgres or the configured YAML file.
func sampleCatalog() []domain.Question {
	return []domain.Question{
		{
			ID:            "easy-1",
			Question:      "What kind of workloads does OpenGradient run on-chain?",
			Options:       []string{"Video transcoding", "AI model inference", "File storage", "DNS resolution"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyEasy,
			Category:      "basics",
		},
		{
			ID:            "easy-2",
			Question:      "What does OPG denote in the OpenGradient ecosystem?",
			Options:       []string{"The network token", "A model format", "A wallet vendor", "A testnet name"},
			CorrectAnswer: 0,
			Difficulty:    domain.DifficultyEasy,
			Category:      "tokenomics",
		},
		{
			ID:            "easy-3",
			Question:      "Which artifact does a quiz result card visualize?",
			Options:       []string{"Gas usage", "A session score and rank", "Validator uptime", "Block height"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyEasy,
			Category:      "basics",
		},
		{
			ID:            "easy-4",
			Question:      "What does LLM stand for?",
			Options:       []string{"Large Language Model", "Linked Ledger Machine", "Low Latency Module", "Layered Learning Mesh"},
			CorrectAnswer: 0,
			Difficulty:    domain.DifficultyEasy,
			Category:      "ai",
		},
		{
			ID:            "easy-5",
			Question:      "Smart contracts on OpenGradient can do what with models?",
			Options:       []string{"Train them from scratch", "Invoke inference directly", "Delete them", "Rename them"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyEasy,
			Category:      "architecture",
		},
		{
			ID:            "medium-1",
			Question:      "What role does a TEE play in verified inference?",
			Options:       []string{"It compresses weights", "It attests the execution environment", "It shards the model", "It batches transactions"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyMedium,
			Category:      "security",
		},
		{
			ID:            "medium-2",
			Question:      "Why anchor inference results on a blockchain?",
			Options:       []string{"Cheaper compute", "Tamper-evident provenance", "Faster inference", "Smaller models"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyMedium,
			Category:      "architecture",
		},
		{
			ID:            "medium-3",
			Question:      "A transaction hash attached to an AI analysis indicates what?",
			Options:       []string{"The model version", "On-chain settlement of the request", "The prompt length", "A refund"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyMedium,
			Category:      "tokenomics",
		},
		{
			ID:            "medium-4",
			Question:      "Which property distinguishes verified inference from a plain API call?",
			Options:       []string{"Lower latency", "Cryptographic attestation of the result", "Bigger context window", "Streaming output"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyMedium,
			Category:      "security",
		},
		{
			ID:            "medium-5",
			Question:      "Where do OpenGradient model artifacts live?",
			Options:       []string{"Only on the client", "In the network's model repository", "In a CSV file", "Inside the wallet"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyMedium,
			Category:      "architecture",
		},
		{
			ID:            "hard-1",
			Question:      "Which attack does attested execution primarily mitigate for inference?",
			Options:       []string{"Front-running", "Result substitution by the host", "Sybil voting", "Fee griefing"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyHard,
			Category:      "security",
		},
		{
			ID:            "hard-2",
			Question:      "Why might an inference request carry an OPG spending approval?",
			Options:       []string{"To whitelist a validator", "To prepay metered model execution", "To rotate keys", "To pin a block"},
			CorrectAnswer: 1,
			Difficulty:    domain.DifficultyHard,
			Category:      "tokenomics",
		},
	}
}
