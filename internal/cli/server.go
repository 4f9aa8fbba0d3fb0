package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prelims-drill-service/internal/app"
	"prelims-drill-service/internal/config"
	"prelims-drill-service/internal/domain"
	"prelims-drill-service/internal/infra/memory"
	pgloader "prelims-drill-service/internal/infra/postgres"
	redisinfra "prelims-drill-service/internal/infra/redis"
	transport "prelims-drill-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the drill server",
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 4*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionSetLoader = memory.NewStaticSetLoader(sampleSets())
	if pool != nil {
		loader = pgloader.NewQuestionSetLoader(pool)
	}

	setTTL := config.TTLDuration(cfg.Drill.SetTTL, 10*time.Minute)
	var setRepo app.QuestionSetRepository
	if redisClient != nil {
		setRepo = redisinfra.NewQuestionSetRepository(redisClient, loader, setTTL)
	} else {
		setRepo = memory.NewQuestionSetRepository(loader, setTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewDrillService(store, setRepo)

	defaults := app.StartOptions{
		DurationSeconds: int(config.TTLDuration(cfg.Drill.Duration, 2*time.Hour) / time.Second),
		MaxQuestions:    cfg.Drill.MaxQuestions,
	}
	wsHandler := transport.NewWSHandler(service, defaults)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting drill service on :%s", finalPort)
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

// sampleSets provides a minimal question set; swap this loader with the
// Postgres-backed one in production.
func sampleSets() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		"set-1": {
			ID:    "set-1",
			Title: "Warm-up",
			Questions: []domain.RawQuestion{
				{
					ID:       1,
					Question: "Which article of the Constitution deals with the Finance Commission?",
					Options:  []string{"A. Article 110", "B. Article 280", "C. Article 324", "D. Article 356"},
					Answer:   "B",
				},
				{
					ID:       2,
					Question: "The Tropic of Cancer does NOT pass through which state?",
					Options:  []string{"A. Gujarat", "B. Jharkhand", "C. Odisha", "D. Tripura"},
					Answer:   "C",
				},
			},
		},
	}
}
