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
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/app"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/auth"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/config"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/infra/memory"
	pgstore "github.com/truth0530/ds-ch-mission-2026short-sub000/internal/infra/postgres"
	redisstore "github.com/truth0530/ds-ch-mission-2026short-sub000/internal/infra/redis"
	transport "github.com/truth0530/ds-ch-mission-2026short-sub000/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the survey server",
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var questionLoader memory.QuestionLoader = memory.NewStaticQuestionLoader(nil)
	var teamLoader memory.TeamLoader = memory.NewStaticTeamLoader(nil)
	var submissions app.SubmissionStore = memory.NewSubmissionStore()
	if pool != nil {
		questionLoader = pgstore.NewQuestionLoader(pool)
		teamLoader = pgstore.NewTeamLoader(pool)
		submissions = pgstore.NewSubmissionStore(pool)
	}

	questionTTL := config.TTLDuration(cfg.Survey.QuestionTTL, 10*time.Minute)
	var questions app.QuestionRepository
	var drafts app.DraftStore
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, questionLoader, questionTTL)
		drafts = redisstore.NewDraftStore(redisClient)
	} else {
		questions = memory.NewQuestionRepository(questionLoader, questionTTL)
		drafts = memory.NewDraftStore()
	}
	teams := memory.NewTeamRepository(teamLoader)

	service := app.NewSurveyService(drafts, submissions, questions, teams)
	flowHandler := transport.NewFlowHandler(service, auth.NewManager(cfg.Auth.Secret))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", flowHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting mission survey service on :%s", finalPort)
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
