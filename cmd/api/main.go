package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"tharaga/auth"
	"tharaga/db"
	"tharaga/event"
	"tharaga/lead"
	"tharaga/persona"
	"tharaga/property"
	"tharaga/readiness"
	"tharaga/workflow"
)

func main() {
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("bootstrap database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eventRepo := event.NewRepository(pool)
	eventService := event.NewService(eventRepo)

	evaluator := readiness.NewEvaluator(eventRepo, readiness.NewTriggerLog(pool))
	classifier := persona.NewService(eventRepo, persona.NewProfileStore(pool))

	workflowRepo := workflow.NewRepository(pool)
	workflowService := workflow.NewService(workflowRepo, lead.NewRepository(pool), property.NewRepository(pool))
	retryQueue := workflow.NewRetryQueue(workflowRepo, noopSender{})

	server := &Server{
		authService:     auth.NewService(auth.NewRepository(pool), os.Getenv("JWT_SECRET")),
		eventService:    eventService,
		evaluator:       evaluator,
		classifier:      classifier,
		workflowService: workflowService,
		retryQueue:      retryQueue,
		cronSecret:      os.Getenv("CRON_SECRET"),
		logger:          logger,
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("api listening", "addr", addr)
	if err := http.ListenAndServe(addr, server.routes()); err != nil {
		logger.Error("http server", "error", err)
		os.Exit(1)
	}
}

// noopSender stands in for the outbound provider integration, which runs as
// a separate process. It logs the dispatch and reports a synthetic provider
// id so retried records leave the queue.
type noopSender struct{}

func (noopSender) Send(ctx context.Context, rec workflow.DispatchRecord) (string, error) {
	slog.Info("dispatch ready for delivery",
		"dispatch_id", rec.ID,
		"action_type", rec.ActionType,
		"urgency", rec.Urgency,
	)
	return "logged-" + rec.ID, nil
}
