package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"credsaathi_backend/internal/adapters/storage"
	"credsaathi_backend/internal/loans/docscan"
	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/repository"
	"credsaathi_backend/platform/config"
	"credsaathi_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	sessions *repository.SessionRepository
	scanner  *docscan.Scanner
	storage  storage.StorageService
	bucket   string
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, scanner *docscan.Scanner, store storage.StorageService, bucket string, log *logger.Logger) (*Worker, error) {
	addr := cfg.GetRedisAddr()
	if addr == "" {
		return nil, fmt.Errorf("redis addr not configured")
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: addr}, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		sessions: repository.NewSessionRepository(pool),
		scanner:  scanner,
		storage:  store,
		bucket:   bucket,
		log:      log,
	}

	mux.HandleFunc(TaskSlipRescan, w.handleSlipRescan)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleSlipRescan retries salary extraction for a stored slip whose first
// pass found no figure, typically because the extraction service was down.
func (w *Worker) handleSlipRescan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSlipRescanPayload(task)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		return err
	}

	state, err := w.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if state.WorkflowComplete || state.SalarySlipUploaded {
		return nil
	}

	if w.storage == nil || w.scanner == nil {
		return nil
	}

	object, err := w.storage.DownloadFile(ctx, w.bucket, payload.ObjectKey)
	if err != nil {
		return err
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return err
	}

	scan, err := w.scanner.Scan(ctx, payload.Filename, data)
	if err != nil {
		return err
	}
	if !scan.SalaryFound {
		w.log.Info("slip rescan found no salary", "session_id", sessionID.String(), "object_key", payload.ObjectKey)
		return nil
	}

	state.MonthlySalary = &scan.MonthlySalary
	state.SalarySlipUploaded = true
	state.SetStatus(domain.StatusNegotiating)

	if err := w.sessions.Save(ctx, state); err != nil {
		return err
	}

	w.log.Info("slip rescan recovered salary",
		"session_id", sessionID.String(),
		"monthly_salary", scan.MonthlySalary)
	return nil
}
