// Package service orchestrates loan application sessions: it serializes
// turns per session, drives the stage pipeline, persists state snapshots,
// and keeps the fraud ledger in sync with outcomes.
package service

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"credsaathi_backend/internal/adapters/storage"
	domainevents "credsaathi_backend/internal/events"
	"credsaathi_backend/internal/loans/docscan"
	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/fraud"
	"credsaathi_backend/internal/loans/repository"
	"credsaathi_backend/internal/loans/transport"
	"credsaathi_backend/internal/loans/workflow"
	"credsaathi_backend/internal/scheduler"
	"credsaathi_backend/platform/apperr"
	"credsaathi_backend/platform/events"
	"credsaathi_backend/platform/logger"
	"credsaathi_backend/platform/phone"
	"credsaathi_backend/platform/sanitize"
)

// slipRescanDelay is how long to wait before retrying extraction on a slip
// that produced no salary figure.
const slipRescanDelay = 15 * time.Minute

// SessionStore persists application state snapshots.
type SessionStore interface {
	Save(ctx context.Context, state *domain.ApplicationState) error
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.ApplicationState, error)
}

// Service is the application service for the loan pipeline.
type Service struct {
	sessions   SessionStore
	runner     *workflow.Runner
	ledger     fraud.Ledger
	scanner    *docscan.Scanner
	storage    storage.StorageService
	slipBucket string
	rescan     scheduler.SlipRescanScheduler
	bus        events.Bus
	log        *logger.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func New(sessions SessionStore, runner *workflow.Runner, ledger fraud.Ledger, scanner *docscan.Scanner, store storage.StorageService, slipBucket string, rescan scheduler.SlipRescanScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		sessions:   sessions,
		runner:     runner,
		ledger:     ledger,
		scanner:    scanner,
		storage:    store,
		slipBucket: slipBucket,
		rescan:     rescan,
		bus:        bus,
		log:        log,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor returns the per-session mutex, creating it on first use. Turns
// within one session run strictly one at a time.
func (s *Service) lockFor(sessionID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.locks[sessionID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[sessionID] = lock
	return lock
}

// StartSession opens a new application session and runs the opening turn,
// which produces the greeting and the first sales question.
func (s *Service) StartSession(ctx context.Context, req transport.StartSessionRequest) (*domain.ApplicationState, []string, error) {
	if !phone.Valid(req.Phone) {
		return nil, nil, apperr.InvalidInput("phone must be a valid Indian mobile number")
	}
	normalized := phone.NormalizeE164(req.Phone)

	state := domain.NewApplicationState(uuid.New())
	state.CustomerName = sanitize.Text(req.CustomerName)
	state.Email = req.Email
	state.Phone = normalized
	state.VerifiedAddress = sanitize.Text(req.Address)
	state.City = sanitize.Text(req.City)
	state.MonthlySalary = req.MonthlySalary
	state.CreditScore = req.CreditScore
	if req.CurrentLoan != nil {
		state.CurrentLoanDetails = &domain.PriorLoan{
			Lender:            req.CurrentLoan.Lender,
			OutstandingAmount: req.CurrentLoan.OutstandingAmount,
			MonthlyEMI:        req.CurrentLoan.MonthlyEMI,
			MonthlySalary:     req.CurrentLoan.MonthlySalary,
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, domainevents.ApplicationStarted{
			BaseEvent: events.NewBaseEvent(),
			SessionID: state.SessionID,
			Phone:     state.Phone,
		})
	}

	replies, err := s.runTurn(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, nil, err
	}
	return state, replies, nil
}

// SendMessage appends a user turn and runs the pipeline.
func (s *Service) SendMessage(ctx context.Context, sessionID uuid.UUID, message string) (*domain.ApplicationState, []string, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if state.WorkflowComplete {
		return nil, nil, apperr.Gone("this application is complete; start a new session")
	}

	// Utterances end up in prompts and the stored transcript.
	state.AppendUserMessage(sanitize.Text(message))
	replies, err := s.runTurn(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, nil, err
	}
	return state, replies, nil
}

// GetSession returns the current state snapshot.
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.ApplicationState, error) {
	return s.load(ctx, sessionID)
}

// SlipResult reports the outcome of a salary slip upload.
type SlipResult struct {
	Scan    docscan.SlipScan
	Replies []string
}

// UploadSalarySlip validates and scans a slip, stores it, and resumes the
// pipeline with the extracted salary. An unreadable slip is stored but
// leaves the application waiting, so the applicant can retry.
func (s *Service) UploadSalarySlip(ctx context.Context, sessionID uuid.UUID, filename string, data []byte) (*domain.ApplicationState, SlipResult, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, SlipResult{}, err
	}
	if state.WorkflowComplete {
		return nil, SlipResult{}, apperr.Gone("this application is complete; start a new session")
	}

	scan, err := s.scanner.Scan(ctx, filename, data)
	if err != nil {
		return nil, SlipResult{}, err
	}

	if s.storage != nil {
		contentType := mime.TypeByExtension(filepath.Ext(filename))
		key, upErr := s.storage.UploadFile(ctx, s.slipBucket, state.SessionID.String(), filename, contentType, bytes.NewReader(data), int64(len(data)))
		if upErr != nil {
			s.log.ExternalCallFailure("minio", "upload_salary_slip", upErr)
		} else {
			state.SalarySlipObjectKey = key
		}
	}

	result := SlipResult{Scan: scan}
	if !scan.SalaryFound {
		if err := s.sessions.Save(ctx, state); err != nil {
			return nil, SlipResult{}, err
		}
		if s.rescan != nil && state.SalarySlipObjectKey != "" {
			payload := scheduler.SlipRescanPayload{
				SessionID: state.SessionID.String(),
				ObjectKey: state.SalarySlipObjectKey,
				Filename:  filename,
			}
			if err := s.rescan.ScheduleSlipRescan(ctx, payload, time.Now().Add(slipRescanDelay)); err != nil {
				s.log.ExternalCallFailure("asynq", "schedule_slip_rescan", err)
			}
		}
		return state, result, nil
	}

	state.MonthlySalary = &scan.MonthlySalary
	state.SalarySlipUploaded = true
	// Re-enter the pipeline so underwriting can decide with the salary now
	// on file.
	state.SetStatus(domain.StatusNegotiating)

	replies, err := s.runTurn(ctx, state)
	if err != nil {
		return nil, SlipResult{}, err
	}
	result.Replies = replies

	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, SlipResult{}, err
	}
	return state, result, nil
}

// FraudStatistics exposes the ledger monitoring snapshot.
func (s *Service) FraudStatistics(ctx context.Context) (fraud.Statistics, error) {
	return s.ledger.Statistics(ctx)
}

func (s *Service) load(ctx context.Context, sessionID uuid.UUID) (*domain.ApplicationState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, apperr.NotFound("loan session not found")
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// runTurn executes the pipeline once and applies post-run bookkeeping:
// ledger updates and outcome events.
func (s *Service) runTurn(ctx context.Context, state *domain.ApplicationState) ([]string, error) {
	before := len(state.Messages)
	sanctionBefore := state.SanctionLetterObjectKey

	if err := s.runner.Run(ctx, state); err != nil {
		return nil, err
	}

	var replies []string
	for _, m := range state.Messages[before:] {
		if m.Role == domain.RoleAssistant {
			replies = append(replies, m.Content)
		}
	}

	switch state.LoanStatus {
	case domain.StatusRejected:
		if !state.RejectionRecorded {
			if err := s.ledger.RecordRejection(ctx, state.Phone); err != nil {
				s.log.DatabaseError("record_rejection", err)
			} else {
				state.RejectionRecorded = true
			}
			if s.bus != nil {
				s.bus.Publish(ctx, domainevents.ApplicationRejected{
					BaseEvent: events.NewBaseEvent(),
					SessionID: state.SessionID,
					Phone:     state.Phone,
					Reason:    state.RejectionReason,
					RiskScore: state.FraudRiskScore,
				})
			}
		}
	case domain.StatusManualReviewFraud:
		if s.bus != nil {
			s.bus.Publish(ctx, domainevents.ManualReviewRequired{
				BaseEvent: events.NewBaseEvent(),
				SessionID: state.SessionID,
				RiskScore: state.FraudRiskScore,
			})
		}
	}

	if sanctionBefore == "" && state.SanctionLetterObjectKey != "" && s.bus != nil {
		s.bus.Publish(ctx, domainevents.SanctionIssued{
			BaseEvent: events.NewBaseEvent(),
			SessionID: state.SessionID,
			Phone:     state.Phone,
			ObjectKey: state.SanctionLetterObjectKey,
		})
	}

	return replies, nil
}
