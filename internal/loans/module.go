// Package loans provides the loan origination bounded context module.
// This file wires the stage pipeline, persistence, and HTTP surface.
package loans

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"credsaathi_backend/internal/adapters"
	"credsaathi_backend/internal/adapters/storage"
	apphttp "credsaathi_backend/internal/http"
	"credsaathi_backend/internal/loans/agent"
	"credsaathi_backend/internal/loans/docscan"
	"credsaathi_backend/internal/loans/fraud"
	"credsaathi_backend/internal/loans/handler"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/internal/loans/repository"
	"credsaathi_backend/internal/loans/service"
	"credsaathi_backend/internal/loans/workflow"
	"credsaathi_backend/internal/pdf"
	"credsaathi_backend/internal/scheduler"
	"credsaathi_backend/platform/ai/groqcloud"
	"credsaathi_backend/platform/config"
	"credsaathi_backend/platform/events"
	"credsaathi_backend/platform/logger"
	"credsaathi_backend/platform/validator"
)

// Module is the loan origination bounded context module.
type Module struct {
	service  *service.Service
	sessions *repository.SessionRepository
	handler  *handler.Handler
}

// NewModule creates and initializes the loans module. Optional
// collaborators (Groq, Gotenberg, document scanning) degrade gracefully:
// the pipeline still runs on deterministic fallbacks when they are not
// configured.
func NewModule(pool *pgxpool.Pool, bus events.Bus, storageSvc storage.StorageService, rescan scheduler.SlipRescanScheduler, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	sessions := repository.NewSessionRepository(pool)
	ledger := repository.NewLedger(pool)
	offers := repository.NewOfferStore(pool)
	engine := fraud.NewEngine(ledger)

	var llm ports.TextGenerator
	if cfg.IsGroqEnabled() {
		llm = adapters.NewGroqTextGenerator(groqcloud.New(groqcloud.Config{
			APIKey:            cfg.GetGroqAPIKey(),
			BaseURL:           cfg.GetGroqBaseURL(),
			Model:             cfg.GetGroqModel(),
			RequestsPerMinute: cfg.GetGroqRequestsPerMinute(),
		}))
	} else {
		log.Warn("GROQ_API_KEY not configured; stages run on deterministic fallbacks")
	}

	bureau := adapters.NewStubCreditBureau()

	var issuer ports.SanctionIssuer
	if cfg.IsGotenbergEnabled() && storageSvc != nil {
		gotenberg := pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
		issuer = pdf.NewIssuer(gotenberg, storageSvc, cfg.GetMinioBucketSanctionLetters(), cfg.GetAppBaseURL(), log)
	} else {
		log.Warn("gotenberg or storage not configured; sanction letter PDFs disabled")
	}

	var extractor docscan.TextExtractor
	if cfg.IsDocScanEnabled() {
		extractor = docscan.NewTikaClient(cfg.GetDocScanBaseURL(), log)
	} else {
		log.Warn("DOCSCAN_BASE_URL not configured; salary slip text extraction disabled")
	}
	scanner := docscan.NewScanner(extractor, cfg.GetDocScanMaxFileSize(), log)

	agents := []agent.Agent{
		agent.NewMasterAgent(log),
		agent.NewSalesAgent(llm, offers, log),
		agent.NewVerificationAgent(llm, log),
		agent.NewUnderwritingAgent(bureau, log),
		agent.NewFraudCheckAgent(engine, llm, log),
		agent.NewSanctionAgent(issuer, log),
		agent.NewAdvisorAgent(llm, log),
		agent.NewMasterFinalAgent(log),
	}

	runner, err := workflow.NewRunner(agents, bus, log)
	if err != nil {
		return nil, err
	}

	svc := service.New(sessions, runner, ledger, scanner, storageSvc, cfg.GetMinioBucketSalarySlips(), rescan, bus, log)

	return &Module{
		service:  svc,
		sessions: sessions,
		handler:  handler.New(svc, val, cfg.GetDocScanMaxFileSize()),
	}, nil
}

// Name returns the module identifier for logging.
func (m *Module) Name() string {
	return "loans"
}

// RegisterRoutes mounts the loan session and admin routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	sessions := ctx.V1.Group("/loans/sessions")
	sessions.POST("", m.handler.StartSession)
	sessions.GET("/:id", m.handler.GetSession)
	sessions.POST("/:id/messages", m.handler.SendMessage)
	sessions.POST("/:id/salary-slip", ctx.UploadRateLimiter.RateLimit(), m.handler.UploadSalarySlip)

	ctx.Admin.GET("/fraud/statistics", m.handler.FraudStatistics)
}

// Service returns the loan application service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Sessions returns the session repository, used by subscribers that need
// read access to application state.
func (m *Module) Sessions() *repository.SessionRepository {
	return m.sessions
}
