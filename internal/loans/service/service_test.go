package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"credsaathi_backend/internal/adapters/storage"
	domainevents "credsaathi_backend/internal/events"
	"credsaathi_backend/internal/loans/agent"
	"credsaathi_backend/internal/loans/docscan"
	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/fraud"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/internal/loans/repository"
	"credsaathi_backend/internal/loans/transport"
	"credsaathi_backend/internal/loans/workflow"
	"credsaathi_backend/internal/scheduler"
	"credsaathi_backend/platform/apperr"
	"credsaathi_backend/platform/events"
	"credsaathi_backend/platform/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development")
}

type memStore struct {
	states map[uuid.UUID]*domain.ApplicationState
	saves  int
}

func newMemStore() *memStore {
	return &memStore{states: make(map[uuid.UUID]*domain.ApplicationState)}
}

func (m *memStore) Save(_ context.Context, state *domain.ApplicationState) error {
	m.states[state.SessionID] = state
	m.saves++
	return nil
}

func (m *memStore) Get(_ context.Context, sessionID uuid.UUID) (*domain.ApplicationState, error) {
	state, ok := m.states[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return state, nil
}

type stageAgent struct {
	stage domain.Stage
	run   func(state *domain.ApplicationState)
}

func (a stageAgent) Stage() domain.Stage { return a.stage }

func (a stageAgent) Run(_ context.Context, state *domain.ApplicationState) error {
	if a.run != nil {
		a.run(state)
	}
	return nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.EventName())
	}
	return out
}

func (b *recordingBus) count(name string) int {
	n := 0
	for _, got := range b.names() {
		if got == name {
			n++
		}
	}
	return n
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	return f.text, f.err
}

type fakeStorage struct {
	uploads []string
}

func (f *fakeStorage) UploadFile(_ context.Context, _, folder, fileName, _ string, _ io.Reader, _ int64) (string, error) {
	key := folder + "/" + fileName
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeStorage) DownloadFile(context.Context, string, string) (io.ReadCloser, error) {
	return nil, apperr.Internal("not supported in test")
}

func (f *fakeStorage) GenerateDownloadURL(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "http://storage.test/" + fileKey, FileKey: fileKey, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeStorage) DeleteObject(context.Context, string, string) error { return nil }
func (f *fakeStorage) EnsureBucketExists(context.Context, string) error   { return nil }
func (f *fakeStorage) ValidateContentType(string) error                   { return nil }
func (f *fakeStorage) ValidateFileSize(int64) error                       { return nil }
func (f *fakeStorage) GetMaxFileSize() int64                              { return 0 }

type fakeRescan struct {
	payloads []scheduler.SlipRescanPayload
}

func (f *fakeRescan) ScheduleSlipRescan(_ context.Context, payload scheduler.SlipRescanPayload, _ time.Time) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type deps struct {
	store   *memStore
	ledger  fraud.Ledger
	bus     *recordingBus
	storage *fakeStorage
	rescan  *fakeRescan
}

func newTestService(t *testing.T, agents []agent.Agent, extractor docscan.TextExtractor, d deps) (*Service, deps) {
	t.Helper()

	if d.store == nil {
		d.store = newMemStore()
	}
	if d.ledger == nil {
		d.ledger = fraud.NewMemoryLedger()
	}
	if d.bus == nil {
		d.bus = &recordingBus{}
	}

	log := testLogger()
	runner, err := workflow.NewRunner(agents, d.bus, log)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	scanner := docscan.NewScanner(extractor, 0, log)

	var store storage.StorageService
	if d.storage != nil {
		store = d.storage
	}
	var rescan scheduler.SlipRescanScheduler
	if d.rescan != nil {
		rescan = d.rescan
	}

	svc := New(d.store, runner, d.ledger, scanner, store, "salary-slips", rescan, d.bus, log)
	return svc, d
}

func greetingAgents() []agent.Agent {
	return []agent.Agent{
		stageAgent{stage: domain.StageMaster, run: func(state *domain.ApplicationState) {
			if len(state.Messages) == 0 {
				state.AppendAgentMessage(domain.StageMaster, "welcome to credsaathi")
			}
		}},
	}
}

func TestStartSessionRejectsInvalidPhone(t *testing.T) {
	svc, _ := newTestService(t, greetingAgents(), nil, deps{})

	_, _, err := svc.StartSession(context.Background(), transport.StartSessionRequest{
		CustomerName: "Asha Rao",
		Phone:        "not-a-phone",
	})
	if apperr.GetKind(err) != apperr.KindInvalidInput {
		t.Fatalf("kind = %v, want KindInvalidInput (err: %v)", apperr.GetKind(err), err)
	}
}

func TestStartSessionNormalizesPhoneAndGreets(t *testing.T) {
	svc, d := newTestService(t, greetingAgents(), nil, deps{})

	state, replies, err := svc.StartSession(context.Background(), transport.StartSessionRequest{
		CustomerName: "Asha Rao",
		Phone:        "098765 43210",
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if state.Phone != "+919876543210" {
		t.Errorf("phone = %q, want +919876543210", state.Phone)
	}
	if len(replies) != 1 || replies[0] != "welcome to credsaathi" {
		t.Errorf("replies = %v, want the greeting", replies)
	}
	if _, ok := d.store.states[state.SessionID]; !ok {
		t.Error("session was not persisted")
	}
	if got := d.bus.count(domainevents.ApplicationStartedName); got != 1 {
		t.Errorf("ApplicationStarted events = %d, want 1", got)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, greetingAgents(), nil, deps{})

	_, _, err := svc.SendMessage(context.Background(), uuid.New(), "hello")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want KindNotFound", apperr.GetKind(err))
	}
}

func TestSendMessageOnCompletedSession(t *testing.T) {
	svc, d := newTestService(t, greetingAgents(), nil, deps{})

	state := domain.NewApplicationState(uuid.New())
	state.WorkflowComplete = true
	d.store.states[state.SessionID] = state

	_, _, err := svc.SendMessage(context.Background(), state.SessionID, "hello again")
	if apperr.GetKind(err) != apperr.KindGone {
		t.Fatalf("kind = %v, want KindGone", apperr.GetKind(err))
	}
}

func TestRejectionRecordedExactlyOnce(t *testing.T) {
	rejecting := []agent.Agent{
		stageAgent{stage: domain.StageMaster, run: func(state *domain.ApplicationState) {
			state.SetRejected("repeat applicant")
		}},
	}
	svc, d := newTestService(t, rejecting, nil, deps{})

	state, _, err := svc.StartSession(context.Background(), transport.StartSessionRequest{
		CustomerName: "Asha Rao",
		Phone:        "+919876543210",
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if !state.RejectionRecorded {
		t.Fatal("rejection was not recorded on first turn")
	}

	// A further turn on the rejected session must not double-count.
	if _, _, err := svc.SendMessage(context.Background(), state.SessionID, "why?"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	count, err := d.ledger.RejectionCount(context.Background(), "+919876543210")
	if err != nil {
		t.Fatalf("RejectionCount: %v", err)
	}
	if count != 1 {
		t.Errorf("ledger rejection count = %d, want 1", count)
	}
	if got := d.bus.count(domainevents.ApplicationRejectedName); got != 1 {
		t.Errorf("ApplicationRejected events = %d, want 1", got)
	}
}

func TestUploadSalarySlipResumesPipeline(t *testing.T) {
	agents := []agent.Agent{
		stageAgent{stage: domain.StageMaster},
		stageAgent{stage: domain.StageSales, run: func(state *domain.ApplicationState) {
			state.AppendAgentMessage(domain.StageSales, "thanks, salary noted")
		}},
	}
	svc, d := newTestService(t, agents, fakeExtractor{text: "Net Pay: 45,000"}, deps{storage: &fakeStorage{}})

	state := domain.NewApplicationState(uuid.New())
	state.Phone = "+919876543210"
	state.SalarySlipRequired = true
	state.SetStatus(domain.StatusAwaitingSalarySlip)
	d.store.states[state.SessionID] = state

	got, result, err := svc.UploadSalarySlip(context.Background(), state.SessionID, "slip.png", []byte("pngdata"))
	if err != nil {
		t.Fatalf("UploadSalarySlip: %v", err)
	}
	if !result.Scan.SalaryFound {
		t.Fatal("salary was not found")
	}
	if got.MonthlySalary == nil || *got.MonthlySalary != 45000 {
		t.Errorf("monthly salary = %v, want 45000", got.MonthlySalary)
	}
	if !got.SalarySlipUploaded {
		t.Error("slip was not marked uploaded")
	}
	if got.SalarySlipObjectKey == "" {
		t.Error("object key was not stored")
	}
	if len(result.Replies) != 1 || result.Replies[0] != "thanks, salary noted" {
		t.Errorf("replies = %v, want the sales acknowledgement", result.Replies)
	}
	if len(d.storage.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(d.storage.uploads))
	}
}

func TestUploadSalarySlipNotFoundSchedulesRescan(t *testing.T) {
	svc, d := newTestService(t, greetingAgents(), fakeExtractor{text: "no figures in this document"}, deps{
		storage: &fakeStorage{},
		rescan:  &fakeRescan{},
	})

	state := domain.NewApplicationState(uuid.New())
	state.Phone = "+919876543210"
	state.SetStatus(domain.StatusAwaitingSalarySlip)
	d.store.states[state.SessionID] = state

	got, result, err := svc.UploadSalarySlip(context.Background(), state.SessionID, "slip.png", []byte("pngdata"))
	if err != nil {
		t.Fatalf("UploadSalarySlip: %v", err)
	}
	if result.Scan.SalaryFound {
		t.Fatal("salary should not have been found")
	}
	if got.SalarySlipUploaded {
		t.Error("slip must stay pending until a salary is extracted")
	}
	if got.LoanStatus != domain.StatusAwaitingSalarySlip {
		t.Errorf("status = %s, want awaiting salary slip", got.LoanStatus)
	}
	if len(result.Replies) != 0 {
		t.Errorf("replies = %v, want none without a rerun", result.Replies)
	}
	if len(d.rescan.payloads) != 1 {
		t.Fatalf("rescans scheduled = %d, want 1", len(d.rescan.payloads))
	}
	if d.rescan.payloads[0].SessionID != state.SessionID.String() {
		t.Errorf("rescan session = %s, want %s", d.rescan.payloads[0].SessionID, state.SessionID)
	}
	if d.rescan.payloads[0].ObjectKey != got.SalarySlipObjectKey {
		t.Errorf("rescan object key = %q, want %q", d.rescan.payloads[0].ObjectKey, got.SalarySlipObjectKey)
	}
}

type fixedOffers struct {
	offer *ports.Offer
}

func (f fixedOffers) OfferByPhone(context.Context, string) (*ports.Offer, error) {
	return f.offer, nil
}

type fixedBureau struct {
	score int
}

func (f fixedBureau) Score(context.Context, string) (int, error) {
	return f.score, nil
}

// pipelineAgents builds the real stage pipeline on deterministic
// fallbacks: no text generation, a fixed pre-approved offer, a pinned
// bureau score, and no sanction issuer.
func pipelineAgents(ledger fraud.Ledger, preApprovedLimit float64, creditScore int) []agent.Agent {
	log := testLogger()
	offers := fixedOffers{offer: &ports.Offer{InterestRate: 9.5, PreApprovedLimit: preApprovedLimit}}
	engine := fraud.NewEngine(ledger)
	return []agent.Agent{
		agent.NewMasterAgent(log),
		agent.NewSalesAgent(nil, offers, log),
		agent.NewVerificationAgent(nil, log),
		agent.NewUnderwritingAgent(fixedBureau{score: creditScore}, log),
		agent.NewFraudCheckAgent(engine, nil, log),
		agent.NewSanctionAgent(nil, log),
		agent.NewAdvisorAgent(nil, log),
		agent.NewMasterFinalAgent(log),
	}
}

// A request between 1x and 2x the pre-approved limit must pause for a
// salary slip, stay open for the upload, and then run through to an
// underwriting decision.
func TestSalarySlipBandResumesToDecision(t *testing.T) {
	ctx := context.Background()
	ledger := fraud.NewMemoryLedger()
	svc, _ := newTestService(t, pipelineAgents(ledger, 500000, 720), fakeExtractor{text: "Net Pay: 80,000"}, deps{
		ledger:  ledger,
		storage: &fakeStorage{},
	})

	state, _, err := svc.StartSession(ctx, transport.StartSessionRequest{
		CustomerName: "Asha Rao",
		Phone:        "+919876543210",
		Address:      "12 MG Road",
		City:         "Pune",
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	// 10 lakh against a 5 lakh limit sits exactly on the 2x band edge.
	paused, _, err := svc.SendMessage(ctx, state.SessionID, "I need 10 lakh for home renovation for 3 years")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if paused.LoanStatus != domain.StatusAwaitingSalarySlip {
		t.Fatalf("status = %s, want awaiting_salary_slip", paused.LoanStatus)
	}
	if !paused.SalarySlipRequired {
		t.Fatal("salary slip was not required for a request above the limit")
	}
	if paused.WorkflowComplete {
		t.Fatal("session closed while awaiting a salary slip; upload is unreachable")
	}

	decided, result, err := svc.UploadSalarySlip(ctx, state.SessionID, "slip.png", []byte("pngdata"))
	if err != nil {
		t.Fatalf("UploadSalarySlip: %v", err)
	}
	if !result.Scan.SalaryFound {
		t.Fatal("salary was not extracted from the slip")
	}
	if decided.MonthlySalary == nil || *decided.MonthlySalary != 80000 {
		t.Errorf("monthly salary = %v, want 80000", decided.MonthlySalary)
	}
	if decided.LoanStatus != domain.StatusApproved {
		t.Errorf("status = %s, want approved after the slip resume", decided.LoanStatus)
	}
	if !decided.WorkflowComplete {
		t.Error("workflow not complete after the underwriting decision")
	}
	if len(result.Replies) == 0 {
		t.Error("slip resume produced no replies")
	}
}

func TestSanctionIssuedEventFiresOnce(t *testing.T) {
	agents := []agent.Agent{
		stageAgent{stage: domain.StageMaster, run: func(state *domain.ApplicationState) {
			if state.SanctionLetterObjectKey == "" {
				state.SanctionLetterObjectKey = state.SessionID.String() + "/sanction_CS-2026-AB12CD34.pdf"
			}
		}},
	}
	svc, d := newTestService(t, agents, nil, deps{})

	state, _, err := svc.StartSession(context.Background(), transport.StartSessionRequest{
		CustomerName: "Asha Rao",
		Phone:        "+919876543210",
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, _, err := svc.SendMessage(context.Background(), state.SessionID, "thank you"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if got := d.bus.count(domainevents.SanctionIssuedName); got != 1 {
		t.Errorf("SanctionIssued events = %d, want 1", got)
	}
}
