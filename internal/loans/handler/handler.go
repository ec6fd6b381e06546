// Package handler exposes the loan pipeline over HTTP.
package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"credsaathi_backend/internal/loans/service"
	"credsaathi_backend/internal/loans/transport"
	"credsaathi_backend/platform/httpkit"
	"credsaathi_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidSessionID = "invalid session ID"
)

// Handler handles HTTP requests for loan application sessions.
type Handler struct {
	svc         *service.Service
	val         *validator.Validator
	maxSlipSize int64
}

// New creates a new loans handler.
func New(svc *service.Service, val *validator.Validator, maxSlipSize int64) *Handler {
	return &Handler{svc: svc, val: val, maxSlipSize: maxSlipSize}
}

// StartSession opens a new application session.
// POST /api/v1/loans/sessions
func (h *Handler) StartSession(c *gin.Context) {
	var req transport.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	state, replies, err := h.svc.StartSession(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.FromState(state, replies, false))
}

// SendMessage appends a user turn and runs the pipeline.
// POST /api/v1/loans/sessions/:id/messages
func (h *Handler) SendMessage(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req transport.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	state, replies, err := h.svc.SendMessage(c.Request.Context(), sessionID, req.Message)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromState(state, replies, false))
}

// GetSession returns the session state including the transcript.
// GET /api/v1/loans/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.svc.GetSession(c.Request.Context(), sessionID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromState(state, nil, true))
}

// UploadSalarySlip accepts a multipart salary slip upload.
// POST /api/v1/loans/sessions/:id/salary-slip
func (h *Handler) UploadSalarySlip(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	defer file.Close()

	if h.maxSlipSize > 0 && header.Size > h.maxSlipSize {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	var reader io.Reader = file
	if h.maxSlipSize > 0 {
		reader = io.LimitReader(file, h.maxSlipSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	state, result, err := h.svc.UploadSalarySlip(c.Request.Context(), sessionID, header.Filename, data)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SlipUploadResponse{
		SessionID:     state.SessionID,
		SalaryFound:   result.Scan.SalaryFound,
		MonthlySalary: result.Scan.MonthlySalary,
		ObjectKey:     state.SalarySlipObjectKey,
		LoanStatus:    string(state.LoanStatus),
		Replies:       result.Replies,
	})
}

// FraudStatistics exposes the fraud ledger snapshot.
// GET /api/v1/admin/fraud/statistics
func (h *Handler) FraudStatistics(c *gin.Context) {
	stats, err := h.svc.FraudStatistics(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSessionID, nil)
		return uuid.Nil, false
	}
	return id, true
}
