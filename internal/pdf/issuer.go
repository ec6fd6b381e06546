package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"credsaathi_backend/internal/adapters/storage"
	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/emi"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/apperr"
	"credsaathi_backend/platform/logger"
)

// Issuer renders sanction letters, converts them to PDF, and stores them
// in the sanction letter bucket.
type Issuer struct {
	gotenberg *GotenbergClient
	storage   storage.StorageService
	bucket    string
	baseURL   string
	log       *logger.Logger
}

func NewIssuer(gotenberg *GotenbergClient, store storage.StorageService, bucket, baseURL string, log *logger.Logger) *Issuer {
	return &Issuer{gotenberg: gotenberg, storage: store, bucket: bucket, baseURL: baseURL, log: log}
}

var _ ports.SanctionIssuer = (*Issuer)(nil)

// Issue builds the letter for an approved application and returns the
// storage key of the stored PDF.
func (i *Issuer) Issue(ctx context.Context, state *domain.ApplicationState) (string, error) {
	if i.gotenberg == nil || i.storage == nil {
		return "", apperr.ExternalCall("sanction letter generation is not configured", nil)
	}
	if state.RequestedLoanAmount == nil || state.RequestedTenure == nil ||
		state.NegotiatedInterestRate == nil || state.CalculatedEMI == nil {
		return "", apperr.InvalidInput("application is missing terms required for a sanction letter")
	}

	amount := *state.RequestedLoanAmount
	tenure := *state.RequestedTenure
	rate := *state.NegotiatedInterestRate
	installment := *state.CalculatedEMI

	total := emi.TotalRepayment(installment, tenure)
	interest := emi.TotalInterest(amount, total)

	now := time.Now()
	letterNumber := fmt.Sprintf("CS-%d-%s", now.Year(), strings.ToUpper(state.SessionID.String()[:8]))

	data := SanctionLetterData{
		LetterNumber:   letterNumber,
		IssuedOn:       now.Format("02 Jan 2006"),
		ValidUntil:     now.Add(letterValidity).Format("02 Jan 2006"),
		CustomerName:   state.CustomerName,
		Phone:          state.Phone,
		Address:        state.VerifiedAddress,
		City:           state.City,
		LoanAmount:     amount,
		TenureMonths:   tenure,
		InterestRate:   rate,
		MonthlyEMI:     installment,
		TotalRepayment: total,
		TotalInterest:  interest,
		LoanPurpose:    purposeOrEmpty(state.LoanPurpose),
	}
	if i.baseURL != "" {
		data.VerifyURL = fmt.Sprintf("%s/verify/sanction/%s", strings.TrimRight(i.baseURL, "/"), state.SessionID)
	}

	html, err := RenderSanctionLetter(data)
	if err != nil {
		return "", err
	}

	pdfBytes, err := i.gotenberg.ConvertHTML(ctx, html, DefaultContentOpts())
	if err != nil {
		return "", apperr.ExternalCall("convert sanction letter to PDF", err)
	}

	fileName := fmt.Sprintf("sanction_%s.pdf", letterNumber)
	key, err := i.storage.UploadFile(ctx, i.bucket, state.SessionID.String(), fileName, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", apperr.ExternalCall("store sanction letter", err)
	}

	i.log.Info("sanction letter issued", "session_id", state.SessionID.String(), "letter_number", letterNumber, "object_key", key)
	return key, nil
}

func purposeOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
