// Package docscan validates uploaded salary slips and extracts a monthly
// salary figure from them. Text extraction runs against a Tika-compatible
// service; the figure itself is parsed locally.
package docscan

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"credsaathi_backend/platform/apperr"
	"credsaathi_backend/platform/logger"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// TextExtractor turns a document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// SlipScan is the outcome of scanning one salary slip.
type SlipScan struct {
	Filename      string
	PageCount     int
	MonthlySalary float64
	SalaryFound   bool
}

// Scanner validates slips and runs salary extraction end to end.
type Scanner struct {
	extractor   TextExtractor
	maxFileSize int64
	log         *logger.Logger
}

func NewScanner(extractor TextExtractor, maxFileSize int64, log *logger.Logger) *Scanner {
	return &Scanner{extractor: extractor, maxFileSize: maxFileSize, log: log}
}

// ValidateDocument rejects unsupported extensions, oversized and empty
// files, and PDFs that cannot be opened.
func (s *Scanner) ValidateDocument(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return apperr.InvalidInput(fmt.Sprintf("unsupported file type %q, accepted: pdf, jpg, jpeg, png", ext))
	}
	if len(data) == 0 {
		return apperr.InvalidInput("uploaded file is empty")
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return apperr.InvalidInput(fmt.Sprintf("file exceeds maximum size of %d bytes", s.maxFileSize))
	}
	if ext == ".pdf" {
		count, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			return apperr.Unparsable("file is not a readable PDF")
		}
		if count < 1 {
			return apperr.Unparsable("PDF contains no pages")
		}
	}
	return nil
}

// Scan validates the document, extracts its text, and parses the monthly
// salary. A slip that validates but yields no salary figure is returned
// with SalaryFound false rather than an error, so callers can ask the
// applicant for a clearer document.
func (s *Scanner) Scan(ctx context.Context, filename string, data []byte) (SlipScan, error) {
	if err := s.ValidateDocument(filename, data); err != nil {
		return SlipScan{}, err
	}

	scan := SlipScan{Filename: filename}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		if count, err := api.PageCount(bytes.NewReader(data), nil); err == nil {
			scan.PageCount = count
		}
	}

	if s.extractor == nil {
		return scan, apperr.ExternalCall("document extraction service is not configured", nil)
	}

	text, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		s.log.ExternalCallFailure("docscan", "extract_text", err)
		return scan, err
	}

	salary, found := ParseMonthlySalary(text)
	scan.MonthlySalary = salary
	scan.SalaryFound = found
	return scan, nil
}
