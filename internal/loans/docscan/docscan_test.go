package docscan

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"credsaathi_backend/platform/apperr"
	"credsaathi_backend/platform/logger"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	return f.text, f.err
}

func testLogger() *logger.Logger {
	return logger.New("development")
}

func TestValidateDocument(t *testing.T) {
	scanner := NewScanner(nil, 1024, testLogger())

	tests := []struct {
		name     string
		filename string
		data     []byte
		wantKind apperr.Kind
	}{
		{name: "png accepted", filename: "slip.png", data: []byte("imagedata")},
		{name: "jpeg accepted", filename: "slip.JPEG", data: []byte("imagedata")},
		{name: "docx rejected", filename: "slip.docx", data: []byte("x"), wantKind: apperr.KindInvalidInput},
		{name: "no extension rejected", filename: "slip", data: []byte("x"), wantKind: apperr.KindInvalidInput},
		{name: "empty file rejected", filename: "slip.jpg", data: nil, wantKind: apperr.KindInvalidInput},
		{name: "oversized file rejected", filename: "slip.jpg", data: make([]byte, 2048), wantKind: apperr.KindInvalidInput},
		{name: "garbage pdf rejected", filename: "slip.pdf", data: []byte("not a pdf at all"), wantKind: apperr.KindUnparsable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := scanner.ValidateDocument(tt.filename, tt.data)
			if tt.wantKind == apperr.KindUnknown {
				if err != nil {
					t.Fatalf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}
			if got := apperr.GetKind(err); got != tt.wantKind {
				t.Errorf("ValidateDocument() kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestScanParsesSalaryFromExtractedText(t *testing.T) {
	extractor := &fakeExtractor{text: "Payslip March\nNet Pay: 52,000\n"}
	scanner := NewScanner(extractor, 0, testLogger())

	scan, err := scanner.Scan(context.Background(), "march.png", []byte("imagedata"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if !scan.SalaryFound {
		t.Fatal("SalaryFound = false, want true")
	}
	if scan.MonthlySalary != 52000 {
		t.Errorf("MonthlySalary = %v, want 52000", scan.MonthlySalary)
	}
}

func TestScanReportsMissingSalary(t *testing.T) {
	extractor := &fakeExtractor{text: "blank page"}
	scanner := NewScanner(extractor, 0, testLogger())

	scan, err := scanner.Scan(context.Background(), "blank.jpg", []byte("imagedata"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if scan.SalaryFound {
		t.Error("SalaryFound = true for text without figures")
	}
}

func TestScanPropagatesExtractorFailure(t *testing.T) {
	boom := errors.New("service down")
	scanner := NewScanner(&fakeExtractor{err: boom}, 0, testLogger())

	if _, err := scanner.Scan(context.Background(), "slip.jpg", []byte("imagedata")); !errors.Is(err, boom) {
		t.Fatalf("Scan() error = %v, want %v", err, boom)
	}
}

func TestScanWithoutExtractorConfigured(t *testing.T) {
	scanner := NewScanner(nil, 0, testLogger())

	_, err := scanner.Scan(context.Background(), "slip.jpg", []byte("imagedata"))
	if apperr.GetKind(err) != apperr.KindExternalCall {
		t.Fatalf("Scan() kind = %v, want external call failure", apperr.GetKind(err))
	}
}

func TestTikaClientExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tika" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "pdfbytes" {
			t.Errorf("body = %q, want pdfbytes", body)
		}
		w.Write([]byte("Net Pay: 41000"))
	}))
	defer srv.Close()

	client := NewTikaClient(srv.URL, testLogger())
	text, err := client.Extract(context.Background(), "slip.pdf", []byte("pdfbytes"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Net Pay: 41000" {
		t.Errorf("Extract() = %q", text)
	}
}

func TestTikaClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewTikaClient(srv.URL, testLogger())
	if _, err := client.Extract(context.Background(), "slip.pdf", []byte("x")); apperr.GetKind(err) != apperr.KindExternalCall {
		t.Fatalf("Extract() kind = %v, want external call failure", apperr.GetKind(err))
	}
}
