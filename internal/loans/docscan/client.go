package docscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"credsaathi_backend/platform/apperr"
	"credsaathi_backend/platform/logger"
)

// TikaClient extracts plain text through an Apache Tika compatible
// service. Tika handles both PDF text layers and image OCR, which covers
// every slip format the scanner accepts.
type TikaClient struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

func NewTikaClient(baseURL string, log *logger.Logger) *TikaClient {
	return &TikaClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// Extract sends the document body to PUT /tika and returns the plain text
// response.
func (c *TikaClient) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", apperr.ExternalCall("create extraction request", err)
	}
	req.Header.Set("Accept", "text/plain")
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("docscan extraction request failed", "error", err, "filename", filename)
		return "", apperr.ExternalCall("document extraction request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Continue to read the body
	case http.StatusUnprocessableEntity:
		return "", apperr.Unparsable("extraction service could not read the document")
	default:
		c.log.Error("docscan extraction upstream error", "status", resp.StatusCode, "filename", filename)
		return "", apperr.ExternalCall(fmt.Sprintf("extraction service returned status %d", resp.StatusCode), nil)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.ExternalCall("read extraction response", err)
	}
	return string(text), nil
}
