package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxOCRResponse = 64 << 10

// HTTP posts the raw image to an OCR endpoint that answers {"text": "..."}.
type HTTP struct {
	URL    string
	Client *http.Client
}

// NewHTTP returns an HTTP engine for url.
func NewHTTP(url string) *HTTP {
	return &HTTP{URL: url, Client: &http.Client{Timeout: 30 * time.Second}}
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Recognize implements Engine.
func (h *HTTP) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxOCRResponse))
	if err != nil {
		return "", fmt.Errorf("failed to read ocr response: %w", err)
	}
	var out ocrResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode ocr response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("ocr status %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("ocr status %d", resp.StatusCode)
	}
	return out.Text, nil
}
