// Package recognize turns rasterized handwriting into normalized text.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Failure classes. Callers distinguish "recognition broke" from "no match"
// with errors.Is; a failure never comes back as an empty string.
var (
	ErrRecognitionFailed = errors.New("recognition failed")
	ErrEmptyImage        = errors.New("empty image")
	ErrUnreadable        = errors.New("unreadable handwriting")
)

const defaultTimeout = 20 * time.Second

// Engine is an OCR capability: one image in, raw text out.
type Engine interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, image []byte, mimeType string) (string, error)

// Recognize implements Engine.
func (f EngineFunc) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	return f(ctx, image, mimeType)
}

// Gateway wraps an Engine with normalization and a uniform failure contract.
type Gateway struct {
	engine  Engine
	timeout time.Duration
}

// NewGateway returns a gateway over engine. A zero timeout uses the default.
func NewGateway(engine Engine, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{engine: engine, timeout: timeout}
}

// Recognize runs one recognition call and returns normalized text.
func (g *Gateway) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: %w", ErrRecognitionFailed, ErrEmptyImage)
	}
	if g.engine == nil {
		return "", fmt.Errorf("%w: no engine configured", ErrRecognitionFailed)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.engine.Recognize(ctx, image, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecognitionFailed, err)
	}
	text := Normalize(raw)
	if text == "" {
		return "", fmt.Errorf("%w: %w", ErrRecognitionFailed, ErrUnreadable)
	}
	return text, nil
}

// Normalize trims surrounding whitespace and lowercases.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
