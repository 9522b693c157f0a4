package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gavelhq/gavel/pkg/formatting"
)

// ErrEmptyResponse indicates the generator returned no content.
var ErrEmptyResponse = errors.New("empty generator response")

// ErrInvalidResponse indicates the generator output could not be parsed as
// the expected JSON shape.
var ErrInvalidResponse = errors.New("invalid generator response")

const previewLimit = 800

// GenerateStructured calls the generator and parses its output as JSON into T.
// Parsing tries the raw content, then a markdown code fence, then the
// outermost {...} block in the content. Failures return ErrInvalidResponse
// wrapped with a bounded preview of the raw output for diagnostics.
func GenerateStructured[T any](ctx context.Context, g Generator, prompt string) (T, error) {
	var zero T

	content, err := g.Generate(ctx, prompt)
	if err != nil {
		return zero, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return zero, ErrEmptyResponse
	}

	return ParseStructured[T](content)
}

// ParseStructured parses raw generator output as JSON into T, applying the
// same fence-stripping and trailing-object fallbacks as GenerateStructured.
func ParseStructured[T any](content string) (T, error) {
	if parsed, err := formatting.Parse[T](content); err == nil {
		return parsed, nil
	}

	var result T
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &result); err == nil {
			return result, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("%w: %s", ErrInvalidResponse, Preview(content))
}

// Preview trims content to a bounded length for inclusion in error messages.
func Preview(content string) string {
	if len(content) <= previewLimit {
		return content
	}
	return content[:previewLimit]
}
