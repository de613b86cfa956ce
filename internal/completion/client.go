// Package completion is the boundary to the LLM provider. A Client sends an
// ordered list of role-tagged messages and returns the raw completion text.
// Parsing is lenient: malformed JSON becomes an empty object so callers can
// treat it as a validation failure instead of a crash.
//
// No retries happen here; the caller owns retry policy.
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Role tags a message in a completion request.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged prompt part.
type Message struct {
	Role    Role
	Content string
}

// Request describes one completion call. The provider is asked for a JSON
// object response.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// Client performs a single completion call and returns the raw text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrNotConfigured is returned by a client that has no provider credentials.
var ErrNotConfigured = errors.New("completion client not configured")

// CompleteJSON calls c and parses the text as a JSON value. A response that
// is not valid JSON yields an empty object and a nil error.
func CompleteJSON(ctx context.Context, c Client, req Request) (map[string]any, error) {
	raw, err := c.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseJSON(raw), nil
}

// ParseJSON decodes raw into a JSON object. Code fences are tolerated;
// anything that is not an object decodes to an empty map.
func ParseJSON(raw string) map[string]any {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// Disabled is a Client that always fails with ErrNotConfigured.
type Disabled struct{}

// Complete implements Client.
func (Disabled) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
