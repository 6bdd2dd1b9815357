package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// User-facing failure messages.
const (
	DefaultFailureMessage  = "生成建议失败，请稍后再试。"
	OptimizeFailureMessage = "优化失败，请稍后再试。"
)

// ErrEmptyNeeds is returned by OptimizeNeeds for blank input.
var ErrEmptyNeeds = errors.New("请先输入您的需求。")

// Completer sends one prompt through the proxy. In JSON mode the reply is the
// model's JSON value, otherwise a JSON string.
type Completer interface {
	Complete(ctx context.Context, prompt string, jsonMode bool) (json.RawMessage, error)
}

// configError is implemented by proxy errors that can tell a missing server
// configuration apart from other failures.
type configError interface {
	error
	ConfigIncomplete() bool
}

// UserMessage converts err into the text shown to the user. The server's
// configuration message is passed through verbatim; everything else becomes
// fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var cerr configError
	if errors.As(err, &cerr) && cerr.ConfigIncomplete() {
		return cerr.Error()
	}
	if errors.Is(err, ErrEmptyNeeds) {
		return ErrEmptyNeeds.Error()
	}
	return fallback
}

// OptimizeNeeds rewrites a contact-form needs description through the proxy
// in free-text mode.
func OptimizeNeeds(ctx context.Context, c Completer, needs string) (string, error) {
	if strings.TrimSpace(needs) == "" {
		return "", ErrEmptyNeeds
	}
	if c == nil {
		return "", errors.New("no completer configured")
	}
	prompt, err := BuildNeedsPrompt(needs)
	if err != nil {
		return "", err
	}
	raw, err := c.Complete(ctx, prompt, false)
	if err != nil {
		return "", fmt.Errorf("optimize needs: %w", err)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("optimize needs: decode reply: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("optimize needs: empty reply")
	}
	return text, nil
}
