// Package proxy forwards prompts to the configured completion API with the
// server-held credential and relays the result.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"compass-backend/internal/llm"
	"compass-backend/internal/shared/metrics"
	"compass-backend/internal/shared/telemetry"
	"compass-backend/internal/shared/util"
)

// Client-facing messages.
const (
	MessageConfigIncomplete = "后台API配置不完整，请检查服务器的.env文件。"
	MessageUpstreamError    = "调用外部API时出错。"
	MessageInvalidStructure = "从API返回的响应结构无效。"
	MessageMalformedJSON    = "模型返回的内容不是有效的JSON。"
	MessageInvalidRequest   = "请求参数无效，prompt 不能为空。"
)

var (
	ErrConfigIncomplete = errors.New("proxy configuration incomplete")
	ErrMalformedJSON    = errors.New("completion is not valid JSON")
	ErrEmptyPrompt      = errors.New("prompt is required")
)

// MalformedJSONError carries the raw completion text that failed to parse
// in JSON mode.
type MalformedJSONError struct {
	Raw string
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedJSON, e.Err)
}

func (e *MalformedJSONError) Unwrap() []error {
	return []error{ErrMalformedJSON, e.Err}
}

// Settings are the three server-held values required before any outbound
// call.
type Settings struct {
	APIKey   string
	Endpoint string
	Model    string
}

// Complete reports whether every setting is present.
func (s Settings) Complete() bool {
	return len(s.Missing()) == 0
}

// Missing lists the environment keys that are unset.
func (s Settings) Missing() []string {
	var out []string
	if strings.TrimSpace(s.APIKey) == "" {
		out = append(out, "API_KEY")
	}
	if strings.TrimSpace(s.Endpoint) == "" {
		out = append(out, "API_ENDPOINT")
	}
	if strings.TrimSpace(s.Model) == "" {
		out = append(out, "API_MODEL")
	}
	return out
}

// Service is stateless; settings and completer are read-only after
// construction.
type Service struct {
	settings  Settings
	completer llm.Completer
	now       func() time.Time
}

// NewService builds a proxy service. completer may be nil when settings are
// incomplete; every Forward then fails with ErrConfigIncomplete.
func NewService(settings Settings, completer llm.Completer) *Service {
	return &Service{settings: settings, completer: completer, now: time.Now}
}

// Configured reports whether Forward can reach the upstream API.
func (s *Service) Configured() bool {
	return s != nil && s.settings.Complete() && s.completer != nil
}

// Forward sends prompt upstream once. The result is a JSON document: the
// completion text as a JSON string, or in JSON mode the completion itself
// after validation.
func (s *Service) Forward(ctx context.Context, prompt string, jsonMode bool) (json.RawMessage, error) {
	if !s.Configured() {
		missing := s.settings.Missing()
		telemetry.Error("proxy.config_incomplete", map[string]any{"missing": missing})
		return nil, ErrConfigIncomplete
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	start := s.now()
	content, err := s.completer.Complete(ctx, llm.Request{Prompt: prompt, JSONMode: jsonMode})
	elapsed := s.now().Sub(start)
	metrics.ObserveUpstream(jsonMode, elapsed)

	fields := map[string]any{
		"model":        s.settings.Model,
		"json_mode":    jsonMode,
		"prompt_chars": len([]rune(prompt)),
		"prompt_id":    util.Fingerprint(prompt),
		"duration_ms":  float64(elapsed.Microseconds()) / 1000.0,
	}
	if err != nil {
		fields["error"] = err
		var upErr *llm.UpstreamError
		if errors.As(err, &upErr) {
			fields["upstream_status"] = upErr.Status
			fields["upstream_details"] = upErr.Details
		}
		telemetry.Error("proxy.forward", fields)
		return nil, err
	}
	telemetry.Info("proxy.forward", fields)

	if !jsonMode {
		return json.Marshal(content)
	}
	return decodeJSONContent(content)
}

func decodeJSONContent(content string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(content)
	var probe any
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return nil, &MalformedJSONError{Raw: content, Err: err}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(trimmed)); err != nil {
		return nil, &MalformedJSONError{Raw: content, Err: err}
	}
	return buf.Bytes(), nil
}
