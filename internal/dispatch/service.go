package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"hookrelay/internal/models"
	"hookrelay/internal/weblog"
)

// RuleSource supplies the stored rules for a cycle.
type RuleSource interface {
	GetAllRules(ctx context.Context) ([]models.Rule, error)
}

// Service runs the full inbound-event pipeline: envelope unwrapping, rule
// dispatch and log recording. Both the webhook endpoint and the MQTT bridge
// feed events through here.
type Service struct {
	rules      RuleSource
	dispatcher *Dispatcher
	recorder   *weblog.Recorder
}

func NewService(rules RuleSource, dispatcher *Dispatcher, recorder *weblog.Recorder) *Service {
	return &Service{rules: rules, dispatcher: dispatcher, recorder: recorder}
}

// Process handles one inbound event body. Only a failure to read the rule
// list surfaces as an error; everything per-rule and per-chat is captured in
// the summary and the log instead.
func (s *Service) Process(ctx context.Context, body []byte) (Summary, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Summary{}, fmt.Errorf("decode event body: %w", err)
	}

	// Callers may wrap the payload in an envelope with event metadata.
	payload := any(raw)
	if inner, ok := raw["payload"]; ok && inner != nil {
		payload = inner
	}

	ruleList, err := s.rules.GetAllRules(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load rules: %w", err)
	}

	summary := s.dispatcher.Dispatch(ctx, raw, payload, ruleList)
	s.recorder.Record(ctx, json.RawMessage(body), summary.Matched, summary.Evaluated, summary.Results)
	return summary, nil
}
