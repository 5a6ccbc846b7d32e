// Package dispatch runs the per-payload rule cycle: evaluate every enabled
// rule, format a message for each match and fan it out to the rule's chats.
package dispatch

import (
	"context"
	"encoding/json"
	"log"

	"hookrelay/internal/format"
	"hookrelay/internal/models"
	"hookrelay/internal/rules"
)

// Sink delivers one message to one chat. Implemented by the Telegram client;
// tests substitute fakes.
type Sink interface {
	Send(ctx context.Context, token, chatID, text string) (json.RawMessage, error)
}

// Summary aggregates one dispatch cycle.
type Summary struct {
	Matched   int                     `json:"matched"`
	Evaluated int                     `json:"-"`
	Sent      int                     `json:"sent"`
	Results   []models.DispatchResult `json:"telegram_results"`
}

// Dispatcher evaluates rules against payloads and drives the sink. The
// default token is explicitly optional: nil means no process-wide token is
// configured and rules must carry their own.
type Dispatcher struct {
	sink         Sink
	defaultToken *string
}

func NewDispatcher(sink Sink, defaultToken *string) *Dispatcher {
	return &Dispatcher{sink: sink, defaultToken: defaultToken}
}

// Dispatch runs one cycle over ruleList in stored order. Disabled rules are
// skipped before evaluation. Failures are isolated per rule and per chat:
// a rule with no usable token or chat produces a single failure result, a
// chat that the sink rejects produces a failure result for that chat only,
// and nothing inside one rule's handling can abort the rest of the cycle.
func (d *Dispatcher) Dispatch(ctx context.Context, raw map[string]any, payload any, ruleList []models.Rule) Summary {
	var summary Summary
	for _, rule := range ruleList {
		if !rule.Enabled {
			continue
		}
		summary.Evaluated++
		d.dispatchRule(ctx, raw, payload, rule, &summary)
	}
	for _, r := range summary.Results {
		if r.Success {
			summary.Sent++
		}
	}
	return summary
}

func (d *Dispatcher) dispatchRule(ctx context.Context, raw map[string]any, payload any, rule models.Rule, summary *Summary) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("DISPATCH: rule %d (%s): recovered: %v", rule.ID, rule.Name, r)
		}
	}()

	if !rules.Matches(rule, payload) {
		return
	}
	summary.Matched++

	token := rule.BotToken
	if token == "" && d.defaultToken != nil {
		token = *d.defaultToken
	}
	if token == "" {
		log.Printf("DISPATCH: rule %d (%s): no bot token configured", rule.ID, rule.Name)
		summary.Results = append(summary.Results, models.DispatchResult{
			Success: false,
			Error:   "no bot token configured for rule",
		})
		return
	}

	chats := chatTargets(rule)
	if len(chats) == 0 {
		log.Printf("DISPATCH: rule %d (%s): no chat id configured", rule.ID, rule.Name)
		summary.Results = append(summary.Results, models.DispatchResult{
			Success: false,
			Error:   "no chat id configured for rule",
		})
		return
	}

	var text string
	if rule.MessageTemplate != "" {
		text = format.Render(rule.MessageTemplate, payload)
	} else {
		text = format.Format(raw, payload)
	}

	for _, chat := range chats {
		resp, err := d.sink.Send(ctx, token, chat, text)
		if err != nil {
			log.Printf("DISPATCH: rule %d (%s): send to chat %s: %v", rule.ID, rule.Name, chat, err)
			summary.Results = append(summary.Results, models.DispatchResult{
				ChatID:  chat,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}
		summary.Results = append(summary.Results, models.DispatchResult{
			ChatID:   chat,
			Success:  true,
			Response: resp,
		})
	}
}

// chatTargets resolves the destination set, preferring the chatIds array over
// the single chatId. Blank entries are dropped.
func chatTargets(rule models.Rule) []string {
	var chats []string
	for _, c := range rule.ChatIDs {
		if c != "" {
			chats = append(chats, c)
		}
	}
	if len(chats) == 0 && rule.ChatID != "" {
		chats = []string{rule.ChatID}
	}
	return chats
}
