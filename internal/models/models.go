package models

import "encoding/json"

// Rule decides whether and how an inbound payload becomes a Telegram notification.
// ChatIDs overrides ChatID when non-empty. BotToken overrides the configured
// default token when non-empty.
type Rule struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Condition       string   `json:"condition"`
	ChatID          string   `json:"chatId"`
	ChatIDs         []string `json:"chatIds,omitempty"`
	BotToken        string   `json:"botToken,omitempty"`
	MessageTemplate string   `json:"messageTemplate,omitempty"`
	Enabled         bool     `json:"enabled"`
	Encoding        string   `json:"encoding"`
	OwnerID         int64    `json:"ownerId,omitempty"`
}

// DispatchResult records the outcome of one delivery attempt (or the reason a
// rule produced no attempt at all).
type DispatchResult struct {
	ChatID   string          `json:"chatId"`
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ScheduledBot sends a message on a cron schedule. When PollURL is set the
// worker fetches JSON from it first and resolves template placeholders in
// Message against the fetched document.
type ScheduledBot struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CronExpression string `json:"cronExpression"`
	BotToken       string `json:"botToken,omitempty"`
	ChatID         string `json:"chatId"`
	Message        string `json:"message"`
	PollURL        string `json:"pollUrl,omitempty"`
	Enabled        bool   `json:"enabled"`
	OwnerID        int64  `json:"ownerId,omitempty"`
}

// AIBot pairs a Telegram token with a system prompt for assistant-style replies.
type AIBot struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	BotToken     string `json:"botToken,omitempty"`
	Model        string `json:"model"`
	SystemPrompt string `json:"systemPrompt"`
	Enabled      bool   `json:"enabled"`
	OwnerID      int64  `json:"ownerId,omitempty"`
}

// User is an admin console account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
