package models

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type AddRuleRequest struct {
	Name            string   `json:"name"`
	Condition       string   `json:"condition"`
	ChatID          string   `json:"chatId"`
	ChatIDs         []string `json:"chatIds"`
	BotToken        string   `json:"botToken"`
	MessageTemplate string   `json:"messageTemplate"`
	Enabled         bool     `json:"enabled"`
}

// UpdateRuleRequest carries a partial merge: only non-nil fields overwrite.
type UpdateRuleRequest struct {
	Name            *string   `json:"name"`
	Condition       *string   `json:"condition"`
	ChatID          *string   `json:"chatId"`
	ChatIDs         *[]string `json:"chatIds"`
	BotToken        *string   `json:"botToken"`
	MessageTemplate *string   `json:"messageTemplate"`
	Enabled         *bool     `json:"enabled"`
}

type AddScheduledBotRequest struct {
	Name           string `json:"name"`
	CronExpression string `json:"cronExpression"`
	BotToken       string `json:"botToken"`
	ChatID         string `json:"chatId"`
	Message        string `json:"message"`
	PollURL        string `json:"pollUrl"`
	Enabled        bool   `json:"enabled"`
}

type UpdateScheduledBotRequest struct {
	Name           *string `json:"name"`
	CronExpression *string `json:"cronExpression"`
	BotToken       *string `json:"botToken"`
	ChatID         *string `json:"chatId"`
	Message        *string `json:"message"`
	PollURL        *string `json:"pollUrl"`
	Enabled        *bool   `json:"enabled"`
}

type AddAIBotRequest struct {
	Name         string `json:"name"`
	BotToken     string `json:"botToken"`
	Model        string `json:"model"`
	SystemPrompt string `json:"systemPrompt"`
	Enabled      bool   `json:"enabled"`
}

type UpdateAIBotRequest struct {
	Name         *string `json:"name"`
	BotToken     *string `json:"botToken"`
	Model        *string `json:"model"`
	SystemPrompt *string `json:"systemPrompt"`
	Enabled      *bool   `json:"enabled"`
}

type AIReplyRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}
