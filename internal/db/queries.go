package db

import (
	"context"

	"hookrelay/internal/models"
)

const ruleColumns = "id, name, condition, chat_id, chat_ids, bot_token, message_template, enabled, encoding, owner_id"

// GetAllRules fetches every stored rule in insertion order. The dispatch
// cycle iterates this list directly.
func (d *DB) GetAllRules(ctx context.Context) ([]models.Rule, error) {
	rows, err := d.pool.Query(ctx, "SELECT "+ruleColumns+" FROM rules ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		var r models.Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.Condition, &r.ChatID, &r.ChatIDs, &r.BotToken, &r.MessageTemplate, &r.Enabled, &r.Encoding, &r.OwnerID); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetRulesByOwner fetches the rules belonging to one account.
func (d *DB) GetRulesByOwner(ctx context.Context, ownerID int64) ([]models.Rule, error) {
	rows, err := d.pool.Query(ctx, "SELECT "+ruleColumns+" FROM rules WHERE owner_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		var r models.Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.Condition, &r.ChatID, &r.ChatIDs, &r.BotToken, &r.MessageTemplate, &r.Enabled, &r.Encoding, &r.OwnerID); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// GetRuleByID fetches one rule owned by the given account.
func (d *DB) GetRuleByID(ctx context.Context, id, ownerID int64) (*models.Rule, error) {
	var r models.Rule
	err := d.pool.QueryRow(ctx, "SELECT "+ruleColumns+" FROM rules WHERE id = $1 AND owner_id = $2", id, ownerID).
		Scan(&r.ID, &r.Name, &r.Condition, &r.ChatID, &r.ChatIDs, &r.BotToken, &r.MessageTemplate, &r.Enabled, &r.Encoding, &r.OwnerID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertRule stores a new rule with its server-assigned id.
func (d *DB) InsertRule(ctx context.Context, r *models.Rule) error {
	_, err := d.pool.Exec(ctx,
		"INSERT INTO rules (id, name, condition, chat_id, chat_ids, bot_token, message_template, enabled, encoding, owner_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		r.ID, r.Name, r.Condition, r.ChatID, r.ChatIDs, r.BotToken, r.MessageTemplate, r.Enabled, r.Encoding, r.OwnerID)
	return err
}

// UpdateRule persists a fully merged rule (last write wins).
func (d *DB) UpdateRule(ctx context.Context, r *models.Rule) error {
	_, err := d.pool.Exec(ctx,
		"UPDATE rules SET name=$1, condition=$2, chat_id=$3, chat_ids=$4, bot_token=$5, message_template=$6, enabled=$7 WHERE id=$8 AND owner_id=$9",
		r.Name, r.Condition, r.ChatID, r.ChatIDs, r.BotToken, r.MessageTemplate, r.Enabled, r.ID, r.OwnerID)
	return err
}

// DeleteRule removes a rule by id within the owner's account.
func (d *DB) DeleteRule(ctx context.Context, id, ownerID int64) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM rules WHERE id = $1 AND owner_id = $2", id, ownerID)
	return err
}

const botColumns = "id, name, cron_expression, bot_token, chat_id, message, poll_url, enabled, owner_id"

// GetAllScheduledBots fetches every scheduled bot; the scheduler loads these
// at startup and on reload.
func (d *DB) GetAllScheduledBots(ctx context.Context) ([]models.ScheduledBot, error) {
	rows, err := d.pool.Query(ctx, "SELECT "+botColumns+" FROM scheduled_bots ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []models.ScheduledBot
	for rows.Next() {
		var b models.ScheduledBot
		if err := rows.Scan(&b.ID, &b.Name, &b.CronExpression, &b.BotToken, &b.ChatID, &b.Message, &b.PollURL, &b.Enabled, &b.OwnerID); err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	return bots, rows.Err()
}

// GetScheduledBotsByOwner fetches one account's scheduled bots.
func (d *DB) GetScheduledBotsByOwner(ctx context.Context, ownerID int64) ([]models.ScheduledBot, error) {
	rows, err := d.pool.Query(ctx, "SELECT "+botColumns+" FROM scheduled_bots WHERE owner_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []models.ScheduledBot
	for rows.Next() {
		var b models.ScheduledBot
		if err := rows.Scan(&b.ID, &b.Name, &b.CronExpression, &b.BotToken, &b.ChatID, &b.Message, &b.PollURL, &b.Enabled, &b.OwnerID); err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	return bots, rows.Err()
}

// GetScheduledBot fetches one scheduled bot regardless of owner; the task
// worker uses this.
func (d *DB) GetScheduledBot(ctx context.Context, id int64) (*models.ScheduledBot, error) {
	var b models.ScheduledBot
	err := d.pool.QueryRow(ctx, "SELECT "+botColumns+" FROM scheduled_bots WHERE id = $1", id).
		Scan(&b.ID, &b.Name, &b.CronExpression, &b.BotToken, &b.ChatID, &b.Message, &b.PollURL, &b.Enabled, &b.OwnerID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// InsertScheduledBot stores a new scheduled bot.
func (d *DB) InsertScheduledBot(ctx context.Context, b *models.ScheduledBot) error {
	_, err := d.pool.Exec(ctx,
		"INSERT INTO scheduled_bots (id, name, cron_expression, bot_token, chat_id, message, poll_url, enabled, owner_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		b.ID, b.Name, b.CronExpression, b.BotToken, b.ChatID, b.Message, b.PollURL, b.Enabled, b.OwnerID)
	return err
}

// UpdateScheduledBot persists a merged scheduled bot.
func (d *DB) UpdateScheduledBot(ctx context.Context, b *models.ScheduledBot) error {
	_, err := d.pool.Exec(ctx,
		"UPDATE scheduled_bots SET name=$1, cron_expression=$2, bot_token=$3, chat_id=$4, message=$5, poll_url=$6, enabled=$7 WHERE id=$8 AND owner_id=$9",
		b.Name, b.CronExpression, b.BotToken, b.ChatID, b.Message, b.PollURL, b.Enabled, b.ID, b.OwnerID)
	return err
}

// DeleteScheduledBot removes a scheduled bot within the owner's account.
func (d *DB) DeleteScheduledBot(ctx context.Context, id, ownerID int64) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM scheduled_bots WHERE id = $1 AND owner_id = $2", id, ownerID)
	return err
}

const aiBotColumns = "id, name, bot_token, model, system_prompt, enabled, owner_id"

// GetAIBotsByOwner fetches one account's AI bots.
func (d *DB) GetAIBotsByOwner(ctx context.Context, ownerID int64) ([]models.AIBot, error) {
	rows, err := d.pool.Query(ctx, "SELECT "+aiBotColumns+" FROM ai_bots WHERE owner_id = $1 ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []models.AIBot
	for rows.Next() {
		var b models.AIBot
		if err := rows.Scan(&b.ID, &b.Name, &b.BotToken, &b.Model, &b.SystemPrompt, &b.Enabled, &b.OwnerID); err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	return bots, rows.Err()
}

// GetAIBot fetches one AI bot owned by the given account.
func (d *DB) GetAIBot(ctx context.Context, id, ownerID int64) (*models.AIBot, error) {
	var b models.AIBot
	err := d.pool.QueryRow(ctx, "SELECT "+aiBotColumns+" FROM ai_bots WHERE id = $1 AND owner_id = $2", id, ownerID).
		Scan(&b.ID, &b.Name, &b.BotToken, &b.Model, &b.SystemPrompt, &b.Enabled, &b.OwnerID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// InsertAIBot stores a new AI bot.
func (d *DB) InsertAIBot(ctx context.Context, b *models.AIBot) error {
	_, err := d.pool.Exec(ctx,
		"INSERT INTO ai_bots (id, name, bot_token, model, system_prompt, enabled, owner_id) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		b.ID, b.Name, b.BotToken, b.Model, b.SystemPrompt, b.Enabled, b.OwnerID)
	return err
}

// UpdateAIBot persists a merged AI bot.
func (d *DB) UpdateAIBot(ctx context.Context, b *models.AIBot) error {
	_, err := d.pool.Exec(ctx,
		"UPDATE ai_bots SET name=$1, bot_token=$2, model=$3, system_prompt=$4, enabled=$5 WHERE id=$6 AND owner_id=$7",
		b.Name, b.BotToken, b.Model, b.SystemPrompt, b.Enabled, b.ID, b.OwnerID)
	return err
}

// DeleteAIBot removes an AI bot within the owner's account.
func (d *DB) DeleteAIBot(ctx context.Context, id, ownerID int64) error {
	_, err := d.pool.Exec(ctx, "DELETE FROM ai_bots WHERE id = $1 AND owner_id = $2", id, ownerID)
	return err
}
