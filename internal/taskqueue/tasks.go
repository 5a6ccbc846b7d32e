package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"hookrelay/internal/db"
	"hookrelay/internal/dispatch"
	"hookrelay/internal/format"

	"github.com/hibiken/asynq"
)

// Global instances - initialized by the main application
var (
	dbConn       *db.DB
	sink         dispatch.Sink
	defaultToken *string
	pollClient   = &http.Client{Timeout: 15 * time.Second}
)

// SetGlobalInstances sets the database, notification sink and default token
// used by task handlers.
func SetGlobalInstances(database *db.DB, notifySink dispatch.Sink, token *string) {
	dbConn = database
	sink = notifySink
	defaultToken = token
}

// BotRunTaskPayload for scheduled bot tasks
type BotRunTaskPayload struct {
	BotID int64
}

// EnqueueBotRun enqueues a scheduled bot run
func EnqueueBotRun(botID int64) error {
	payload, _ := json.Marshal(BotRunTaskPayload{BotID: botID})
	task := asynq.NewTask("run_scheduled_bot", payload)
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	if err != nil {
		log.Printf("TASKQUEUE: Failed to enqueue run for bot %d: %v", botID, err)
		return err
	}
	log.Printf("TASKQUEUE: Enqueued task %s for bot %d", info.ID, botID)
	return nil
}

// runScheduledBotTask handles one scheduled bot run: optionally poll the
// bot's source URL, resolve template placeholders against the fetched
// document, and send the message.
func runScheduledBotTask(ctx context.Context, t *asynq.Task) error {
	var payload BotRunTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Printf("TASKQUEUE: Failed to unmarshal task payload: %v", err)
		return err
	}

	bot, err := dbConn.GetScheduledBot(ctx, payload.BotID)
	if err != nil {
		log.Printf("TASKQUEUE: Failed to fetch scheduled bot %d: %v", payload.BotID, err)
		return err
	}
	if !bot.Enabled {
		log.Printf("TASKQUEUE: Bot %d is disabled, skipping", bot.ID)
		return nil
	}

	token := bot.BotToken
	if token == "" && defaultToken != nil {
		token = *defaultToken
	}
	if token == "" {
		log.Printf("TASKQUEUE: Bot %d has no bot token configured, skipping", bot.ID)
		return nil
	}
	if bot.ChatID == "" {
		log.Printf("TASKQUEUE: Bot %d has no chat id configured, skipping", bot.ID)
		return nil
	}

	text := bot.Message
	if bot.PollURL != "" {
		polled, err := pollSource(ctx, bot.PollURL)
		if err != nil {
			log.Printf("TASKQUEUE: Bot %d: poll %s: %v", bot.ID, bot.PollURL, err)
			return err
		}
		text = format.Render(bot.Message, polled)
	}

	if _, err := sink.Send(ctx, token, bot.ChatID, text); err != nil {
		log.Printf("TASKQUEUE: Bot %d: send to chat %s: %v", bot.ID, bot.ChatID, err)
		return err
	}
	log.Printf("TASKQUEUE: Bot %d (%s) sent to chat %s", bot.ID, bot.Name, bot.ChatID)
	return nil
}

// pollSource fetches a JSON document for template resolution.
func pollSource(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := pollClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("poll source status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode polled document: %w", err)
	}
	return doc, nil
}
