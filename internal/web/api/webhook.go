package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"hookrelay/internal/dispatch"
	"hookrelay/internal/web/middleware"
	"hookrelay/internal/weblog"

	"github.com/gin-gonic/gin"
)

// verifyClient performs verification-callback GETs with a bounded timeout.
var verifyClient = &http.Client{Timeout: 10 * time.Second}

func RegisterWebhookRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, service *dispatch.Service, logStore weblog.Store) {
	// The webhook endpoint is called by third-party systems and carries no
	// bearer token; the log endpoints belong to the admin console.
	r.POST("/webhook", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(400, gin.H{"error": "Failed to read request body"})
			return
		}

		var envelope map[string]any
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.JSON(400, gin.H{"error": "Invalid JSON body"})
			return
		}

		// Verification handshake: confirm the callback and skip the pipeline.
		// A verify event without a callback URL is treated as an ordinary
		// payload instead.
		if event, _ := envelope["event"].(string); event == "webhook.verify" {
			if payload, ok := envelope["payload"].(map[string]any); ok {
				if callback, _ := payload["callback"].(string); callback != "" {
					resp, err := verifyClient.Get(callback)
					if err != nil {
						log.Printf("WEBHOOK: Verification callback %s: %v", callback, err)
					} else {
						resp.Body.Close()
					}
					c.JSON(200, gin.H{"verified": true})
					return
				}
			}
		}

		summary, err := service.Process(c, body)
		if err != nil {
			log.Printf("WEBHOOK: Dispatch cycle failed: %v", err)
			c.JSON(500, gin.H{"error": "Failed to process webhook"})
			return
		}

		// Per-rule and per-chat failures are inside the summary and the log;
		// the caller always gets a 200 with the aggregate counts.
		c.JSON(200, gin.H{
			"matched":          summary.Matched,
			"sent":             summary.Sent,
			"telegram_results": summary.Results,
		})
	})

	logs := r.Group("/webhook/logs")
	logs.Use(middleware.RequireAuth())
	{
		logs.GET("", func(c *gin.Context) {
			entries, err := logStore.List(c)
			if err != nil {
				log.Printf("WEBHOOK: Failed to list logs: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch logs"})
				return
			}
			if entries == nil {
				entries = []weblog.Entry{}
			}
			c.JSON(200, entries)
		})

		logs.DELETE("", func(c *gin.Context) {
			if err := logStore.Clear(c); err != nil {
				log.Printf("WEBHOOK: Failed to clear logs: %v", err)
				c.JSON(500, gin.H{"error": "Failed to clear logs"})
				return
			}
			c.JSON(200, gin.H{"status": "Logs cleared"})
		})
	}
}
