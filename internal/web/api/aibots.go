package api

import (
	"log"
	"strconv"
	"time"

	"hookrelay/internal/aibot"
	"hookrelay/internal/db"
	"hookrelay/internal/dispatch"
	"hookrelay/internal/models"
	"hookrelay/internal/web/middleware"
	webModels "hookrelay/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterAIBotRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, ai *aibot.Client, sink dispatch.Sink, defaultToken *string) {
	group := r.Group("/aibots")
	group.Use(middleware.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			bots, err := dbConn.GetAIBotsByOwner(c, userID)
			if err != nil {
				log.Printf("API: Failed to fetch AI bots: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch AI bots"})
				return
			}
			if bots == nil {
				bots = []models.AIBot{}
			}
			c.JSON(200, bots)
		})

		group.POST("", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			var req webModels.AddAIBotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			bot := models.AIBot{
				ID:           time.Now().UnixMilli(),
				Name:         req.Name,
				BotToken:     req.BotToken,
				Model:        req.Model,
				SystemPrompt: req.SystemPrompt,
				Enabled:      req.Enabled,
				OwnerID:      userID,
			}
			if bot.Model == "" {
				bot.Model = aibot.DefaultModel
			}
			if err := dbConn.InsertAIBot(c, &bot); err != nil {
				log.Printf("API: Failed to create AI bot: %v", err)
				c.JSON(500, gin.H{"error": "Failed to create AI bot"})
				return
			}
			c.JSON(201, bot)
		})

		group.PATCH("/:id", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			botID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid bot id"})
				return
			}
			var req webModels.UpdateAIBotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			existing, err := dbConn.GetAIBot(c, botID, userID)
			if err != nil {
				c.JSON(404, gin.H{"error": "AI bot not found"})
				return
			}

			if req.Name != nil {
				existing.Name = *req.Name
			}
			if req.BotToken != nil {
				existing.BotToken = *req.BotToken
			}
			if req.Model != nil {
				existing.Model = *req.Model
			}
			if req.SystemPrompt != nil {
				existing.SystemPrompt = *req.SystemPrompt
			}
			if req.Enabled != nil {
				existing.Enabled = *req.Enabled
			}

			if err := dbConn.UpdateAIBot(c, existing); err != nil {
				log.Printf("API: Failed to update AI bot: %v", err)
				c.JSON(500, gin.H{"error": "Failed to update AI bot"})
				return
			}
			c.JSON(200, existing)
		})

		group.DELETE("/:id", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			botID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid bot id"})
				return
			}
			if err := dbConn.DeleteAIBot(c, botID, userID); err != nil {
				log.Printf("API: Failed to delete AI bot: %v", err)
				c.JSON(500, gin.H{"error": "Failed to delete AI bot"})
				return
			}
			c.JSON(200, gin.H{"status": "AI bot deleted successfully"})
		})

		// Generate a reply through the bot's system prompt; when a chat id is
		// supplied the reply is also relayed to Telegram.
		group.POST("/:id/reply", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			botID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid bot id"})
				return
			}
			var req webModels.AIReplyRequest
			if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			bot, err := dbConn.GetAIBot(c, botID, userID)
			if err != nil {
				c.JSON(404, gin.H{"error": "AI bot not found"})
				return
			}
			if !bot.Enabled {
				c.JSON(400, gin.H{"error": "AI bot is disabled"})
				return
			}

			reply, err := ai.Reply(c, bot.Model, bot.SystemPrompt, req.Message)
			if err != nil {
				log.Printf("API: AI bot %d reply: %v", bot.ID, err)
				c.JSON(502, gin.H{"error": "AI reply failed"})
				return
			}

			if req.ChatID != "" {
				token := bot.BotToken
				if token == "" && defaultToken != nil {
					token = *defaultToken
				}
				if token == "" {
					c.JSON(200, gin.H{"reply": reply, "delivered": false, "error": "no bot token configured"})
					return
				}
				if _, err := sink.Send(c, token, req.ChatID, reply); err != nil {
					log.Printf("API: AI bot %d send to chat %s: %v", bot.ID, req.ChatID, err)
					c.JSON(200, gin.H{"reply": reply, "delivered": false, "error": err.Error()})
					return
				}
				c.JSON(200, gin.H{"reply": reply, "delivered": true})
				return
			}
			c.JSON(200, gin.H{"reply": reply})
		})
	}
}
