package api

import (
	"log"
	"strconv"
	"time"

	"hookrelay/internal/db"
	"hookrelay/internal/models"
	"hookrelay/internal/web/middleware"
	webModels "hookrelay/internal/web/models"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// SchedulerInterface defines the methods needed from the scheduler
type SchedulerInterface interface {
	AddOrUpdateBot(botID int64, cronExpression string, enabled bool) error
	RemoveBot(botID int64)
}

func RegisterScheduledBotRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, sched SchedulerInterface) {
	group := r.Group("/bots")
	group.Use(middleware.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			bots, err := dbConn.GetScheduledBotsByOwner(c, userID)
			if err != nil {
				log.Printf("API: Failed to fetch scheduled bots: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch bots"})
				return
			}
			if bots == nil {
				bots = []models.ScheduledBot{}
			}
			c.JSON(200, bots)
		})

		group.POST("", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			var req webModels.AddScheduledBotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if _, err := cron.ParseStandard(req.CronExpression); err != nil {
				c.JSON(400, gin.H{"error": "Invalid cron expression"})
				return
			}

			bot := models.ScheduledBot{
				ID:             time.Now().UnixMilli(),
				Name:           req.Name,
				CronExpression: req.CronExpression,
				BotToken:       req.BotToken,
				ChatID:         req.ChatID,
				Message:        req.Message,
				PollURL:        req.PollURL,
				Enabled:        req.Enabled,
				OwnerID:        userID,
			}
			if err := dbConn.InsertScheduledBot(c, &bot); err != nil {
				log.Printf("API: Failed to create scheduled bot: %v", err)
				c.JSON(500, gin.H{"error": "Failed to create bot"})
				return
			}

			if err := sched.AddOrUpdateBot(bot.ID, bot.CronExpression, bot.Enabled); err != nil {
				// The bot exists; scheduling picks it up on the next reload.
				log.Printf("API: Failed to schedule bot %d: %v", bot.ID, err)
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
			var req webModels.UpdateScheduledBotRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			existing, err := dbConn.GetScheduledBot(c, botID)
			if err != nil || existing.OwnerID != userID {
				c.JSON(404, gin.H{"error": "Bot not found"})
				return
			}

			if req.Name != nil {
				existing.Name = *req.Name
			}
			if req.CronExpression != nil {
				if _, err := cron.ParseStandard(*req.CronExpression); err != nil {
					c.JSON(400, gin.H{"error": "Invalid cron expression"})
					return
				}
				existing.CronExpression = *req.CronExpression
			}
			if req.BotToken != nil {
				existing.BotToken = *req.BotToken
			}
			if req.ChatID != nil {
				existing.ChatID = *req.ChatID
			}
			if req.Message != nil {
				existing.Message = *req.Message
			}
			if req.PollURL != nil {
				existing.PollURL = *req.PollURL
			}
			if req.Enabled != nil {
				existing.Enabled = *req.Enabled
			}

			if err := dbConn.UpdateScheduledBot(c, existing); err != nil {
				log.Printf("API: Failed to update scheduled bot: %v", err)
				c.JSON(500, gin.H{"error": "Failed to update bot"})
				return
			}

			if err := sched.AddOrUpdateBot(existing.ID, existing.CronExpression, existing.Enabled); err != nil {
				log.Printf("API: Failed to reschedule bot %d: %v", existing.ID, err)
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

			sched.RemoveBot(botID)
			if err := dbConn.DeleteScheduledBot(c, botID, userID); err != nil {
				log.Printf("API: Failed to delete scheduled bot: %v", err)
				c.JSON(500, gin.H{"error": "Failed to delete bot"})
				return
			}
			c.JSON(200, gin.H{"status": "Bot deleted successfully"})
		})
	}
}
