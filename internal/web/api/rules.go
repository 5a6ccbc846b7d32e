package api

import (
	"context"
	"log"
	"strconv"
	"time"

	"hookrelay/internal/db"
	"hookrelay/internal/models"
	"hookrelay/internal/rules"
	"hookrelay/internal/web/middleware"
	webModels "hookrelay/internal/web/models"

	"github.com/gin-gonic/gin"
)

// TokenValidator checks a bot token against the Telegram API before a rule
// referencing it is accepted.
type TokenValidator interface {
	GetMe(ctx context.Context, token string) error
}

func RegisterRuleRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, validator TokenValidator, defaultToken *string) {
	group := r.Group("/rules")
	group.Use(middleware.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			list, err := dbConn.GetRulesByOwner(c, userID)
			if err != nil {
				log.Printf("API: Failed to fetch rules: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch rules"})
				return
			}
			if list == nil {
				list = []models.Rule{}
			}
			c.JSON(200, list)
		})

		group.POST("", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			var req webModels.AddRuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			if _, err := rules.Compile(req.Condition); err != nil {
				c.JSON(400, gin.H{"error": "Invalid condition: " + err.Error()})
				return
			}

			// The token must work before the rule is accepted.
			token := req.BotToken
			if token == "" && defaultToken != nil {
				token = *defaultToken
			}
			if token == "" {
				c.JSON(400, gin.H{"error": "No bot token provided and no default configured"})
				return
			}
			if err := validator.GetMe(c, token); err != nil {
				log.Printf("API: Bot token validation failed: %v", err)
				c.JSON(400, gin.H{"error": "Bot token rejected by Telegram"})
				return
			}

			rule := models.Rule{
				ID:              time.Now().UnixMilli(),
				Name:            req.Name,
				Condition:       req.Condition,
				ChatID:          req.ChatID,
				ChatIDs:         req.ChatIDs,
				BotToken:        req.BotToken,
				MessageTemplate: req.MessageTemplate,
				Enabled:         req.Enabled,
				Encoding:        "utf8",
				OwnerID:         userID,
			}
			if err := dbConn.InsertRule(c, &rule); err != nil {
				log.Printf("API: Failed to create rule: %v", err)
				c.JSON(500, gin.H{"error": "Failed to create rule"})
				return
			}
			c.JSON(201, rule)
		})

		group.PATCH("/:id", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			ruleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid rule id"})
				return
			}
			var req webModels.UpdateRuleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}

			existing, err := dbConn.GetRuleByID(c, ruleID, userID)
			if err != nil {
				c.JSON(404, gin.H{"error": "Rule not found"})
				return
			}

			// Partial merge: only supplied fields overwrite (last write wins).
			if req.Name != nil {
				existing.Name = *req.Name
			}
			if req.Condition != nil {
				if _, err := rules.Compile(*req.Condition); err != nil {
					c.JSON(400, gin.H{"error": "Invalid condition: " + err.Error()})
					return
				}
				existing.Condition = *req.Condition
			}
			if req.ChatID != nil {
				existing.ChatID = *req.ChatID
			}
			if req.ChatIDs != nil {
				existing.ChatIDs = *req.ChatIDs
			}
			if req.BotToken != nil {
				if *req.BotToken != "" {
					if err := validator.GetMe(c, *req.BotToken); err != nil {
						log.Printf("API: Bot token validation failed: %v", err)
						c.JSON(400, gin.H{"error": "Bot token rejected by Telegram"})
						return
					}
				}
				existing.BotToken = *req.BotToken
			}
			if req.MessageTemplate != nil {
				existing.MessageTemplate = *req.MessageTemplate
			}
			if req.Enabled != nil {
				existing.Enabled = *req.Enabled
			}

			if err := dbConn.UpdateRule(c, existing); err != nil {
				log.Printf("API: Failed to update rule: %v", err)
				c.JSON(500, gin.H{"error": "Failed to update rule"})
				return
			}
			c.JSON(200, existing)
		})

		group.DELETE("/:id", func(c *gin.Context) {
			userID := c.GetInt64("user_id")
			ruleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid rule id"})
				return
			}
			if err := dbConn.DeleteRule(c, ruleID, userID); err != nil {
				log.Printf("API: Failed to delete rule: %v", err)
				c.JSON(500, gin.H{"error": "Failed to delete rule"})
				return
			}
			c.JSON(200, gin.H{"status": "Rule deleted successfully"})
		})
	}
}
