package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"petcare/internal/httpclient"
)

type chatRequest struct {
	Message string          `json:"message" binding:"required"`
	History json.RawMessage `json:"history"`
}

type chatUpstreamResponse struct {
	Reply string `json:"reply"`
}

// Chat proxies the message and conversation history to the inference
// endpoint. History passes through untouched; its shape belongs to the
// chatbot, not to us.
func Chat(client *httpclient.Client, chatbotURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /chat"
		defer handlePanic(c, route)

		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var upstream chatUpstreamResponse
		if err := client.PostJSON(ctx, chatbotURL, req, &upstream); err != nil {
			log.Println("[CHAT] [ERROR] upstream call failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Chatbot brain is not responding.")
			return
		}

		c.JSON(http.StatusOK, gin.H{"reply": upstream.Reply})
	}
}
