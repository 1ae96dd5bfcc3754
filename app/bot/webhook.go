package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vidqueue/app/database"
	"vidqueue/app/videos"
)

const welcomeText = "Send me a YouTube, Rutube or VK video link and I'll add it to your queue. Open the player from the menu button to watch."

// Handler processes incoming Telegram webhook updates. Any text that isn't
// a command goes through intake; the reply is always friendly and the
// handler always answers 200 so Telegram doesn't re-deliver the update.
type Handler struct {
	client   *Client
	service  *videos.Service
	userRepo database.UserRepository
}

func NewHandler(client *Client, service *videos.Service, userRepo database.UserRepository) *Handler {
	return &Handler{
		client:   client,
		service:  service,
		userRepo: userRepo,
	}
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	var update Update
	if err := c.ShouldBindJSON(&update); err != nil {
		slog.Warn("Failed to decode webhook update", "error", err)
		c.Status(http.StatusOK)
		return
	}

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		c.Status(http.StatusOK)
		return
	}

	msg := update.Message
	if err := h.userRepo.UpsertUser(database.User{
		ID:        msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}); err != nil {
		slog.Error("Failed to upsert user", "user_id", msg.From.ID, "error", err)
		c.Status(http.StatusOK)
		return
	}

	h.reply(c, msg.Chat.ID, h.handleText(c, msg))
	c.Status(http.StatusOK)
}

func (h *Handler) handleText(c *gin.Context, msg *Message) string {
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/start") || strings.HasPrefix(text, "/help") {
		return welcomeText
	}

	video, err := h.service.Intake(c.Request.Context(), msg.From.ID, text)
	switch {
	case errors.Is(err, videos.ErrNotVideoLink):
		return "That doesn't look like a video link I recognize. I can queue YouTube, Rutube and VK videos."
	case errors.Is(err, videos.ErrAlreadyQueued):
		return fmt.Sprintf("\"%s\" is already in your queue.", video.Title)
	case err != nil:
		slog.Error("Intake failed", "user_id", msg.From.ID, "error", err)
		return "Something went wrong while adding that video. Please try again."
	}

	return fmt.Sprintf("Added \"%s\" to your queue.", video.Title)
}

func (h *Handler) reply(c *gin.Context, chatID int64, text string) {
	if err := h.client.SendMessage(c.Request.Context(), chatID, text); err != nil {
		slog.Warn("Failed to send reply", "chat_id", chatID, "error", err)
	}
}
