package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ebarney/aibarney/internal/guard"
	"github.com/ebarney/aibarney/internal/model/chat"
	chatService "github.com/ebarney/aibarney/internal/service/chat"
	"github.com/ebarney/aibarney/pkg/logger"
	"github.com/ebarney/aibarney/pkg/utils"
)

// ReplyStreamer produces the assistant reply for a conversation.
type ReplyStreamer interface {
	StreamReply(ctx context.Context, history []chat.HistoryEntry) (*schema.StreamReader[*schema.Message], error)
}

// Request is the body the widget posts.
type Request struct {
	Message   []chat.HistoryEntry `json:"message"`
	SessionID string              `json:"session_id"`
}

// Handler serves the chat endpoint the widget streams from.
type Handler struct {
	replies ReplyStreamer
	chatSvc *chatService.Service
	guard   guard.Guard
}

// New creates the handler. replies may be nil, in which case /chat answers 503.
func New(replies ReplyStreamer, chatSvc *chatService.Service, g guard.Guard) *Handler {
	return &Handler{
		replies: replies,
		chatSvc: chatSvc,
		guard:   g,
	}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/api/conversations/{sessionID}", h.handleTranscript)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.replies == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "AI service unavailable")
		return
	}

	if len(req.Message) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "message history is required")
		return
	}
	last := req.Message[len(req.Message)-1]
	if last.Role != chat.RoleUser.WireRole() {
		utils.RespondError(w, http.StatusBadRequest, "last message must come from the user")
		return
	}

	text, err := h.guard.Validate(last.Content)
	if err != nil {
		var verr *guard.ValidationError
		if errors.As(err, &verr) && verr.Reason == guard.ReasonTooLong {
			utils.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Message too long (max %d characters)", verr.Limit))
			return
		}
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	h.logMessage(r.Context(), sessionID, chat.RoleUser, text)

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream, err := h.replies.StreamReply(r.Context(), req.Message)
	if err != nil {
		logger.Errorf("[chat] failed to start reply for session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate a reply")
		return
	}
	defer stream.Close()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	reply, err := h.forward(w, flusher, stream)
	if err != nil {
		logger.Warnf("[chat] reply for session=%s ended early: %v", sessionID, err)
		return
	}
	if err := utils.SendSSEDone(w, flusher); err != nil {
		logger.Warnf("[chat] failed to terminate stream for session=%s: %v", sessionID, err)
		return
	}

	h.logMessage(r.Context(), sessionID, chat.RoleAssistant, reply)
	logger.Infof("[chat] completed reply for session=%s, length=%d", sessionID, len(reply))
}

// forward relays every non-empty delta as one data record and returns the
// accumulated reply.
func (h *Handler) forward(w http.ResponseWriter, flusher http.Flusher, stream *schema.StreamReader[*schema.Message]) (string, error) {
	var reply strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return reply.String(), nil
		}
		if err != nil {
			return reply.String(), fmt.Errorf("receive model chunk: %w", err)
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		reply.WriteString(chunk.Content)
		if err := utils.SendSSEChunk(w, flusher, utils.ContentChunk{Content: chunk.Content}); err != nil {
			return reply.String(), err
		}
	}
}

func (h *Handler) logMessage(ctx context.Context, sessionID string, source chat.Role, text string) {
	if h.chatSvc == nil {
		return
	}
	if _, err := h.chatSvc.LogMessage(ctx, sessionID, source, text); err != nil {
		logger.Warnf("[chat] failed to log %s message: %v", source, err)
	}
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if h.chatSvc == nil {
		utils.RespondError(w, http.StatusNotFound, chatService.ErrSessionNotFound.Error())
		return
	}

	entries, err := h.chatSvc.Transcript(r.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"entries":   entries,
	})
}
