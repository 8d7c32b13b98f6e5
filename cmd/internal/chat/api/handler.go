// Package chatapi exposes the chat store over JSON HTTP endpoints.
package chatapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"messenger/cmd/internal/chat"
)

const defaultMaxBodyBytes = 64 << 10

// Handler wires the messaging endpoints to a chat.Store.
type Handler struct {
	log          *slog.Logger
	store        chat.Store
	maxBodyBytes int64
}

// NewHandler constructs the API handler.
func NewHandler(log *slog.Logger, store chat.Store) (*Handler, error) {
	if store == nil {
		return nil, errors.New("chatapi: nil store")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:          log,
		store:        store,
		maxBodyBytes: defaultMaxBodyBytes,
	}, nil
}

// Register wires the chat routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /api/messages", h.handleSendMessage)
	mux.HandleFunc("POST /api/conversations", h.handleCreateConversation)
	mux.HandleFunc("GET /api/conversations/{id}", h.handleGetConversation)
	mux.HandleFunc("GET /api/conversations/{id}/messages", h.handleListMessages)
	mux.HandleFunc("GET /api/users/{id}/conversations", h.handleListUserConversations)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "empty_content", "message content is required")
		return
	}

	// A send without a conversation id resolves the conversation first, then
	// persists the message into it.
	conversationID := req.ConversationID
	if conversationID == 0 {
		conv, err := h.store.CreateOrGetConversation(r.Context(), req.SenderID, req.ReceiverID)
		if err != nil {
			h.fail(w, "resolve conversation", err)
			return
		}
		conversationID = conv.ID
	}

	msg, err := h.store.CreateMessage(r.Context(), chat.CreateMessageInput{
		ConversationID: conversationID,
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		Content:        req.Content,
	})
	if err != nil {
		h.fail(w, "create message", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *Handler) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	conv, err := h.store.CreateOrGetConversation(r.Context(), req.SenderID, req.ReceiverID)
	if err != nil {
		h.fail(w, "create conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, toConversationResponse(conv))
}

func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	conv, found, err := h.store.GetConversation(r.Context(), id)
	if err != nil {
		h.fail(w, "get conversation", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, toConversationResponse(conv))
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	var (
		msgs  []chat.Message
		total int
		err   error
	)

	// ?before=<RFC3339> switches to the "load older messages" path.
	if raw := r.URL.Query().Get("before"); raw != "" {
		before, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid_before", "before must be RFC3339")
			return
		}
		msgs, total, err = h.store.GetMessagesBeforeTimestamp(r.Context(), id, before, page, limit)
	} else {
		msgs, total, err = h.store.GetConversationMessages(r.Context(), id, page, limit)
	}
	if err != nil {
		h.fail(w, "list messages", err)
		return
	}

	out := messagePage{Total: total, Page: page, Limit: limit, Messages: make([]messageResponse, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, toMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListUserConversations(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)

	convs, total, err := h.store.GetUserConversations(r.Context(), id, page, limit)
	if err != nil {
		h.fail(w, "list conversations", err)
		return
	}

	out := conversationPage{Total: total, Page: page, Limit: limit, Conversations: make([]conversationResponse, 0, len(convs))}
	for _, c := range convs {
		out.Conversations = append(out.Conversations, toConversationResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.log.Error("chatapi."+op, "err", err)
	writeError(w, http.StatusInternalServerError, "store_error", "storage request failed")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be an integer")
		return 0, false
	}
	return id, true
}
