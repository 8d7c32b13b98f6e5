package chatapi

import (
	"net/http"
	"strconv"
	"time"

	"messenger/cmd/internal/chat"
)

type sendMessageRequest struct {
	ConversationID int64  `json:"conversation_id,omitempty"`
	SenderID       int64  `json:"sender_id"`
	ReceiverID     int64  `json:"receiver_id"`
	Content        string `json:"content"`
}

type createConversationRequest struct {
	SenderID   int64 `json:"sender_id"`
	ReceiverID int64 `json:"receiver_id"`
}

type messageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	ReceiverID     int64     `json:"receiver_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type conversationResponse struct {
	ID                 int64     `json:"id"`
	User1ID            int64     `json:"user1_id"`
	User2ID            int64     `json:"user2_id"`
	LastMessageAt      time.Time `json:"last_message_at"`
	LastMessageContent *string   `json:"last_message_content"`
}

type messagePage struct {
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Messages []messageResponse `json:"messages"`
}

type conversationPage struct {
	Total         int                    `json:"total"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	Conversations []conversationResponse `json:"conversations"`
}

func toMessageResponse(m chat.Message) messageResponse {
	return messageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		CreatedAt:      m.Timestamp,
	}
}

func toConversationResponse(c chat.ConversationSummary) conversationResponse {
	out := conversationResponse{
		ID:            c.ID,
		User1ID:       c.SenderID,
		User2ID:       c.ReceiverID,
		LastMessageAt: c.LastTimestamp,
	}
	if c.LastMessage != "" {
		out.LastMessageContent = &c.LastMessage
	}
	return out
}

// pageParams reads page/limit query parameters with the 1/20 defaults.
// Values are trusted as-is beyond parsing; the store layer does not validate
// them either.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return page, limit
}
