package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myce/chatpager/internal/common"
	"github.com/myce/chatpager/internal/history"
)

func (h *Handler) Ping(c *gin.Context) {
	common.Ok(c, gin.H{"pong": true})
}

// ListRoomMessages serves one page of a room's history, newest page first:
// GET /rooms/:room_id/messages?page=&size=
func (h *Handler) ListRoomMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "room_id required")
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	if h.Cache != nil {
		msgs, hit, err := h.Cache.GetPage(c.Request.Context(), roomID, page, size)
		if err != nil {
			log.Printf("[ListRoomMessages] cache get failed room=%s page=%d err=%v", roomID, page, err)
		} else if hit {
			common.Ok(c, gin.H{"content": msgs})
			return
		}
	}

	msgs, err := h.Repo.ListPage(c.Request.Context(), roomID, page, size)
	if err != nil {
		log.Printf("[ListRoomMessages] list failed room=%s page=%d err=%v", roomID, page, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list messages")
		return
	}

	if h.Cache != nil {
		if err := h.Cache.SetPage(c.Request.Context(), roomID, page, size, msgs); err != nil {
			log.Printf("[ListRoomMessages] cache set failed room=%s page=%d err=%v", roomID, page, err)
		}
	}

	common.Ok(c, gin.H{"content": msgs})
}

type postMessageReq struct {
	Sender string     `json:"sender" binding:"required"`
	Body   string     `json:"body" binding:"required"`
	SentAt *time.Time `json:"sent_at"`
}

// PostRoomMessage persists a message, busts the room's page cache and
// emits a live event.
func (h *Handler) PostRoomMessage(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "room_id required")
		return
	}

	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	id, err := common.NewULID()
	if err != nil {
		log.Printf("[PostRoomMessage] NewULID failed room=%s err=%v", roomID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	sentAt := time.Now().UTC()
	if req.SentAt != nil {
		sentAt = req.SentAt.UTC()
	}

	msg := &history.Message{
		ID:     id,
		RoomID: roomID,
		Sender: req.Sender,
		Body:   req.Body,
		SentAt: sentAt,
	}
	if err := h.Repo.Insert(c.Request.Context(), msg); err != nil {
		log.Printf("[PostRoomMessage] insert failed room=%s err=%v", roomID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	// cache bust and live event are best-effort; the message is persisted
	if h.Cache != nil {
		if err := h.Cache.BumpRoom(c.Request.Context(), roomID); err != nil {
			log.Printf("[PostRoomMessage] cache bump failed room=%s err=%v", roomID, err)
		}
	}
	if h.Feed != nil {
		if err := h.Feed.PublishMessage(c.Request.Context(), msg.Wire()); err != nil {
			log.Printf("[PostRoomMessage] publish failed room=%s id=%s err=%v", roomID, id, err)
		}
	}

	common.Ok(c, gin.H{"id": id, "sent_at": sentAt})
}

// MarkMessageRead flips the read flag and emits a read event.
func (h *Handler) MarkMessageRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "id required")
		return
	}

	if err := h.Repo.MarkRead(c.Request.Context(), id); err != nil {
		log.Printf("[MarkMessageRead] failed id=%s err=%v", id, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	if h.Feed != nil {
		if err := h.Feed.PublishRead(c.Request.Context(), id); err != nil {
			log.Printf("[MarkMessageRead] publish failed id=%s err=%v", id, err)
		}
	}

	common.Ok(c, gin.H{"id": id})
}
