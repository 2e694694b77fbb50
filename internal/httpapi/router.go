package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/myce/chatpager/internal/common"
	"github.com/myce/chatpager/internal/config"
	"github.com/myce/chatpager/internal/httpapi/handlers"
	"github.com/myce/chatpager/internal/httpapi/middleware"
	"github.com/myce/chatpager/internal/livefeed"
	"github.com/myce/chatpager/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, cache *redisstore.Store, feed *livefeed.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.New(db, cfg, cache, feed)

	r.GET("/ping", h.Ping)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/rooms/:room_id/messages", h.ListRoomMessages)
	authGroup.POST("/rooms/:room_id/messages", h.PostRoomMessage)
	authGroup.PATCH("/messages/:id/read", h.MarkMessageRead)

	return r
}
