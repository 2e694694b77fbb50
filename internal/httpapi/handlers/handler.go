package handlers

import (
	"gorm.io/gorm"

	"github.com/myce/chatpager/internal/config"
	"github.com/myce/chatpager/internal/history"
	"github.com/myce/chatpager/internal/livefeed"
	"github.com/myce/chatpager/internal/store/redisstore"
)

// Handler serves the room message REST surface. Cache and Feed are
// optional; a nil cache skips page caching and a nil feed skips live
// events.
type Handler struct {
	Repo  *history.Repo
	Cfg   config.Config
	Cache *redisstore.Store
	Feed  *livefeed.Publisher
}

func New(db *gorm.DB, cfg config.Config, cache *redisstore.Store, feed *livefeed.Publisher) *Handler {
	return &Handler{
		Repo:  history.NewRepo(db),
		Cfg:   cfg,
		Cache: cache,
		Feed:  feed,
	}
}
