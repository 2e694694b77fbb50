package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myce/chatpager/internal/config"
	"github.com/myce/chatpager/internal/db"
	"github.com/myce/chatpager/internal/history"
	"github.com/myce/chatpager/internal/httpapi"
	"github.com/myce/chatpager/internal/livefeed"
	"github.com/myce/chatpager/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := gdb.AutoMigrate(&history.Message{}); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	cache := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.PageCacheTTL)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable, page cache disabled: %v", err)
		_ = cache.Close()
		cache = nil
	}
	cancel()

	feed, err := livefeed.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbit unavailable, live feed disabled: %v", err)
		feed = nil
	}

	router := httpapi.NewRouter(gdb, cfg, cache, feed)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server starting at %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	if feed != nil {
		_ = feed.Close()
	}
	if cache != nil {
		_ = cache.Close()
	}
	log.Printf("server stopped")
}
