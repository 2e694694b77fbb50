// The reader demo drives the pager against a running server: it opens a
// room, pages backward through its history via simulated near-top scroll
// events, then follows the live feed until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myce/chatpager/internal/config"
	"github.com/myce/chatpager/internal/httpapi/middleware"
	"github.com/myce/chatpager/internal/livefeed"
	"github.com/myce/chatpager/internal/pager"
	"github.com/myce/chatpager/internal/scroll"
	"github.com/myce/chatpager/internal/source/httpsource"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := middleware.IssueToken(cfg.JWTSecret, "reader", time.Hour)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	src := httpsource.New(cfg.APIBaseURL, token)
	p := pager.New(src, cfg.PageSize)
	p.OnChange(func(s pager.Snapshot) {
		if s.Err != nil {
			log.Printf("room=%s err=%v", s.RoomID, s.Err)
			return
		}
		log.Printf("room=%s messages=%d loading=%v hasMore=%v", s.RoomID, len(s.Messages), s.Loading, s.HasMore)
	})

	ctrl := scroll.NewController(
		func() {
			if _, err := p.LoadOlder(ctx); err != nil {
				log.Printf("load older: %v", err)
			}
		},
		p.CanLoadOlder,
		cfg.ScrollSettle,
		cfg.ScrollTopThreshold,
		cfg.ScrollBottomSlack,
	)
	defer ctrl.Stop()

	if err := p.LoadInitial(ctx, cfg.RoomID); err != nil {
		log.Fatalf("initial load: %v", err)
	}

	// walk back through history the way a user scrolling to the top would
	for p.CanLoadOlder() {
		ctrl.OnScroll(0, 2000, 600)
		time.Sleep(cfg.ScrollSettle + 50*time.Millisecond)
	}

	snap := p.Snapshot()
	if n := len(snap.Messages); n > 0 {
		log.Printf("history complete: %d messages, oldest=%s newest=%s",
			n, snap.Messages[0].SentAt.Format(time.RFC3339), snap.Messages[n-1].SentAt.Format(time.RFC3339))
	} else {
		log.Printf("history complete: room is empty")
	}

	consumer, err := livefeed.NewConsumer(cfg.RabbitURL, cfg.RabbitQueue, cfg.RoomID, p)
	if err != nil {
		log.Printf("rabbit unavailable, skipping live feed: %v", err)
		<-ctx.Done()
		return
	}
	defer consumer.Close()

	log.Printf("following live feed for room=%s", cfg.RoomID)
	if err := consumer.Run(ctx); err != nil && err != context.Canceled {
		log.Printf("live feed stopped: %v", err)
	}
}
