package httpapi

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/myce/chatpager/internal/config"
	"github.com/myce/chatpager/internal/history"
	"github.com/myce/chatpager/internal/httpapi/middleware"
	"github.com/myce/chatpager/internal/pager"
	"github.com/myce/chatpager/internal/scroll"
	"github.com/myce/chatpager/internal/source/httpsource"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&history.Message{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// Full round trip: seeded history behind the REST surface, paged backward
// by the pager through the HTTP source.
func TestPagerAgainstServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	repo := history.NewRepo(db)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		m := history.Message{
			ID:     fmt.Sprintf("m-%04d", i),
			RoomID: "R1",
			Sender: "alice",
			Body:   fmt.Sprintf("message %d", i),
			SentAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(context.Background(), &m); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	cfg := config.Config{JWTSecret: "test-secret"}
	srv := httptest.NewServer(NewRouter(db, cfg, nil, nil))
	defer srv.Close()

	token, err := middleware.IssueToken(cfg.JWTSecret, "tester", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	src := httpsource.New(srv.URL, token)
	p := pager.New(src, 10)

	if err := p.LoadInitial(context.Background(), "R1"); err != nil {
		t.Fatalf("load initial: %v", err)
	}
	snap := p.Snapshot()
	if len(snap.Messages) != 10 {
		t.Fatalf("expected the newest 10, got %d", len(snap.Messages))
	}
	if snap.Messages[0].ID != "m-0010" || snap.Messages[9].ID != "m-0019" {
		t.Fatalf("unexpected initial window: %s .. %s", snap.Messages[0].ID, snap.Messages[9].ID)
	}
	if !snap.HasMore {
		t.Fatalf("10 older messages remain, hasMore should be true")
	}

	if ok, err := p.LoadOlder(context.Background()); !ok || err != nil {
		t.Fatalf("load older: ok=%v err=%v", ok, err)
	}
	snap = p.Snapshot()
	if len(snap.Messages) != 20 {
		t.Fatalf("expected all 20, got %d", len(snap.Messages))
	}
	if snap.Messages[0].ID != "m-0000" {
		t.Fatalf("oldest message should lead the window, got %s", snap.Messages[0].ID)
	}
	// the previously topmost message stays visually stationary after the
	// prepend once the restore offset is applied
	if off := scroll.RestoreOffset(1000, 50, 1400); off != 450 {
		t.Fatalf("restore offset = %v, want 450", off)
	}

	// server returned exactly one more full page; a further load discovers
	// the end of history
	if ok, err := p.LoadOlder(context.Background()); !ok || err != nil {
		t.Fatalf("load past end: ok=%v err=%v", ok, err)
	}
	snap = p.Snapshot()
	if snap.HasMore {
		t.Fatalf("empty page should clear hasMore")
	}
	if len(snap.Messages) != 20 {
		t.Fatalf("window should be unchanged at 20, got %d", len(snap.Messages))
	}
}
