// Package pager maintains the paged message window for a single chat room:
// an ordered, deduplicated slice of history plus the fetch/loading state the
// presentation layer renders from. It owns no transport; pages come from an
// injected Source.
package pager

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNoRoom   = errors.New("pager: room id is required")
	ErrNoSource = errors.New("pager: no source configured")
)

const (
	DefaultPageSize = 20
	maxPageSize     = 100
)

// Message is a single chat entry. SentAt is the sole ordering key; ID is the
// dedup key. Sender, Body and Read are payload passed through untouched.
type Message struct {
	ID     string    `json:"id"`
	RoomID string    `json:"room_id"`
	Sender string    `json:"sender,omitempty"`
	Body   string    `json:"body,omitempty"`
	Read   bool      `json:"read,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Source fetches one page of a room's history. Page is a zero-based index
// counted from the newest messages; implementations may return the page in
// any order, the pager re-sorts.
type Source interface {
	LoadMessages(ctx context.Context, roomID string, page, size int) ([]Message, error)
}

// Snapshot is the read-only projection handed to the presentation layer.
// Messages is a copy of the visible window, ascending by SentAt.
type Snapshot struct {
	RoomID      string
	Messages    []Message
	Loading     bool
	InitialLoad bool
	HasMore     bool
	Err         error
}

// Pager is the single source of truth for one room's message window. All
// methods are safe for concurrent use; at most one history fetch is in
// flight at a time, and responses issued for a superseded room generation
// are discarded.
type Pager struct {
	src      Source
	pageSize int

	mu          sync.Mutex
	gen         uint64
	roomID      string
	cache       []Message // full history fetched so far, ascending by SentAt
	cursor      int       // index into cache of the oldest visible message
	seen        map[string]struct{}
	pagesLoaded int
	hasMore     bool
	loading     bool
	initialLoad bool
	lastErr     error
	onChange    func(Snapshot)
}

func New(src Source, pageSize int) *Pager {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = DefaultPageSize
	}
	return &Pager{
		src:      src,
		pageSize: pageSize,
		seen:     make(map[string]struct{}),
	}
}

// OnChange registers a callback invoked with a fresh snapshot after every
// state change. Set it before the first load.
func (p *Pager) OnChange(fn func(Snapshot)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

func (p *Pager) PageSize() int { return p.pageSize }

// LoadInitial opens roomID and fetches its newest page. Any previous room
// state is discarded and in-flight fetches for it are orphaned.
func (p *Pager) LoadInitial(ctx context.Context, roomID string) error {
	if roomID == "" {
		return ErrNoRoom
	}
	if p.src == nil {
		return ErrNoSource
	}

	p.mu.Lock()
	p.resetLocked()
	p.roomID = roomID
	p.loading = true
	p.initialLoad = true
	gen := p.gen
	p.mu.Unlock()
	p.notify()

	msgs, err := p.src.LoadMessages(ctx, roomID, 0, p.pageSize)

	p.mu.Lock()
	if p.gen != gen {
		// superseded by Reset or a newer LoadInitial
		p.mu.Unlock()
		return nil
	}
	p.loading = false
	p.initialLoad = false
	if err != nil {
		p.lastErr = err
		p.mu.Unlock()
		p.notify()
		return err
	}
	p.lastErr = nil
	p.hasMore = len(msgs) == p.pageSize
	p.pagesLoaded = 1
	p.mergeLocked(msgs)
	p.cursor = 0
	p.mu.Unlock()
	p.notify()
	return nil
}

// LoadOlder extends the window one page into the past. It reveals already
// cached messages without a network call when possible, and otherwise
// fetches the next older page. Returns false without error when there is
// nothing to do: a fetch is already in flight, or history is exhausted.
func (p *Pager) LoadOlder(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.loading || p.roomID == "" {
		p.mu.Unlock()
		return false, nil
	}
	if p.cursor > 0 {
		reveal := p.pageSize
		if reveal > p.cursor {
			reveal = p.cursor
		}
		p.cursor -= reveal
		p.mu.Unlock()
		p.notify()
		return true, nil
	}
	if !p.hasMore {
		p.mu.Unlock()
		return false, nil
	}
	gen := p.gen
	room := p.roomID
	page := p.pagesLoaded
	p.loading = true
	p.mu.Unlock()
	p.notify()

	msgs, err := p.src.LoadMessages(ctx, room, page, p.pageSize)

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = false
	if err != nil {
		p.lastErr = err
		p.mu.Unlock()
		p.notify()
		return false, err
	}
	p.lastErr = nil
	p.hasMore = len(msgs) == p.pageSize
	p.pagesLoaded++
	// Anchor on the oldest visible message: after the merge the hidden
	// region is everything that sorted in front of it.
	var anchorID string
	if p.cursor < len(p.cache) {
		anchorID = p.cache[p.cursor].ID
	}
	p.mergeLocked(msgs)
	p.cursor = len(p.cache)
	if anchorID != "" {
		for i := range p.cache {
			if p.cache[i].ID == anchorID {
				p.cursor = i
				break
			}
		}
	}
	// reveal one page worth of the newly cached history
	reveal := p.pageSize
	if reveal > p.cursor {
		reveal = p.cursor
	}
	p.cursor -= reveal
	p.mu.Unlock()
	p.notify()
	return true, nil
}

// AppendLive inserts a pushed message, keeping the window sorted. Duplicate
// ids are a silent no-op.
func (p *Pager) AppendLive(msg Message) bool {
	p.mu.Lock()
	if msg.ID != "" {
		if _, dup := p.seen[msg.ID]; dup {
			p.mu.Unlock()
			return false
		}
	}
	p.insertLocked(msg)
	p.mu.Unlock()
	p.notify()
	return true
}

// UpdateOne patches the message with the given id in place. The id and the
// ordering key are not patchable. Returns false when the id is unknown.
func (p *Pager) UpdateOne(id string, apply func(*Message)) bool {
	if apply == nil {
		return false
	}
	p.mu.Lock()
	idx := -1
	for i := range p.cache {
		if p.cache[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return false
	}
	sentAt := p.cache[idx].SentAt
	apply(&p.cache[idx])
	p.cache[idx].ID = id
	p.cache[idx].SentAt = sentAt
	p.mu.Unlock()
	p.notify()
	return true
}

// Reset clears all state and bumps the room generation so that late
// responses from previous fetches are discarded. Safe to call mid-fetch.
func (p *Pager) Reset() {
	p.mu.Lock()
	p.resetLocked()
	p.mu.Unlock()
	p.notify()
}

func (p *Pager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	win := p.cache[p.cursor:]
	out := make([]Message, len(win))
	copy(out, win)
	return Snapshot{
		RoomID:      p.roomID,
		Messages:    out,
		Loading:     p.loading,
		InitialLoad: p.initialLoad,
		HasMore:     p.hasMore,
		Err:         p.lastErr,
	}
}

// CanLoadOlder reports whether a LoadOlder call would do anything. Scroll
// controllers use it as their trigger gate.
func (p *Pager) CanLoadOlder() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.loading && p.roomID != "" && (p.cursor > 0 || p.hasMore)
}

func (p *Pager) resetLocked() {
	p.gen++
	p.roomID = ""
	p.cache = nil
	p.cursor = 0
	p.seen = make(map[string]struct{})
	p.pagesLoaded = 0
	p.hasMore = false
	p.loading = false
	p.initialLoad = false
	p.lastErr = nil
}

func (p *Pager) mergeLocked(msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	sorted := make([]Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SentAt.Before(sorted[j].SentAt)
	})
	for _, m := range sorted {
		if m.ID != "" {
			if _, dup := p.seen[m.ID]; dup {
				continue
			}
		}
		p.insertLocked(m)
	}
}

// insertLocked places m at its sorted position. Equal timestamps insert
// after existing entries so arrival order is stable. Messages landing above
// the window stay cached but hidden until revealed by LoadOlder.
func (p *Pager) insertLocked(m Message) {
	idx := sort.Search(len(p.cache), func(i int) bool {
		return p.cache[i].SentAt.After(m.SentAt)
	})
	p.cache = append(p.cache, Message{})
	copy(p.cache[idx+1:], p.cache[idx:])
	p.cache[idx] = m
	if m.ID != "" {
		p.seen[m.ID] = struct{}{}
	}
	if idx < p.cursor {
		p.cursor++
	}
}

func (p *Pager) notify() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn(p.Snapshot())
	}
}
