package history

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListPage returns one page of a room's messages in DESC sent_at order
// (newest -> oldest). Page is zero-based; page 0 is the newest page.
func (r *Repo) ListPage(ctx context.Context, roomID string, page, size int) ([]Message, error) {
	if size <= 0 || size > 100 {
		size = 50
	}
	if page < 0 {
		page = 0
	}

	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("sent_at DESC, id DESC").
		Offset(page * size).
		Limit(size).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Message{}).
		Where("id = ?", id).
		Update("read", true).Error
}

func (r *Repo) CountForRoom(ctx context.Context, roomID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Message{}).
		Where("room_id = ?", roomID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
