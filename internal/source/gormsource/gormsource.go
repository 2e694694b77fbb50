// Package gormsource adapts the history repo to the pager's Source
// contract, for tests and single-process deployments.
package gormsource

import (
	"context"

	"github.com/myce/chatpager/internal/history"
	"github.com/myce/chatpager/internal/pager"
)

type Source struct {
	repo *history.Repo
}

func New(repo *history.Repo) *Source {
	return &Source{repo: repo}
}

func (s *Source) LoadMessages(ctx context.Context, roomID string, page, size int) ([]pager.Message, error) {
	rows, err := s.repo.ListPage(ctx, roomID, page, size)
	if err != nil {
		return nil, err
	}
	out := make([]pager.Message, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.Wire())
	}
	return out, nil
}
