// Package httpsource fetches message pages over the REST surface
// (GET /rooms/{id}/messages?page=&size=).
package httpsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/myce/chatpager/internal/pager"
)

type Source struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func New(baseURL, token string) *Source {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Source{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pageData struct {
	Content []pager.Message `json:"content"`
}

func (s *Source) LoadMessages(ctx context.Context, roomID string, page, size int) ([]pager.Message, error) {
	if s.Client == nil {
		return nil, errors.New("httpsource: http client is nil")
	}

	reqURL := fmt.Sprintf("%s/rooms/%s/messages?page=%d&size=%d",
		s.BaseURL, url.PathEscape(roomID), page, size)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("httpsource: status %d", resp.StatusCode)
	}

	var decoded envelope
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if decoded.Code != 0 {
		return nil, fmt.Errorf("httpsource: api code %d: %s", decoded.Code, decoded.Message)
	}

	// data is either {"content":[...]} or a bare array
	if len(decoded.Data) > 0 && decoded.Data[0] == '[' {
		var msgs []pager.Message
		if err := json.Unmarshal(decoded.Data, &msgs); err != nil {
			return nil, err
		}
		return msgs, nil
	}
	var pd pageData
	if err := json.Unmarshal(decoded.Data, &pd); err != nil {
		return nil, err
	}
	return pd.Content, nil
}
