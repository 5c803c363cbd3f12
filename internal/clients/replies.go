package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ReplyClient - клиент сервиса ответов для батч-запроса счетчиков.
type ReplyClient struct {
	countURL   string
	httpClient *http.Client
}

// NewReplyClient создает клиент сервиса ответов.
// countURL - полный адрес эндпоинта reply-count.
func NewReplyClient(countURL string, timeout time.Duration) *ReplyClient {
	return &ReplyClient{
		countURL:   countURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Counts возвращает число ответов для каждого поста одним запросом.
// Посты без ответов в карту не попадают.
func (c *ReplyClient) Counts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	if len(postIDs) == 0 {
		return map[int64]int64{}, nil
	}

	payload, err := json.Marshal(map[string][]int64{"postIds": postIDs})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.countURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reply service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("reply count request failed: status %d: %s", resp.StatusCode, body)
	}

	var decoded struct {
		ReplyCounts map[string]int64 `json:"replyCounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode reply service response: %w", err)
	}

	counts := make(map[int64]int64, len(decoded.ReplyCounts))
	for rawID, count := range decoded.ReplyCounts {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		counts[id] = count
	}
	return counts, nil
}
