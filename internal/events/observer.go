package events

import (
	"sync"
	"time"

	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/google/uuid"
)

// StatusEvent - одно изменение статуса поста.
type StatusEvent struct {
	PostID int64         `json:"postId"`
	From   domain.Status `json:"from"`
	To     domain.Status `json:"to"`
	At     time.Time     `json:"at"`
}

// Observer хранит каналы подписчиков на события статуса поста.
type Observer struct {
	mu sync.RWMutex
	//          map[postID] map[subscriberID] channel
	subs map[int64]map[string]chan StatusEvent
}

// NewObserver - конструктор наблюдателя.
func NewObserver() *Observer {
	return &Observer{
		subs: make(map[int64]map[string]chan StatusEvent),
	}
}

// Subscribe регистрирует подписчика на события поста и возвращает
// его идентификатор вместе с каналом событий.
func (o *Observer) Subscribe(postID int64) (string, <-chan StatusEvent) {
	ch := make(chan StatusEvent, 1)
	subID := uuid.NewString()

	o.mu.Lock()
	if o.subs[postID] == nil {
		o.subs[postID] = make(map[string]chan StatusEvent)
	}
	o.subs[postID][subID] = ch
	o.mu.Unlock()

	return subID, ch
}

// Unsubscribe снимает подписку; вызывается при отключении клиента.
func (o *Observer) Unsubscribe(postID int64, subID string) {
	o.mu.Lock()
	if postSubs, ok := o.subs[postID]; ok {
		delete(postSubs, subID)
		if len(postSubs) == 0 {
			delete(o.subs, postID)
		}
	}
	o.mu.Unlock()
}

// Notify асинхронно рассылает событие подписчикам поста.
func (o *Observer) Notify(ev StatusEvent) {
	o.mu.RLock()
	postSubs, ok := o.subs[ev.PostID]
	if !ok {
		o.mu.RUnlock()
		return
	}
	channels := make([]chan StatusEvent, 0, len(postSubs))
	for _, ch := range postSubs {
		channels = append(channels, ch)
	}
	o.mu.RUnlock()

	// Запускаем в горутине, чтобы не блокировать мутацию
	go func() {
		for _, ch := range channels {
			select {
			case ch <- ev:
			default:
				// Клиент не успевает читать - событие пропускается
			}
		}
	}()
}
