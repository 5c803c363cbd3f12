package httpapi

import (
	"net/http"

	"github.com/UkralStul/forum-post-service/internal/auth"
)

// streamEvents отдает изменения статуса поста через websocket.
// Подписка разрешена тем, кому пост виден на момент подключения.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	postID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.svc.Get(r.Context(), actor, postID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет ответ об ошибке.
		return
	}
	defer conn.Close()

	subID, ch := h.observer.Subscribe(postID)
	defer h.observer.Unsubscribe(postID, subID)

	// Горутина чтения нужна только чтобы заметить отключение клиента.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
