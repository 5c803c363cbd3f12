package httpapi

import (
	"net/http"

	"github.com/UkralStul/forum-post-service/internal/auth"
	"github.com/UkralStul/forum-post-service/internal/events"
	"github.com/UkralStul/forum-post-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Handler - REST-слой поверх сервиса постов.
type Handler struct {
	svc      *service.Service
	observer *events.Observer
	upgrader websocket.Upgrader
}

// NewHandler создает HTTP-хендлер.
func NewHandler(svc *service.Service, observer *events.Observer) *Handler {
	return &Handler{
		svc:      svc,
		observer: observer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes собирает маршруты сервиса. Все маршруты требуют Identity
// из заголовков гейтвея; дальнейшие проверки делает сервис.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/posts", func(r chi.Router) {
		r.Use(h.withIdentity)

		r.Get("/", h.listPosts)
		r.Post("/", h.createPost)

		// {id} - id поста, кроме top-posts и drafts, где это id пользователя.
		r.Get("/{id}", h.getPost)
		r.Put("/{id}", h.editPost)
		r.Put("/{id}/status", h.setStatus)
		r.Put("/{id}/toggle-archive", h.toggleArchive)
		r.Get("/{id}/events", h.streamEvents)
		r.Get("/{id}/top-posts", h.topPosts)
		r.Get("/{id}/drafts", h.drafts)
	})
	return r
}

// withIdentity извлекает Identity из заголовков и кладет в контекст.
func (h *Handler) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := auth.ExtractIdentity(r.Header)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), identity)))
	})
}
