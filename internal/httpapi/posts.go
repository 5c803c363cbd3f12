package httpapi

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/UkralStul/forum-post-service/internal/auth"
	"github.com/UkralStul/forum-post-service/internal/clients"
	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/service"
	"github.com/go-chi/chi/v5"
)

// maxFormMemory - лимит парсинга multipart-форм.
const maxFormMemory = 32 << 20

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	posts, err := h.svc.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderPosts(posts))
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, fmt.Errorf("%w: multipart form expected", domain.ErrInvalidInput))
		return
	}

	images, closeImages, err := openUploads(formFiles(r.MultipartForm, "images", ""))
	if err != nil {
		writeError(w, err)
		return
	}
	defer closeImages()

	// Фронтенд шлет вложения и как "attachments", и как "attachments[i]".
	attachments, closeAttachments, err := openUploads(formFiles(r.MultipartForm, "attachments", "attachments["))
	if err != nil {
		writeError(w, err)
		return
	}
	defer closeAttachments()

	post, err := h.svc.Create(r.Context(), actor, service.CreateInput{
		Title:         r.FormValue("title"),
		Content:       r.FormValue("content"),
		Status:        r.FormValue("status"),
		Images:        images,
		Attachments:   attachments,
		Authorization: r.Header.Get("Authorization"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post Created",
		"post":    renderPost(post),
	})
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	postID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := h.svc.Get(r.Context(), actor, postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": renderPost(post)})
}

func (h *Handler) editPost(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	postID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, fmt.Errorf("%w: multipart form expected", domain.ErrInvalidInput))
		return
	}

	in := service.EditInput{
		KeepImages:      splitCSV(r.FormValue("images")),
		KeepAttachments: splitCSV(r.FormValue("attachments")),
		Authorization:   r.Header.Get("Authorization"),
	}
	// Отсутствующее поле формы оставляет значение поста нетронутым.
	if values, ok := r.MultipartForm.Value["title"]; ok && len(values) > 0 {
		in.Title = &values[0]
	}
	if values, ok := r.MultipartForm.Value["content"]; ok && len(values) > 0 {
		in.Content = &values[0]
	}

	newImages, closeImages, err := openUploads(formFiles(r.MultipartForm, "newImages", ""))
	if err != nil {
		writeError(w, err)
		return
	}
	defer closeImages()
	in.NewImages = newImages

	newAttachments, closeAttachments, err := openUploads(formFiles(r.MultipartForm, "newAttachments", ""))
	if err != nil {
		writeError(w, err)
		return
	}
	defer closeAttachments()
	in.NewAttachments = newAttachments

	post, err := h.svc.Edit(r.Context(), actor, postID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Post updated successfully",
		"post":    renderPost(post),
	})
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	postID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		writeError(w, fmt.Errorf("%w: JSON body with 'status' required", domain.ErrInvalidInput))
		return
	}

	post, err := h.svc.SetStatus(r.Context(), actor, postID, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Post status updated to %s", post.Status),
		"post":    renderPost(post),
	})
}

func (h *Handler) toggleArchive(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	postID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := h.svc.ToggleArchive(r.Context(), actor, postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Post archived set to %t", post.IsArchived),
		"post":    renderPost(post),
	})
}

func (h *Handler) topPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	posts, err := h.svc.TopPosts(r.Context(), userID, 3)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": renderPosts(posts)})
}

func (h *Handler) drafts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	drafts, err := h.svc.Drafts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drafts": renderPosts(drafts)})
}

// pathID парсит числовой параметр {id}.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id in path", domain.ErrInvalidInput)
	}
	return id, nil
}

// formFiles собирает файлы по ключу и, опционально, по префиксу ключа.
func formFiles(form *multipart.Form, key, prefix string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	headers := append([]*multipart.FileHeader(nil), form.File[key]...)
	if prefix != "" {
		for k, hs := range form.File {
			if k != key && strings.HasPrefix(k, prefix) {
				headers = append(headers, hs...)
			}
		}
	}
	return headers
}

// openUploads открывает файлы формы; closer закрывает их после запроса
// к файловому сервису.
func openUploads(headers []*multipart.FileHeader) ([]clients.Upload, func(), error) {
	uploads := make([]clients.Upload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closer := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, fh := range headers {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			closer()
			return nil, func() {}, fmt.Errorf("%w: unreadable upload %q", domain.ErrInvalidInput, fh.Filename)
		}
		opened = append(opened, f)
		uploads = append(uploads, clients.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}
	return uploads, closer, nil
}

// splitCSV разбирает список URL, склеенный запятыми.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
