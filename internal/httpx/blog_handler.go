package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/blog"
)

type BlogReader interface {
	Posts(ctx context.Context, q blog.Query) (blog.PostPage, error)
	Post(ctx context.Context, id string) (blog.Post, error)
	Categories(ctx context.Context) ([]blog.Category, error)
	FAQs(ctx context.Context) ([]blog.FAQ, error)
	Shell(ctx context.Context) (blog.Shell, error)
	Share(ctx context.Context, id string, req blog.ShareRequest) (blog.ShareLink, error)
}

type BlogHandler struct {
	Blog BlogReader
	Log  *slog.Logger
}

func (h *BlogHandler) Register(r chi.Router) {
	r.Get("/blog/posts", h.posts)
	r.Get("/blog/posts/{id}", h.post)
	r.Post("/blog/posts/{id}/share", h.share)
	r.Get("/blog/categories", h.categories)
	r.Get("/blog/faqs", h.faqs)
	r.Get("/blog/shell", h.shell)
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, apperr.Validation("page must be a positive integer")
	}
	return n, nil
}

func (h *BlogHandler) posts(w http.ResponseWriter, r *http.Request) {
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	q := r.URL.Query()
	res, err := h.Blog.Posts(ctx, blog.Query{Search: q.Get("q"), Category: q.Get("category"), Page: page})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BlogHandler) post(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	p, err := h.Blog.Post(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *BlogHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cs, err := h.Blog.Categories(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *BlogHandler) faqs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	fs, err := h.Blog.FAQs(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

func (h *BlogHandler) shell(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	s, err := h.Blog.Shell(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *BlogHandler) share(w http.ResponseWriter, r *http.Request) {
	var req blog.ShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	link, err := h.Blog.Share(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}
