package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-streaming-store/internal/media"
)

type MediaHandler struct {
	Log *slog.Logger
}

func (h *MediaHandler) Register(r chi.Router) {
	r.Get("/media/resolve", h.resolve)
}

type mediaResponse struct {
	media.Info
	Kind      media.Kind `json:"kind"`
	RenderURL string     `json:"render_url"`
}

// resolve accepts a bare id or a pasted share address in ref.
func (h *MediaHandler) resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kindParam := q.Get("kind")
	if kindParam == "" {
		kindParam = string(media.KindPicture)
	}
	kind, err := media.ParseKind(kindParam)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	id := media.ExtractID(q.Get("ref"))
	render, err := media.Resolve(id, kind)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, mediaResponse{Info: media.Describe(id), Kind: kind, RenderURL: render})
}
