package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-streaming-store/internal/admin"
	"github.com/ariefcatur/go-streaming-store/internal/apperr"
	"github.com/ariefcatur/go-streaming-store/internal/support"
)

type AdminGate interface {
	TokenChecker
	Open(secret string) (string, time.Time, error)
}

type AdminService interface {
	Save(ctx context.Context, e admin.Entity) (admin.Entity, error)
	Delete(ctx context.Context, kind admin.Kind, id string) error
	List(ctx context.Context, kind admin.Kind) (any, error)
	Dashboard(ctx context.Context) (admin.Dashboard, error)
}

type TicketDesk interface {
	List(ctx context.Context) ([]support.Ticket, error)
	Resolve(ctx context.Context, id string) (support.Ticket, error)
}

type AdminHandler struct {
	Gate    AdminGate
	Admin   AdminService
	Tickets TicketDesk
	Log     *slog.Logger
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/session", h.open)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin(h.Gate))
		r.Get("/admin/dashboard", h.dashboard)
		r.Get("/admin/tickets", h.tickets)
		r.Post("/admin/tickets/{id}/resolve", h.resolve)
		r.Get("/admin/{kind}", h.list)
		r.Post("/admin/{kind}", h.save)
		r.Delete("/admin/{kind}/{id}", h.remove)
	})
}

type gateRequest struct {
	Secret string `json:"secret"`
}

type gateResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AdminHandler) open(w http.ResponseWriter, r *http.Request) {
	var req gateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	token, exp, err := h.Gate.Open(req.Secret)
	if err != nil {
		h.Log.Warn("admin gate rejected", slog.String("remote", r.RemoteAddr))
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, gateResponse{Token: token, ExpiresAt: exp})
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	d, err := h.Admin.Dashboard(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *AdminHandler) tickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ts, err := h.Tickets.List(ctx)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *AdminHandler) resolve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	t, err := h.Tickets.Resolve(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	kind, err := admin.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	v, err := h.Admin.List(ctx, kind)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// save decodes the body into the variant named by {kind}. A body without an
// id creates, one with an id updates.
func (h *AdminHandler) save(w http.ResponseWriter, r *http.Request) {
	kind, err := admin.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, r, h.Log, apperr.Validation("read body: %v", err))
		return
	}
	e, err := admin.Decode(kind, body)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	saved, err := h.Admin.Save(ctx, e)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *AdminHandler) remove(w http.ResponseWriter, r *http.Request) {
	kind, err := admin.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Admin.Delete(ctx, kind, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
