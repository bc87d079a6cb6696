package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/docstore"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	"github.com/dmitrijs2005/mandaditos/internal/server/services"
)

type Handler struct {
	documents services.DocumentService
	auth      services.AuthService
	logger    logging.Logger
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/export", h.export)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrUnknownCollection):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, common.ErrorUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		h.logger.Error(ctx, "request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req docstore.LoginRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Device, []byte(req.AccessKey))
	if err != nil {
		h.logger.Info(r.Context(), "Login rejected", "device", req.Device)
		h.writeError(r.Context(), w, err)
		return
	}

	h.writeJSON(r.Context(), w, http.StatusOK, docstore.LoginResponse{AccessToken: token})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, docstore.PingResponse{Status: "OK"})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req docstore.CreateRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.OriginID == "" {
		http.Error(w, "originId is required", http.StatusBadRequest)
		return
	}

	id, err := h.documents.Create(r.Context(), chi.URLParam(r, "collection"), req.OriginID, req.Payload)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	h.writeJSON(r.Context(), w, http.StatusCreated, docstore.CreateResponse{RemoteID: id})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req docstore.UpdateRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.documents.Update(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), req.Payload)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	docs, err := h.documents.List(r.Context(), chi.URLParam(r, "collection"), q.Get("field"), q.Get("value"))
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	resp := docstore.ListResponse{Documents: make([]docstore.Document, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, docstore.Document{RemoteID: d.ID, OriginID: d.OriginID, Payload: d.Payload})
	}
	h.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	key, n, err := h.documents.Export(r.Context(), collection)
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}

	h.logger.Info(r.Context(), "Exported collection", "collection", collection, "key", key, "count", n, "device", DeviceFromContext(r.Context()))
	h.writeJSON(r.Context(), w, http.StatusOK, docstore.ExportResponse{Key: key, Count: n})
}
