package location

import (
	"context"
	"net/http"

	"github.com/frahmantamala/wanderhub/internal/store"
	"github.com/frahmantamala/wanderhub/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*Location, error)
	List(ctx context.Context, page, limit int) (store.Page[*Location], error)
	Create(ctx context.Context, dto CreateLocationDTO) (*Location, error)
	Update(ctx context.Context, id int64, dto UpdateLocationDTO) (*Location, error)
	Delete(ctx context.Context, id int64) (*Location, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	page, limit, err := h.PageParams(r)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	locations, err := h.Service.List(r.Context(), page, limit)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, locations)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	l, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var dto CreateLocationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, r, err)
		return
	}

	l, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	var dto UpdateLocationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, r, err)
		return
	}

	l, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	l, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}
