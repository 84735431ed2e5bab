package authapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"commerce/cmd/internal/catalog"
)

type itemsResponse struct {
	Items []catalog.Deal `json:"items"`
}

type createItemRequest struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       int32  `json:"price"`
	Description string `json:"description"`
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeNotFound(w)
		return
	}

	deal, err := h.deals.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, h.log, "item.get", err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	deals, err := h.deals.List(r.Context(), pageFromQuery(r))
	if err != nil {
		h.writeStoreError(w, h.log, "item.list", err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: deals})
}

// handleCreateItem requires any valid bearer token; finer-grained access
// control is out of scope, the role travels in the token for downstream use.
func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.bearerClaims(r); !ok {
		writeUnauthorized(w)
		return
	}

	var req createItemRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeBadRequest(w)
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Price < 0 {
		writeBadRequest(w)
		return
	}

	deal, err := h.deals.Create(r.Context(), catalog.Deal{
		Name:        req.Name,
		Image:       req.Image,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		h.writeStoreError(w, h.log, "item.create", err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

// pageFromQuery reads limit/offset query params; blank or malformed values
// fall back to defaults.
func pageFromQuery(r *http.Request) catalog.Page {
	var page catalog.Page
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			page.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			page.Offset = n
		}
	}
	return page
}
