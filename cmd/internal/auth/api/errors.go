package authapi

import (
	"errors"
	"log/slog"
	"net/http"

	"commerce/cmd/internal/auth/token"
	"commerce/cmd/internal/catalog"
	"commerce/cmd/internal/identity"
)

// The full error taxonomy crossing this boundary. Messages are deliberately
// generic: an expired nonce, a wrong tag, and a bad password all read the
// same from outside.
const (
	msgNotFound     = "Not Found"
	msgUnauthorized = "Unauthorized"
	msgConflict     = "Conflict"
	msgBadRequest   = "Bad Request"
	msgInternal     = "Internal Server Error"
)

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{Message: msgNotFound})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Message: msgUnauthorized})
}

func writeConflict(w http.ResponseWriter) {
	writeJSON(w, http.StatusConflict, errorResponse{Message: msgConflict})
}

func writeBadRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: msgBadRequest})
}

func writeInternal(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Message: msgInternal})
}

// writeStoreError maps a low-level error to the taxonomy and logs the real
// cause server-side only.
func (h *Handler) writeStoreError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, identity.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeNotFound(w)
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, token.ErrInvalidToken):
		writeUnauthorized(w)
	case errors.Is(err, identity.ErrEmailTaken):
		writeConflict(w)
	default:
		log.Error("request.fail", "op", op, "err", err)
		writeInternal(w)
	}
}
