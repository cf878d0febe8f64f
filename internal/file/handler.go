package file

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/filegate/service/internal/middleware"
	"github.com/filegate/service/internal/response"
)

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new file Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateUploadURL handles POST /api/files/upload-url.
func (h *Handler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	result, err := h.svc.CreateUploadURL(r.Context(), req, id)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.OK(w, result)
}

// DeleteObject handles DELETE /api/files/{objectKey}. The route parameter is
// percent-encoded by the client (slashes as %2F) so the key travels as a
// single path segment.
func (h *Handler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	objectKey, err := url.PathUnescape(chi.URLParam(r, "objectKey"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid object key")
		return
	}

	if err := h.svc.DeleteObject(r.Context(), objectKey, id); err != nil {
		response.AppError(w, err)
		return
	}
	response.NoContent(w)
}
