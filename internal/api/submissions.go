package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ambroz/quotedesk/internal/model"
	"github.com/ambroz/quotedesk/internal/store"
)

// SubmissionsHandler handles the authenticated admin review endpoints.
type SubmissionsHandler struct {
	DB *sql.DB
}

type updateItemRequest struct {
	AdminQuotedPrice *float64 `json:"adminQuotedPrice"`
	Status           string   `json:"status"`
}

type updateNotesRequest struct {
	AdminNotes string `json:"adminNotes"`
}

// List handles GET /api/admin/submissions.
func (h *SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := store.ListSubmissions(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list submissions", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	jsonResponse(w, http.StatusOK, subs)
}

// Get handles GET /api/admin/submissions/{id}.
func (h *SubmissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := store.GetSubmission(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get submission", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get submission")
		return
	}
	if sub == nil {
		jsonError(w, http.StatusNotFound, "submission not found")
		return
	}
	jsonResponse(w, http.StatusOK, sub)
}

// UpdateItem handles PUT /api/admin/submissions/{id}/items/{index}.
// Partial update: a quoted price (which forces status Quoted), a status,
// or both. Returns the updated item.
func (h *SubmissionsHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		jsonError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AdminQuotedPrice == nil && req.Status == "" {
		jsonError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.AdminQuotedPrice != nil && *req.AdminQuotedPrice < 0 {
		jsonError(w, http.StatusBadRequest, "price must be non-negative")
		return
	}
	if req.Status != "" && !model.ValidStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	item, err := store.UpdateItem(r.Context(), h.DB, r.PathValue("id"), index, store.ItemUpdate{
		QuotedPrice: req.AdminQuotedPrice,
		Status:      req.Status,
	})
	if err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		exists, err := store.SubmissionExists(r.Context(), h.DB, r.PathValue("id"))
		if err != nil {
			slog.Error("failed to check submission", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to update item")
			return
		}
		if exists {
			jsonError(w, http.StatusNotFound, "item not found")
		} else {
			jsonError(w, http.StatusNotFound, "submission not found")
		}
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item updated", "admin", claims.Username, "submission", r.PathValue("id"),
		"index", index, "status", item.Status)
	jsonResponse(w, http.StatusOK, item)
}

// UpdateNotes handles PUT /api/admin/submissions/{id}/notes.
func (h *SubmissionsHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req updateNotesRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := store.UpdateAdminNotes(r.Context(), h.DB, r.PathValue("id"), req.AdminNotes)
	if err != nil {
		slog.Error("failed to update notes", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update notes")
		return
	}
	if sub == nil {
		jsonError(w, http.StatusNotFound, "submission not found")
		return
	}

	jsonResponse(w, http.StatusOK, sub)
}
