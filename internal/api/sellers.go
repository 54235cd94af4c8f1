package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ambroz/quotedesk/internal/model"
	"github.com/ambroz/quotedesk/internal/signature"
	"github.com/ambroz/quotedesk/internal/store"
)

// SellersHandler handles the public seller endpoints.
type SellersHandler struct {
	DB *sql.DB
}

// Submit handles POST /api/sellers/submit.
func (h *SellersHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in model.SubmissionInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := in.Validate(); errs != nil {
		jsonValidationError(w, errs)
		return
	}

	// Normalize the signature before anything is persisted. A decode
	// failure or a blank canvas is a validation error, not a server one.
	normalized, err := signature.Process(in.Signature)
	if err != nil {
		msg := "Invalid signature image"
		if errors.Is(err, signature.ErrBlank) {
			msg = "Please provide a signature"
		}
		jsonValidationError(w, model.ValidationErrors{"signature": msg})
		return
	}
	in.Signature = normalized

	sub, err := store.CreateSubmission(r.Context(), h.DB, &in)
	if err != nil {
		slog.Error("failed to create submission", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create submission")
		return
	}

	slog.Info("submission created", "id", sub.ID, "items", len(sub.Items))
	jsonResponse(w, http.StatusCreated, sub)
}

// Get handles GET /api/sellers/{id}. Public: the print view fetches
// submissions by identifier without authentication.
func (h *SellersHandler) Get(w http.ResponseWriter, r *http.Request) {
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
