package web

import (
	"log/slog"
	"net/http"

	"github.com/ambroz/quotedesk/internal/model"
	"github.com/ambroz/quotedesk/internal/store"
)

// printPageData is the read-only print document template data.
type printPageData struct {
	PageData
	Submission *model.Submission
}

// PrintPage handles GET /print/{id}. Public: the panel opens it in a new
// browsing context and it re-fetches the submission by identifier.
func (s *Server) PrintPage(w http.ResponseWriter, r *http.Request) {
	sub, err := store.GetSubmission(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get submission for print", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if sub == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		s.Templates.Render(w, "notfound.html", &PageData{Title: "Not Found"})
		return
	}

	s.Templates.Render(w, "print.html", &printPageData{
		PageData:   PageData{Title: "Submission " + sub.ID},
		Submission: sub,
	})
}
