package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ambroz/quotedesk/internal/model"
	"github.com/ambroz/quotedesk/internal/store"
)

// panelPageData is the admin panel template data: the submission list, the
// selected submission, and which item (if any) is in price-edit mode.
type panelPageData struct {
	PageData
	Submissions []model.Submission
	Selected    *model.Submission
	EditIndex   int
	Statuses    []string
}

// PanelPage handles GET /admin/panel. Selection and price-edit mode are
// carried in the query string so every render starts from fresh data.
func (s *Server) PanelPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	subs, err := store.ListSubmissions(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list submissions", "error", err)
	}

	data := &panelPageData{
		PageData:    PageData{Title: "Admin Panel", User: claims},
		Submissions: subs,
		EditIndex:   -1,
		Statuses:    model.Statuses(),
	}

	q := r.URL.Query()
	if id := q.Get("selected"); id != "" {
		// One authoritative fetch of just the affected submission; the
		// list entries may be stale but the detail pane never is.
		selected, err := store.GetSubmission(r.Context(), s.DB, id)
		if err != nil {
			slog.Error("failed to get submission", "error", err)
		}
		data.Selected = selected
	}
	if edit := q.Get("edit"); edit != "" && data.Selected != nil {
		if i, err := strconv.Atoi(edit); err == nil && i >= 0 && i < len(data.Selected.Items) {
			data.EditIndex = i
		}
	}
	if msg := q.Get("saved"); msg != "" {
		switch msg {
		case "price":
			data.Success = "Price updated."
		case "status":
			data.Success = "Status updated."
		case "notes":
			data.Success = "Notes updated successfully."
		}
	}
	if msg := q.Get("err"); msg != "" {
		data.Error = msg
	}

	s.Templates.Render(w, "panel.html", data)
}

// ItemPriceSubmit handles POST /admin/panel/{id}/items/{index}/price.
// Assigning a quote forces the item's status to Quoted.
func (s *Server) ItemPriceSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid item index", http.StatusBadRequest)
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price < 0 {
		s.redirectPanel(w, r, id, url.Values{
			"edit": {strconv.Itoa(index)},
			"err":  {"Please enter a valid price"},
		})
		return
	}

	item, err := store.UpdateItem(r.Context(), s.DB, id, index, store.ItemUpdate{QuotedPrice: &price})
	if err != nil {
		slog.Error("failed to update price", "error", err)
		s.redirectPanel(w, r, id, url.Values{
			"edit": {strconv.Itoa(index)},
			"err":  {"Failed to update price"},
		})
		return
	}
	if item == nil {
		s.redirectPanel(w, r, id, url.Values{"err": {"Submission or item not found"}})
		return
	}

	claims := GetWebClaims(r.Context())
	slog.Info("price updated", "admin", claims.Username, "submission", id, "index", index, "price", price)
	s.redirectPanel(w, r, id, url.Values{"saved": {"price"}})
}

// ItemStatusSubmit handles POST /admin/panel/{id}/items/{index}/status.
// Status-only change: the quoted price is untouched.
func (s *Server) ItemStatusSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		http.Error(w, "invalid item index", http.StatusBadRequest)
		return
	}

	status := r.FormValue("status")
	if !model.ValidStatus(status) {
		s.redirectPanel(w, r, id, url.Values{"err": {"Invalid status"}})
		return
	}

	item, err := store.UpdateItem(r.Context(), s.DB, id, index, store.ItemUpdate{Status: status})
	if err != nil {
		slog.Error("failed to update status", "error", err)
		s.redirectPanel(w, r, id, url.Values{"err": {"Failed to update status"}})
		return
	}
	if item == nil {
		s.redirectPanel(w, r, id, url.Values{"err": {"Submission or item not found"}})
		return
	}

	claims := GetWebClaims(r.Context())
	slog.Info("status updated", "admin", claims.Username, "submission", id, "index", index, "status", status)
	s.redirectPanel(w, r, id, url.Values{"saved": {"status"}})
}

// NotesSubmit handles POST /admin/panel/{id}/notes.
func (s *Server) NotesSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sub, err := store.UpdateAdminNotes(r.Context(), s.DB, id, r.FormValue("admin_notes"))
	if err != nil {
		slog.Error("failed to update notes", "error", err)
		s.redirectPanel(w, r, id, url.Values{"err": {"Failed to update notes"}})
		return
	}
	if sub == nil {
		s.redirectPanel(w, r, id, url.Values{"err": {"Submission not found"}})
		return
	}

	claims := GetWebClaims(r.Context())
	slog.Info("notes updated", "admin", claims.Username, "submission", id)
	s.redirectPanel(w, r, id, url.Values{"saved": {"notes"}})
}

// redirectPanel redirects back to the panel with the given submission
// selected plus any extra query parameters.
func (s *Server) redirectPanel(w http.ResponseWriter, r *http.Request, selected string, extra url.Values) {
	q := url.Values{}
	if selected != "" {
		q.Set("selected", selected)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	http.Redirect(w, r, "/admin/panel?"+q.Encode(), http.StatusSeeOther)
}
