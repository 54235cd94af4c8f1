package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ambroz/quotedesk/internal/model"
	"github.com/ambroz/quotedesk/internal/signature"
	"github.com/ambroz/quotedesk/internal/store"
)

// formPageData is the seller form template data: the base page data plus
// entered values and per-field errors so a failed submission re-renders
// with everything the seller typed still in place.
type formPageData struct {
	PageData
	Form        model.SubmissionInput
	FieldErrors model.ValidationErrors
	Conditions  []string
}

// blankForm returns the form's initial state: one blank item, condition Good.
func blankForm() model.SubmissionInput {
	return model.SubmissionInput{
		Items: []model.ItemInput{{Condition: model.ConditionGood}},
	}
}

// FormPage handles GET /. A successful submission redirects here with
// ?submitted=1, which renders a cleared form plus a confirmation banner.
func (s *Server) FormPage(w http.ResponseWriter, r *http.Request) {
	data := &formPageData{
		PageData:   PageData{Title: "Selling Form"},
		Form:       blankForm(),
		Conditions: model.Conditions(),
	}
	if r.URL.Query().Get("submitted") == "1" {
		data.Success = "Form submitted successfully! We will review your submission and get back to you soon."
	}
	s.Templates.Render(w, "form.html", data)
}

// FormSubmit handles POST /.
func (s *Server) FormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in, parseErrs := parseFormSubmission(r)

	errs := in.Validate()
	if errs == nil {
		errs = model.ValidationErrors{}
	}
	for field, msg := range parseErrs {
		errs[field] = msg
	}

	if len(errs) == 0 {
		normalized, err := signature.Process(in.Signature)
		switch {
		case errors.Is(err, signature.ErrBlank):
			errs["signature"] = "Please provide a signature"
		case err != nil:
			errs["signature"] = "Invalid signature image"
		default:
			in.Signature = normalized
		}
	}

	if len(errs) > 0 {
		s.Templates.Render(w, "form.html", &formPageData{
			PageData:    PageData{Title: "Selling Form", Error: "Please correct the highlighted fields."},
			Form:        *in,
			FieldErrors: errs,
			Conditions:  model.Conditions(),
		})
		return
	}

	sub, err := store.CreateSubmission(r.Context(), s.DB, in)
	if err != nil {
		slog.Error("failed to create submission", "error", err)
		s.Templates.Render(w, "form.html", &formPageData{
			PageData:   PageData{Title: "Selling Form", Error: "Failed to submit form. Please try again."},
			Form:       *in,
			Conditions: model.Conditions(),
		})
		return
	}

	slog.Info("submission created", "id", sub.ID, "items", len(sub.Items))
	http.Redirect(w, r, "/?submitted=1", http.StatusSeeOther)
}

// parseFormSubmission reads the posted form fields. Item fields arrive as
// parallel arrays, one entry per item row.
func parseFormSubmission(r *http.Request) (*model.SubmissionInput, model.ValidationErrors) {
	in := &model.SubmissionInput{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Address:     r.FormValue("address"),
		SellerNotes: r.FormValue("seller_notes"),
		Signature:   r.FormValue("signature"),
	}

	parseErrs := model.ValidationErrors{}

	names := r.Form["item_name"]
	descriptions := r.Form["item_description"]
	conditions := r.Form["item_condition"]
	estimates := r.Form["item_estimated_value"]

	for i, name := range names {
		item := model.ItemInput{ItemName: name}
		if i < len(descriptions) {
			item.Description = descriptions[i]
		}
		if i < len(conditions) {
			item.Condition = conditions[i]
		}
		if i < len(estimates) && estimates[i] != "" {
			v, err := strconv.ParseFloat(estimates[i], 64)
			if err != nil {
				parseErrs["items."+strconv.Itoa(i)+".estimatedValue"] = "Value must be a number"
			} else {
				item.EstimatedValue = &v
			}
		}
		in.Items = append(in.Items, item)
	}

	if len(parseErrs) == 0 {
		return in, nil
	}
	return in, parseErrs
}
