package model

import (
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Submission is one seller's full form entry: identity, items, signature
// and notes. The backend owns it; identifiers are server-assigned.
type Submission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Items       []Item    `json:"items"`
	SellerNotes string    `json:"sellerNotes,omitempty"`
	AdminNotes  string    `json:"adminNotes,omitempty"`
	Signature   string    `json:"signature"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Item is one entry in a submission's list of things offered for sale.
// The wire contract addresses items by Position; ID is a stable
// server-assigned identifier so edits cannot misalign across reorders.
type Item struct {
	ID               int64    `json:"id"`
	Position         int      `json:"position"`
	ItemName         string   `json:"itemName"`
	Description      string   `json:"description,omitempty"`
	Condition        string   `json:"condition"`
	EstimatedValue   *float64 `json:"estimatedValue,omitempty"`
	AdminQuotedPrice *float64 `json:"adminQuotedPrice,omitempty"`
	Status           string   `json:"status"`
}

// Item conditions.
const (
	ConditionNew     = "New"
	ConditionLikeNew = "Like New"
	ConditionGood    = "Good"
	ConditionFair    = "Fair"
	ConditionPoor    = "Poor"
)

// Item statuses. There is no transition graph: the admin may set any
// status at any time, and assigning a quote forces Quoted.
const (
	StatusPending  = "Pending"
	StatusQuoted   = "Quoted"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

// Conditions lists all valid item conditions, in display order.
func Conditions() []string {
	return []string{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}
}

// Statuses lists all valid item statuses, in display order.
func Statuses() []string {
	return []string{StatusPending, StatusQuoted, StatusAccepted, StatusRejected}
}

// ValidCondition reports whether c is a known item condition.
func ValidCondition(c string) bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusQuoted, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ItemInput is the seller-supplied part of an item.
type ItemInput struct {
	ItemName       string   `json:"itemName"`
	Description    string   `json:"description"`
	Condition      string   `json:"condition"`
	EstimatedValue *float64 `json:"estimatedValue"`
}

// SubmissionInput is the seller form payload, before the server assigns
// identifiers and timestamps.
type SubmissionInput struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	Items       []ItemInput `json:"items"`
	SellerNotes string      `json:"sellerNotes"`
	Signature   string      `json:"signature"`
}

// ValidationErrors maps field names (items use "items.N.field") to messages.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e[k])
	}
	return b.String()
}

// Validate checks the submission invariants: identity fields present,
// email well-formed, at least one item, every item named with a known
// condition, estimates non-negative, signature non-empty.
func (in *SubmissionInput) Validate() ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "Email is required"
	} else if !validEmail(in.Email) {
		errs["email"] = "Invalid email"
	}
	if strings.TrimSpace(in.Phone) == "" {
		errs["phone"] = "Phone is required"
	}
	if strings.TrimSpace(in.Address) == "" {
		errs["address"] = "Address is required"
	}

	if len(in.Items) == 0 {
		errs["items"] = "At least one item is required"
	}
	for i, item := range in.Items {
		prefix := "items." + strconv.Itoa(i) + "."
		if strings.TrimSpace(item.ItemName) == "" {
			errs[prefix+"itemName"] = "Item name is required"
		}
		if item.Condition == "" {
			errs[prefix+"condition"] = "Condition is required"
		} else if !ValidCondition(item.Condition) {
			errs[prefix+"condition"] = "Unknown condition"
		}
		if item.EstimatedValue != nil && *item.EstimatedValue < 0 {
			errs[prefix+"estimatedValue"] = "Value must be positive"
		}
	}

	if strings.TrimSpace(in.Signature) == "" {
		errs["signature"] = "Please provide a signature"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	// Reject "Name <a@b>" forms: the form field holds a bare address.
	return err == nil && addr.Address == s
}
