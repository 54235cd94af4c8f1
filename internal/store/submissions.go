package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ambroz/quotedesk/internal/model"
)

// CreateSubmission creates a submission and its items atomically.
// The signature must already be validated and normalized by the caller.
func CreateSubmission(ctx context.Context, db *sql.DB, in *model.SubmissionInput) (*model.Submission, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (id, name, email, phone, address, seller_notes, signature)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, in.Name, in.Email, in.Phone, in.Address, nullString(in.SellerNotes), in.Signature,
	)
	if err != nil {
		return nil, fmt.Errorf("creating submission: %w", err)
	}

	for pos, item := range in.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (submission_id, position, item_name, description, condition, estimated_value, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, pos, item.ItemName, nullString(item.Description), item.Condition,
			nullFloat(item.EstimatedValue), model.StatusPending,
		)
		if err != nil {
			return nil, fmt.Errorf("creating item %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing submission: %w", err)
	}

	return GetSubmission(ctx, db, id)
}

// GetSubmission returns a submission with its items, or nil if unknown.
func GetSubmission(ctx context.Context, db *sql.DB, id string) (*model.Submission, error) {
	s := &model.Submission{}
	var sellerNotes, adminNotes sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, address, seller_notes, admin_notes, signature, created_at
		 FROM submissions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &sellerNotes, &adminNotes, &s.Signature, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting submission: %w", err)
	}
	s.SellerNotes = sellerNotes.String
	s.AdminNotes = adminNotes.String

	items, err := listItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	s.Items = items

	return s, nil
}

// SubmissionExists reports whether a submission with the given id exists.
func SubmissionExists(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM submissions WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking submission: %w", err)
	}
	return exists, nil
}

// ListSubmissions returns all submissions with their items, newest first.
func ListSubmissions(ctx context.Context, db *sql.DB) ([]model.Submission, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, phone, address, seller_notes, admin_notes, signature, created_at
		 FROM submissions ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	index := map[string]int{}
	for rows.Next() {
		var s model.Submission
		var sellerNotes, adminNotes sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &sellerNotes, &adminNotes, &s.Signature, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		s.SellerNotes = sellerNotes.String
		s.AdminNotes = adminNotes.String
		s.Items = []model.Item{}
		index[s.ID] = len(subs)
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := db.QueryContext(ctx,
		`SELECT id, submission_id, position, item_name, description, condition, estimated_value, admin_quoted_price, status
		 FROM items ORDER BY submission_id, position`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item model.Item
		var submissionID string
		if err := scanItem(itemRows, &item, &submissionID); err != nil {
			return nil, err
		}
		if i, ok := index[submissionID]; ok {
			subs[i].Items = append(subs[i].Items, item)
		}
	}
	return subs, itemRows.Err()
}

// ItemUpdate is a partial per-item update. A non-nil QuotedPrice forces
// the status to Quoted regardless of any prior status; a Status alone
// changes just the status. There is no transition graph.
type ItemUpdate struct {
	QuotedPrice *float64
	Status      string
}

// UpdateItem applies a partial update to the item at the given position.
// Returns the updated item, or nil if the submission or index is unknown.
func UpdateItem(ctx context.Context, db *sql.DB, submissionID string, index int, upd ItemUpdate) (*model.Item, error) {
	status := upd.Status
	if upd.QuotedPrice != nil {
		// Assigning a quote marks the item Quoted as a side effect.
		status = model.StatusQuoted
	}

	var result sql.Result
	var err error
	switch {
	case upd.QuotedPrice != nil:
		result, err = db.ExecContext(ctx,
			`UPDATE items SET admin_quoted_price = ?, status = ?
			 WHERE submission_id = ? AND position = ?`,
			*upd.QuotedPrice, status, submissionID, index,
		)
	case status != "":
		result, err = db.ExecContext(ctx,
			`UPDATE items SET status = ? WHERE submission_id = ? AND position = ?`,
			status, submissionID, index,
		)
	default:
		return GetItem(ctx, db, submissionID, index)
	}
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return GetItem(ctx, db, submissionID, index)
}

// GetItem returns a single item by submission and position, or nil if unknown.
func GetItem(ctx context.Context, db *sql.DB, submissionID string, index int) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, submission_id, position, item_name, description, condition, estimated_value, admin_quoted_price, status
		 FROM items WHERE submission_id = ? AND position = ?`, submissionID, index,
	)

	var item model.Item
	var submissionIDOut string
	if err := scanItem(row, &item, &submissionIDOut); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpdateAdminNotes replaces a submission's admin notes.
// Returns the updated submission, or nil if unknown.
func UpdateAdminNotes(ctx context.Context, db *sql.DB, id, notes string) (*model.Submission, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE submissions SET admin_notes = ? WHERE id = ?`,
		nullString(notes), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating admin notes: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return GetSubmission(ctx, db, id)
}

// listItems returns a submission's items ordered by position.
func listItems(ctx context.Context, db *sql.DB, submissionID string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, submission_id, position, item_name, description, condition, estimated_value, admin_quoted_price, status
		 FROM items WHERE submission_id = ? ORDER BY position`, submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var item model.Item
		var submissionIDOut string
		if err := scanItem(rows, &item, &submissionIDOut); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, item *model.Item, submissionID *string) error {
	var description sql.NullString
	var estimatedValue, quotedPrice sql.NullFloat64
	err := row.Scan(&item.ID, submissionID, &item.Position, &item.ItemName, &description,
		&item.Condition, &estimatedValue, &quotedPrice, &item.Status)
	if err == sql.ErrNoRows {
		return err
	}
	if err != nil {
		return fmt.Errorf("scanning item: %w", err)
	}
	item.Description = description.String
	if estimatedValue.Valid {
		v := estimatedValue.Float64
		item.EstimatedValue = &v
	}
	if quotedPrice.Valid {
		v := quotedPrice.Float64
		item.AdminQuotedPrice = &v
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
