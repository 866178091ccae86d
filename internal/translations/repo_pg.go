package translations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. Pages are stored as a JSONB blob;
// they are always written and read as a unit.
type PGRepo struct {
	DB *sql.DB
}

const translationColumns = `id, document_id, user_id, target_language, provider, model, status, progress, page_count, pages, error_code, error_message, retryable, created_at, started_at, completed_at`

func (r *PGRepo) Create(ctx context.Context, tr Translation) error {
	const query = `
INSERT INTO translations (id, document_id, user_id, target_language, provider, model, status, progress, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var provider sql.NullString
	if tr.Provider != "" {
		provider = sql.NullString{String: tr.Provider, Valid: true}
	}
	var model sql.NullString
	if tr.Model != "" {
		model = sql.NullString{String: tr.Model, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		tr.ID,
		tr.DocumentID,
		tr.UserID,
		tr.TargetLanguage,
		provider,
		model,
		tr.Status,
		tr.Progress,
		tr.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, translationID string) (Translation, error) {
	const query = `
SELECT ` + translationColumns + `
FROM translations
WHERE id = $1
LIMIT 1`
	return scanTranslation(r.DB.QueryRowContext(ctx, query, translationID))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Translation, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
SELECT ` + translationColumns + `
FROM translations
WHERE user_id = $1`
	args := []any{userID}
	if filter.DocumentID != "" {
		args = append(args, filter.DocumentID)
		query += fmt.Sprintf(" AND document_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Translation, 0)
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (r *PGRepo) MarkProcessing(ctx context.Context, translationID, model string, pageCount int, startedAt time.Time) error {
	const query = `
UPDATE translations
SET status = $1, model = COALESCE(NULLIF($2, ''), model), page_count = $3, started_at = $4
WHERE id = $5`
	var pages sql.NullInt32
	if pageCount > 0 {
		pages = sql.NullInt32{Int32: int32(pageCount), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, StatusProcessing, model, pages, startedAt, translationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) UpdateProgress(ctx context.Context, translationID string, progress int, pages []Page) error {
	payload, err := json.Marshal(pages)
	if err != nil {
		return err
	}
	const query = `
UPDATE translations SET progress = $1, pages = $2 WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, progress, payload, translationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Complete(ctx context.Context, translationID string, pages []Page, completedAt time.Time) error {
	payload, err := json.Marshal(pages)
	if err != nil {
		return err
	}
	const query = `
UPDATE translations
SET status = $1, progress = 100, pages = $2, page_count = $3, error_code = NULL, error_message = NULL, retryable = NULL, completed_at = $4
WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query, StatusCompleted, payload, len(pages), completedAt, translationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Fail(ctx context.Context, translationID, code, message string, retryable bool, completedAt time.Time) error {
	const query = `
UPDATE translations
SET status = $1, error_code = $2, error_message = $3, retryable = $4, completed_at = $5
WHERE id = $6`
	res, err := r.DB.ExecContext(ctx, query, StatusFailed, code, message, retryable, completedAt, translationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE translations SET user_id = $1 WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTranslation(row rowScanner) (Translation, error) {
	var tr Translation
	var provider sql.NullString
	var model sql.NullString
	var pageCount sql.NullInt32
	var pagesRaw []byte
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var retryable sql.NullBool
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	err := row.Scan(
		&tr.ID,
		&tr.DocumentID,
		&tr.UserID,
		&tr.TargetLanguage,
		&provider,
		&model,
		&tr.Status,
		&tr.Progress,
		&pageCount,
		&pagesRaw,
		&errorCode,
		&errorMessage,
		&retryable,
		&tr.CreatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Translation{}, ErrNotFound
		}
		return Translation{}, err
	}
	if provider.Valid {
		tr.Provider = provider.String
	}
	if model.Valid {
		tr.Model = model.String
	}
	if pageCount.Valid {
		tr.PageCount = int(pageCount.Int32)
	}
	if len(pagesRaw) > 0 {
		if err := json.Unmarshal(pagesRaw, &tr.Pages); err != nil {
			return Translation{}, fmt.Errorf("translation %s: decode pages: %w", tr.ID, err)
		}
	}
	if errorCode.Valid {
		tr.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		tr.ErrorMessage = errorMessage.String
	}
	if retryable.Valid {
		v := retryable.Bool
		tr.Retryable = &v
	}
	if startedAt.Valid {
		t := startedAt.Time
		tr.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		tr.CompletedAt = &t
	}
	return tr, nil
}

var _ Repo = (*PGRepo)(nil)
