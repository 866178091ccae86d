package folders

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, folder Folder) error {
	const query = `
INSERT INTO folders (id, user_id, name, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())`
	_, err := r.DB.ExecContext(ctx, query, folder.ID, folder.UserID, folder.Name)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, folderID string) (Folder, error) {
	const query = `
SELECT id, user_id, name, created_at, updated_at
FROM folders
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
LIMIT 1`
	var folder Folder
	err := r.DB.QueryRowContext(ctx, query, folderID, userID).Scan(
		&folder.ID, &folder.UserID, &folder.Name, &folder.CreatedAt, &folder.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Folder{}, ErrNotFound
	}
	if err != nil {
		return Folder{}, err
	}
	return folder, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Folder, error) {
	const query = `
SELECT id, user_id, name, created_at, updated_at
FROM folders
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Folder, 0)
	for rows.Next() {
		var folder Folder
		if err := rows.Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.CreatedAt, &folder.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, folder)
	}
	return out, rows.Err()
}

func (r *PGRepo) Rename(ctx context.Context, userID, folderID, name string) error {
	const query = `
UPDATE folders SET name = $1, updated_at = now()
WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, name, folderID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, folderID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE folders SET deleted_at = now(), updated_at = now()
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, folderID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	// Documents survive folder deletion; they just become unfiled.
	if _, err := tx.ExecContext(ctx, `
UPDATE documents SET folder_id = NULL, updated_at = now()
WHERE folder_id = $1 AND user_id = $2`, folderID, userID); err != nil {
		return err
	}

	return tx.Commit()
}

var _ Repo = (*PGRepo)(nil)
