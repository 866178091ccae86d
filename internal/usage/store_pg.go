package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) EnsurePeriod(ctx context.Context, userID, plan string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	u, err := s.lockAndEnsure(ctx, tx, userID, plan)
	if err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Reserve(ctx context.Context, userID, plan string, docs int, sizeBytes int64) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, userID, plan)
	if err != nil {
		return Usage{}, err
	}

	if u.DocsUsed+docs > u.DocLimit {
		err = fmt.Errorf("%w: document limit %d reached", ErrQuotaExceeded, u.DocLimit)
		return Usage{}, err
	}
	if u.StorageUsedBytes+sizeBytes > u.StorageLimitBytes {
		err = fmt.Errorf("%w: storage limit %d bytes reached", ErrQuotaExceeded, u.StorageLimitBytes)
		return Usage{}, err
	}

	u.DocsUsed += docs
	u.StorageUsedBytes += sizeBytes
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET docs_used = $1, storage_used_bytes = $2 WHERE user_id = $3`,
		u.DocsUsed, u.StorageUsedBytes, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Release(ctx context.Context, userID string, docs int, sizeBytes int64) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, userID, "")
	if err != nil {
		return Usage{}, err
	}

	u.DocsUsed -= docs
	if u.DocsUsed < 0 {
		u.DocsUsed = 0
	}
	u.StorageUsedBytes -= sizeBytes
	if u.StorageUsedBytes < 0 {
		u.StorageUsedBytes = 0
	}
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET docs_used = $1, storage_used_bytes = $2 WHERE user_id = $3`,
		u.DocsUsed, u.StorageUsedBytes, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) ApplyPlan(ctx context.Context, userID, plan string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, userID, plan)
	if err != nil {
		return Usage{}, err
	}

	docLimit, storageLimit := PlanLimits(plan)
	u.Plan = plan
	u.DocLimit = docLimit
	u.StorageLimitBytes = storageLimit
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET plan = $1, doc_limit = $2, storage_limit_bytes = $3 WHERE user_id = $4`,
		plan, docLimit, storageLimit, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Reset(ctx context.Context, userID string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, userID, "")
	if err != nil {
		return Usage{}, err
	}

	u.DocsUsed = 0
	u.ResetsAt = time.Now().UTC().Add(periodLength)
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET docs_used = 0, resets_at = $1 WHERE user_id = $2`, u.ResetsAt, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID, plan string) (Usage, error) {
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT plan, doc_limit, docs_used, storage_limit_bytes, storage_used_bytes, resets_at
FROM usage WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&u.Plan, &u.DocLimit, &u.DocsUsed, &u.StorageLimitBytes, &u.StorageUsedBytes, &u.ResetsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			u = defaultUsage(plan)
			if _, err = tx.ExecContext(ctx, `
INSERT INTO usage (user_id, plan, doc_limit, docs_used, storage_limit_bytes, storage_used_bytes, resets_at)
VALUES ($1, $2, $3, 0, $4, 0, $5)`,
				userID, u.Plan, u.DocLimit, u.StorageLimitBytes, u.ResetsAt); err != nil {
				return Usage{}, err
			}
			return u, nil
		}
		return Usage{}, err
	}

	now := time.Now().UTC()
	if !now.Before(u.ResetsAt) {
		// New period: document counter restarts, held storage does not.
		u.DocsUsed = 0
		u.ResetsAt = now.Add(periodLength)
		if _, err = tx.ExecContext(ctx, `
UPDATE usage SET docs_used = 0, resets_at = $1 WHERE user_id = $2`, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
