package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/spergel/translation-stuff-sub001/internal/documents"
	"github.com/spergel/translation-stuff-sub001/internal/translations"
)

type Service struct {
	DocRepo documents.DocumentsRepo
	TrRepo  translations.Repo
}

type ClaimResult struct {
	MigratedDocuments    int `json:"migratedDocuments"`
	MigratedTranslations int `json:"migratedTranslations"`
}

func NewService(docRepo documents.DocumentsRepo, trRepo translations.Repo) *Service {
	return &Service{DocRepo: docRepo, TrRepo: trRepo}
}

// ClaimGuest migrates a guest's documents and translations to an
// authenticated user. With both repos on Postgres this runs in one
// transaction; otherwise the repos migrate independently.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if docPG, ok := s.DocRepo.(*documents.PGRepo); ok && docPG != nil && docPG.DB != nil {
		if trPG, ok := s.TrRepo.(*translations.PGRepo); ok && trPG != nil && trPG.DB != nil {
			return claimWithTx(ctx, docPG.DB, guestUserID, authedUserID)
		}
	}

	docCount, err := s.DocRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	trCount, err := s.TrRepo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: docCount, MigratedTranslations: trCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	trRes, err := tx.ExecContext(ctx, `UPDATE translations SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	trCount, _ := trRes.RowsAffected()

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: int(docCount), MigratedTranslations: int(trCount)}, nil
}
