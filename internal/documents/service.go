package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spergel/translation-stuff-sub001/internal/pdfpages"
	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/object"
	"github.com/spergel/translation-stuff-sub001/internal/shared/telemetry"
	"github.com/spergel/translation-stuff-sub001/internal/uploads"
	"github.com/spergel/translation-stuff-sub001/internal/usage"
)

// Quota enforces plan limits. Implemented by the usage service.
type Quota interface {
	ReserveDocument(ctx context.Context, userID, plan string, sizeBytes int64) error
	ReleaseDocument(ctx context.Context, userID string, sizeBytes int64) error
}

// FolderChecker verifies folder ownership before filing a document.
type FolderChecker interface {
	Exists(ctx context.Context, userID, folderID string) (bool, error)
}

// PlanSource resolves the user's current plan. The JWT carries a plan claim
// but billing can change it mid-session, so the DB wins when available.
type PlanSource interface {
	PlanFor(ctx context.Context, userID string) string
}

// Service contains business logic for documents.
type Service struct {
	Store   object.ObjectStore
	Repo    DocumentsRepo
	Quota   Quota
	Folders FolderChecker
	Plans   PlanSource
}

// Upload validates the PDF, reserves quota, saves the file to object storage
// and records the document.
func (s *Service) Upload(ctx context.Context, userID, claimedPlan, fileName, folderID string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return Document{}, fmt.Errorf("%w: only PDF files are supported", ErrInvalidInput)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return Document{}, fmt.Errorf("%w: file is not a PDF", ErrInvalidInput)
	}

	pageCount, err := pdfpages.PageCount(raw)
	if err != nil {
		return Document{}, fmt.Errorf("%w: unreadable PDF", ErrInvalidInput)
	}

	if err := s.checkFolder(ctx, userID, folderID); err != nil {
		return Document{}, err
	}

	plan := s.resolvePlan(ctx, userID, claimedPlan)
	size := int64(len(raw))
	if size > usage.MaxUploadBytes(plan) {
		return Document{}, fmt.Errorf("%w: file exceeds the plan's upload size limit", usage.ErrQuotaExceeded)
	}
	if s.Quota != nil {
		if err := s.Quota.ReserveDocument(ctx, userID, plan, size); err != nil {
			return Document{}, err
		}
	}

	storageKey, _, mimeType, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(raw))
	if err != nil {
		s.releaseQuota(ctx, userID, size)
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		FolderID:   folderID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		PageCount:  pageCount,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		s.releaseQuota(ctx, userID, size)
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("documents.cleanup", delErr, map[string]any{"storage_key": storageKey})
		}
		return Document{}, err
	}

	return doc, nil
}

// CreateFromS3 records a document whose bytes were uploaded directly via a
// presigned URL. Page count is probed from storage and tolerated to fail.
func (s *Service) CreateFromS3(ctx context.Context, userID, claimedPlan, s3Key, originalFileName, contentType string, sizeBytes int64, folderID string) (Document, error) {
	if s3Key == "" || originalFileName == "" || contentType == "" || sizeBytes <= 0 {
		return Document{}, ErrInvalidInput
	}
	if !strings.HasPrefix(s3Key, uploads.UserKeyPrefix(userID)) {
		return Document{}, fmt.Errorf("%w: s3Key does not belong to this user", ErrInvalidInput)
	}

	if err := s.checkFolder(ctx, userID, folderID); err != nil {
		return Document{}, err
	}

	plan := s.resolvePlan(ctx, userID, claimedPlan)
	if sizeBytes > usage.MaxUploadBytes(plan) {
		return Document{}, fmt.Errorf("%w: file exceeds the plan's upload size limit", usage.ErrQuotaExceeded)
	}
	if s.Quota != nil {
		if err := s.Quota.ReserveDocument(ctx, userID, plan, sizeBytes); err != nil {
			return Document{}, err
		}
	}

	pageCount := 0
	if pages, err := pdfpages.ExtractPages(ctx, s.Store, s3Key); err == nil {
		pageCount = len(pages)
	} else {
		telemetry.Error("documents.page_count", err, map[string]any{"storage_key": s3Key})
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		FolderID:         folderID,
		FileName:         originalFileName,
		OriginalFilename: originalFileName,
		MimeType:         contentType,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
		PageCount:        pageCount,
		StorageProvider:  "s3",
		StorageKey:       s3Key,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		s.releaseQuota(ctx, userID, sizeBytes)
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document owned by the user.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// List returns the user's documents, optionally scoped to a folder.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID, filter)
}

// Move files a document into a folder; empty folderID unfiles it.
func (s *Service) Move(ctx context.Context, userID, documentID, folderID string) (Document, error) {
	if err := s.checkFolder(ctx, userID, folderID); err != nil {
		return Document{}, err
	}
	if err := s.Repo.SetFolder(ctx, userID, documentID, folderID); err != nil {
		return Document{}, err
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// Delete removes the document row, then cleans storage best-effort. A storage
// failure is logged and swallowed: the row is already gone and the key is
// unreachable.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, userID, documentID); err != nil {
		return err
	}

	s.releaseQuota(ctx, userID, doc.SizeBytes)

	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			telemetry.Error("documents.delete_storage", err, map[string]any{
				"document_id": documentID,
				"storage_key": doc.StorageKey,
			})
		}
	}
	return nil
}

// Open streams the original file bytes.
func (s *Service) Open(ctx context.Context, userID, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	if doc.StorageKey == "" {
		return Document{}, nil, ErrNotFound
	}
	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, body, nil
}

// PurgeFolder deletes every document filed in a folder. Used when the folder
// itself is deleted. Individual failures are logged and the purge continues.
func (s *Service) PurgeFolder(ctx context.Context, userID, folderID string) error {
	if folderID == "" {
		return ErrInvalidInput
	}
	for {
		docs, err := s.Repo.ListByUser(ctx, userID, ListFilter{FolderID: folderID, Limit: 100})
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		for _, doc := range docs {
			if err := s.Delete(ctx, userID, doc.ID); err != nil && !errors.Is(err, ErrNotFound) {
				telemetry.Error("documents.purge_folder", err, map[string]any{
					"folder_id":   folderID,
					"document_id": doc.ID,
				})
			}
		}
		if len(docs) < 100 {
			return nil
		}
	}
}

// ClaimGuest reassigns a guest's documents to an authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if guestUserID == "" || authedUserID == "" || guestUserID == authedUserID {
		return 0, ErrInvalidInput
	}
	return s.Repo.ClaimGuest(ctx, guestUserID, authedUserID)
}

var errFolderNotFound = errors.New("folder not found")

func (s *Service) checkFolder(ctx context.Context, userID, folderID string) error {
	if folderID == "" || s.Folders == nil {
		return nil
	}
	ok, err := s.Folders.Exists(ctx, userID, folderID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errFolderNotFound, folderID)
	}
	return nil
}

// IsFolderNotFound reports whether err came from an unknown folder reference.
func IsFolderNotFound(err error) bool {
	return errors.Is(err, errFolderNotFound)
}

func (s *Service) resolvePlan(ctx context.Context, userID, claimedPlan string) string {
	if s.Plans != nil {
		return s.Plans.PlanFor(ctx, userID)
	}
	if claimedPlan == "" {
		return "free"
	}
	return claimedPlan
}

func (s *Service) releaseQuota(ctx context.Context, userID string, sizeBytes int64) {
	if s.Quota == nil {
		return
	}
	if err := s.Quota.ReleaseDocument(ctx, userID, sizeBytes); err != nil {
		telemetry.Error("documents.quota_release", err, map[string]any{"user_id": userID})
	}
}
