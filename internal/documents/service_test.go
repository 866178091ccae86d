package documents

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/object/local"
	"github.com/spergel/translation-stuff-sub001/internal/usage"
)

type fakeQuota struct {
	reserveErr error
	reserved   int64
	released   int64
}

func (f *fakeQuota) ReserveDocument(ctx context.Context, userID, plan string, sizeBytes int64) error {
	_ = ctx
	_ = userID
	_ = plan
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.reserved += sizeBytes
	return nil
}

func (f *fakeQuota) ReleaseDocument(ctx context.Context, userID string, sizeBytes int64) error {
	_ = ctx
	_ = userID
	f.released += sizeBytes
	return nil
}

type fakeFolders struct {
	known map[string]bool
}

func (f fakeFolders) Exists(ctx context.Context, userID, folderID string) (bool, error) {
	_ = ctx
	_ = userID
	return f.known[folderID], nil
}

func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Cell(0, 10, "page")
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, quota *fakeQuota) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := &Service{
		Store:   local.New(t.TempDir()),
		Repo:    repo,
		Quota:   quota,
		Folders: fakeFolders{known: map[string]bool{"folder-1": true}},
	}
	return svc, repo
}

func TestUploadStoresDocument(t *testing.T) {
	quota := &fakeQuota{}
	svc, repo := newTestService(t, quota)
	raw := samplePDF(t, 3)

	doc, err := svc.Upload(context.Background(), "user-1", "free", "book.pdf", "", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", doc.PageCount)
	}
	if doc.SizeBytes != int64(len(raw)) {
		t.Fatalf("expected size %d, got %d", len(raw), doc.SizeBytes)
	}
	if quota.reserved != int64(len(raw)) {
		t.Fatalf("expected quota reserved")
	}

	stored, err := repo.GetByID(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.StorageKey == "" {
		t.Fatalf("expected storage key recorded")
	}
}

func TestCreateFromS3AcceptsOwnKey(t *testing.T) {
	quota := &fakeQuota{}
	svc, repo := newTestService(t, quota)

	doc, err := svc.CreateFromS3(context.Background(), "user-1", "free",
		"documents/user-1/doc-id/file-id-book.pdf", "book.pdf", "application/pdf", 1024, "")
	if err != nil {
		t.Fatalf("create from s3: %v", err)
	}
	if doc.StorageProvider != "s3" {
		t.Fatalf("expected s3 provider, got %q", doc.StorageProvider)
	}
	if quota.reserved != 1024 {
		t.Fatalf("expected quota reserved")
	}
	if _, err := repo.GetByID(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("get stored: %v", err)
	}
}

func TestCreateFromS3RejectsForeignKey(t *testing.T) {
	quota := &fakeQuota{}
	svc, _ := newTestService(t, quota)

	_, err := svc.CreateFromS3(context.Background(), "user-1", "free",
		"documents/user-2/doc-id/file-id-book.pdf", "book.pdf", "application/pdf", 1024, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for another user's key, got %v", err)
	}
	if quota.reserved != 0 {
		t.Fatalf("expected no quota reserved")
	}

	_, err = svc.CreateFromS3(context.Background(), "user-1", "free",
		"other-prefix/user-1/file.pdf", "book.pdf", "application/pdf", 1024, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input outside the uploads prefix, got %v", err)
	}
}

func TestCreateFromS3EnforcesPlanFileCap(t *testing.T) {
	quota := &fakeQuota{}
	svc, _ := newTestService(t, quota)

	tooBig := usage.MaxUploadBytes("free") + 1
	_, err := svc.CreateFromS3(context.Background(), "user-1", "free",
		"documents/user-1/doc-id/file-id-book.pdf", "book.pdf", "application/pdf", tooBig, "")
	if !errors.Is(err, usage.ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	if quota.reserved != 0 {
		t.Fatalf("expected no quota reserved")
	}
}

func TestUploadRejectsNonPDFExtension(t *testing.T) {
	svc, _ := newTestService(t, &fakeQuota{})
	_, err := svc.Upload(context.Background(), "user-1", "free", "notes.txt", "", strings.NewReader("hello"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUploadRejectsBadMagicBytes(t *testing.T) {
	svc, _ := newTestService(t, &fakeQuota{})
	_, err := svc.Upload(context.Background(), "user-1", "free", "fake.pdf", "", strings.NewReader("MZ not a pdf"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc, _ := newTestService(t, &fakeQuota{})
	_, err := svc.Upload(context.Background(), "user-1", "free", "empty.pdf", "", strings.NewReader(""))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUploadQuotaExceeded(t *testing.T) {
	quota := &fakeQuota{reserveErr: usage.ErrQuotaExceeded}
	svc, _ := newTestService(t, quota)

	_, err := svc.Upload(context.Background(), "user-1", "free", "book.pdf", "", bytes.NewReader(samplePDF(t, 1)))
	if !errors.Is(err, usage.ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
}

func TestUploadUnknownFolder(t *testing.T) {
	svc, _ := newTestService(t, &fakeQuota{})
	_, err := svc.Upload(context.Background(), "user-1", "free", "book.pdf", "folder-nope", bytes.NewReader(samplePDF(t, 1)))
	if !IsFolderNotFound(err) {
		t.Fatalf("expected folder not found, got %v", err)
	}
}

func TestUploadIntoFolder(t *testing.T) {
	svc, _ := newTestService(t, &fakeQuota{})
	doc, err := svc.Upload(context.Background(), "user-1", "free", "book.pdf", "folder-1", bytes.NewReader(samplePDF(t, 1)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.FolderID != "folder-1" {
		t.Fatalf("expected folder assignment, got %q", doc.FolderID)
	}
}

func TestDeleteReleasesQuotaAndStorage(t *testing.T) {
	quota := &fakeQuota{}
	svc, _ := newTestService(t, quota)
	raw := samplePDF(t, 1)

	doc, err := svc.Upload(context.Background(), "user-1", "free", "book.pdf", "", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if quota.released != int64(len(raw)) {
		t.Fatalf("expected quota released, got %d", quota.released)
	}
	if _, err := svc.Get(context.Background(), "user-1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := svc.Store.Open(context.Background(), doc.StorageKey); err == nil {
		t.Fatalf("expected object removed from storage")
	}
}

func TestMoveBetweenFolders(t *testing.T) {
	svc, _ := newTestService(t, &fakeQuota{})
	doc, err := svc.Upload(context.Background(), "user-1", "free", "book.pdf", "", bytes.NewReader(samplePDF(t, 1)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	moved, err := svc.Move(context.Background(), "user-1", doc.ID, "folder-1")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.FolderID != "folder-1" {
		t.Fatalf("expected folder-1, got %q", moved.FolderID)
	}

	unfiled, err := svc.Move(context.Background(), "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("unfile: %v", err)
	}
	if unfiled.FolderID != "" {
		t.Fatalf("expected unfiled, got %q", unfiled.FolderID)
	}
}

func TestPurgeFolderDeletesContents(t *testing.T) {
	quota := &fakeQuota{}
	svc, _ := newTestService(t, quota)

	for i := 0; i < 3; i++ {
		if _, err := svc.Upload(context.Background(), "user-1", "free", "book.pdf", "folder-1", bytes.NewReader(samplePDF(t, 1))); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}
	keep, err := svc.Upload(context.Background(), "user-1", "free", "keep.pdf", "", bytes.NewReader(samplePDF(t, 1)))
	if err != nil {
		t.Fatalf("upload keep: %v", err)
	}

	if err := svc.PurgeFolder(context.Background(), "user-1", "folder-1"); err != nil {
		t.Fatalf("purge: %v", err)
	}

	inFolder, err := svc.List(context.Background(), "user-1", ListFilter{FolderID: "folder-1", Limit: 10})
	if err != nil {
		t.Fatalf("list folder: %v", err)
	}
	if len(inFolder) != 0 {
		t.Fatalf("expected folder emptied, got %d docs", len(inFolder))
	}
	if _, err := svc.Get(context.Background(), "user-1", keep.ID); err != nil {
		t.Fatalf("unfiled document should survive purge: %v", err)
	}
}

func TestClaimGuestMovesOwnership(t *testing.T) {
	svc, repo := newTestService(t, &fakeQuota{})
	guest := "guest:11111111-1111-1111-1111-111111111111"

	doc, err := svc.Upload(context.Background(), guest, "free", "book.pdf", "", bytes.NewReader(samplePDF(t, 1)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	n, err := svc.ClaimGuest(context.Background(), guest, "user-1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 migrated, got %d", n)
	}
	if _, err := repo.GetByID(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("expected document owned by user-1: %v", err)
	}
}
