package usage

import "context"

type store interface {
	EnsurePeriod(ctx context.Context, userID, plan string) (Usage, error)
	Reserve(ctx context.Context, userID, plan string, docs int, sizeBytes int64) (Usage, error)
	Release(ctx context.Context, userID string, docs int, sizeBytes int64) (Usage, error)
	ApplyPlan(ctx context.Context, userID, plan string) (Usage, error)
	Reset(ctx context.Context, userID string) (Usage, error)
}

// Service manages usage data via an underlying store.
type Service struct {
	store store
}

// NewService constructs a Service with in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// EnsurePeriod resets the document counter if the period has expired.
func (s *Service) EnsurePeriod(ctx context.Context, userID, plan string) (Usage, error) {
	return s.store.EnsurePeriod(ctx, userID, plan)
}

// ReserveDocument consumes one document slot plus storage bytes, failing
// with ErrQuotaExceeded if the plan cannot absorb it.
func (s *Service) ReserveDocument(ctx context.Context, userID, plan string, sizeBytes int64) error {
	_, err := s.store.Reserve(ctx, userID, plan, 1, sizeBytes)
	return err
}

// ReleaseDocument returns one document slot and its storage bytes after a
// delete or a failed upload.
func (s *Service) ReleaseDocument(ctx context.Context, userID string, sizeBytes int64) error {
	_, err := s.store.Release(ctx, userID, 1, sizeBytes)
	return err
}

// ApplyPlan rewrites the row's plan and limits after a billing transition
// without touching consumption.
func (s *Service) ApplyPlan(ctx context.Context, userID, plan string) (Usage, error) {
	return s.store.ApplyPlan(ctx, userID, plan)
}

// Reset zeroes the document counter and restarts the window.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Reset(ctx, userID)
}
