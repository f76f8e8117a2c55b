package services

import (
	"context"
	"errors"
	"log/slog"

	"walletwatch/internal/models"
)

// SubmissionService serves admin review operations and the read API. The
// write path for new reports belongs to the gatekeeper.
type SubmissionService struct {
	repo   SubmissionRepository
	logger *slog.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(repo SubmissionRepository, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, logger: logger}
}

const maxListLimit = 100

// List returns submissions matching the filter, for the admin dashboard.
func (s *SubmissionService) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	if filter.Status != "" && !models.ValidSubmissionStatus(filter.Status) {
		return nil, models.ErrBadRequest
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	submissions, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list submissions", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return submissions, nil
}

// ListApproved returns only approved submissions, for the public read API.
// The status filter is forced regardless of what the caller asked for.
func (s *SubmissionService) ListApproved(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	filter.Status = models.SubmissionStatusApproved
	return s.List(ctx, filter)
}

// Get returns one submission by ID.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get submission", slog.String("submission_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return submission, nil
}

// GetApproved returns one submission by ID for the public read API.
// Anything not yet approved reads as not found so the API never leaks
// pending or rejected reports.
func (s *SubmissionService) GetApproved(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.Status != models.SubmissionStatusApproved {
		return nil, models.ErrNotFound
	}
	return submission, nil
}

// Review applies an admin decision. Any known status is allowed so a
// rejected report can be reopened as pending.
func (s *SubmissionService) Review(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error) {
	if !models.ValidSubmissionStatus(status) {
		return nil, models.ErrBadRequest
	}

	submission, err := s.repo.UpdateReview(ctx, id, status, adminNotes)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to review submission", slog.String("submission_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("submission reviewed",
		slog.String("submission_id", id),
		slog.String("status", status))
	return submission, nil
}

// Delete removes a submission permanently.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete submission", slog.String("submission_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("submission deleted", slog.String("submission_id", id))
	return nil
}
