package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/cardfold/internal/domain"
	"github.com/conorfennell/cardfold/internal/storage"
)

// ReviewService persists grading events emitted by study sessions.
// Logs are append-only history; nothing schedules reviews from them.
type ReviewService struct {
	db     *storage.DB
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(db *storage.DB, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{db: db, logger: logger}
}

// Log appends one grading event for a card, stamped with the current time.
func (s *ReviewService) Log(ctx context.Context, cardID int64, grade domain.Grade) error {
	_, err := s.db.InsertReviewLog(ctx, domain.ReviewLog{
		CardID: cardID,
		Grade:  grade,
		At:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("logging review: %w", err)
	}
	return nil
}

// History returns all grading events for a card, oldest first.
func (s *ReviewService) History(ctx context.Context, cardID int64) ([]domain.ReviewLog, error) {
	return s.db.GetReviewLogsByCard(ctx, cardID)
}
