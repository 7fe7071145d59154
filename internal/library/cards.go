package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conorfennell/cardfold/internal/domain"
	"github.com/conorfennell/cardfold/internal/storage"
)

// CardService handles card operations scoped to folders.
type CardService struct {
	db     *storage.DB
	logger *slog.Logger
}

// NewCardService creates a new card service.
func NewCardService(db *storage.DB, logger *slog.Logger) *CardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardService{db: db, logger: logger}
}

type createCardRequest struct {
	Front string `validate:"required"`
	Back  string `validate:"required"`
}

// ListCards returns the folder's cards in insertion order. The folder
// id is not checked against live folders: orphaned cards are tolerated
// and listed like any others.
func (s *CardService) ListCards(ctx context.Context, folderID int64) ([]domain.Card, error) {
	return s.db.GetCardsByFolderID(ctx, folderID)
}

// CreateCard persists a new card and returns it with its assigned id.
// Front and back must be non-empty after trimming, else ErrValidation.
// A zero folderID creates an unfiled card.
func (s *CardService) CreateCard(ctx context.Context, folderID int64, front, back string) (*domain.Card, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if err := validate.Struct(createCardRequest{Front: front, Back: back}); err != nil {
		return nil, fmt.Errorf("%w: card front and back must not be empty", ErrValidation)
	}

	card := domain.Card{FolderID: folderID, Front: front, Back: back}
	id, err := s.db.InsertCard(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}
	card.ID = id
	s.logger.Info("card created", "id", id, "folder_id", folderID)
	return &card, nil
}

// DeleteCard removes a card. Absent ids are a no-op.
func (s *CardService) DeleteCard(ctx context.Context, id int64) error {
	if err := s.db.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}
	s.logger.Info("card deleted", "id", id)
	return nil
}
