package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conorfennell/cardfold/internal/domain"
	"github.com/conorfennell/cardfold/internal/storage"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FolderService handles folder operations. It is a stateless façade
// over the store; folder records are owned by the store alone.
type FolderService struct {
	db     *storage.DB
	logger *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(db *storage.DB, logger *slog.Logger) *FolderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FolderService{db: db, logger: logger}
}

type createFolderRequest struct {
	Name string `validate:"required"`
}

// ListFolders returns all folders in insertion order.
func (s *FolderService) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	return s.db.GetAllFolders(ctx)
}

// CreateFolder persists a new folder and returns it with its assigned
// id. An empty or whitespace-only name fails with ErrValidation.
func (s *FolderService) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validate.Struct(createFolderRequest{Name: name}); err != nil {
		return nil, fmt.Errorf("%w: folder name must not be empty", ErrValidation)
	}

	id, err := s.db.InsertFolder(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}
	s.logger.Info("folder created", "id", id, "name", name)
	return &domain.Folder{ID: id, Name: name}, nil
}

// DeleteFolder removes a folder. Absent ids are a no-op. Cards filed
// under the folder are orphaned, not deleted; they remain queryable by
// their old folder id.
func (s *FolderService) DeleteFolder(ctx context.Context, id int64) error {
	if err := s.db.DeleteFolder(ctx, id); err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}
	s.logger.Info("folder deleted", "id", id)
	return nil
}

// CountCards returns the number of cards filed under the folder,
// derived by query so it can never go stale.
func (s *FolderService) CountCards(ctx context.Context, folderID int64) (int, error) {
	return s.db.CountCardsByFolder(ctx, folderID)
}
