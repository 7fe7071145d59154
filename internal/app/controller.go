package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/conorfennell/cardfold/internal/domain"
	"github.com/conorfennell/cardfold/internal/library"
	"github.com/conorfennell/cardfold/internal/study"
)

// ErrNoSession indicates a study operation was requested while no
// session is active.
var ErrNoSession = errors.New("no study session in progress")

// Screen is the UI surface the controller currently points at.
type Screen string

const (
	ScreenFolders Screen = "folders"
	ScreenCards   Screen = "cards"
	ScreenStudy   Screen = "study"
)

// Controller is the single source of truth the presentation layer
// reads from. It owns the current screen, the selected folder, cached
// folder and card lists, and the active study session. All mutations
// funnel through it sequentially; after each one it reloads the
// affected cache and notifies subscribers, so the UI never patches
// state incrementally or keeps parallel truth.
type Controller struct {
	folders *library.FolderService
	cards   *library.CardService
	reviews *library.ReviewService
	logger  *slog.Logger

	mu sync.Mutex

	screen          Screen
	currentFolderID int64
	folderList      []domain.Folder
	cardList        []domain.Card
	session         *study.Session

	listeners []func()
}

// New creates a controller pointed at the folders screen.
func New(folders *library.FolderService, cards *library.CardService, reviews *library.ReviewService, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		folders: folders,
		cards:   cards,
		reviews: reviews,
		logger:  logger,
		screen:  ScreenFolders,
	}
}

// Subscribe registers fn to be called after every state change. The
// callback must re-read controller state through the accessors rather
// than carry payloads; that keeps one truth.
func (c *Controller) Subscribe(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// RefreshFolders reloads the cached folder list from the store.
func (c *Controller) RefreshFolders(ctx context.Context) error {
	list, err := c.folders.ListFolders(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.folderList = list
	c.mu.Unlock()
	c.notify()
	return nil
}

// SelectFolder makes the folder current, loads its cards, and switches
// to the cards screen.
func (c *Controller) SelectFolder(ctx context.Context, folderID int64) error {
	c.mu.Lock()
	c.currentFolderID = folderID
	c.screen = ScreenCards
	c.mu.Unlock()

	if err := c.reloadCards(ctx, folderID); err != nil {
		return err
	}
	c.notify()
	return nil
}

// reloadCards fetches the folder's cards and commits them to the cache
// only if the folder is still current when the load completes. A rapid
// folder switch supersedes the stale load instead of letting it
// overwrite newer state.
func (c *Controller) reloadCards(ctx context.Context, folderID int64) error {
	list, err := c.cards.ListCards(ctx, folderID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentFolderID != folderID {
		c.logger.Debug("discarding superseded card load", "folder_id", folderID, "current", c.currentFolderID)
		return nil
	}
	c.cardList = list
	return nil
}

// BackToFolders leaves the current folder and returns to the folder list.
func (c *Controller) BackToFolders() {
	c.mu.Lock()
	c.screen = ScreenFolders
	c.currentFolderID = 0
	c.cardList = nil
	c.session = nil
	c.mu.Unlock()
	c.notify()
}

// CreateFolder adds a folder and reloads the folder list.
func (c *Controller) CreateFolder(ctx context.Context, name string) (*domain.Folder, error) {
	folder, err := c.folders.CreateFolder(ctx, name)
	if err != nil {
		return nil, err
	}
	return folder, c.RefreshFolders(ctx)
}

// DeleteFolder removes a folder and reloads the folder list. Its cards
// are orphaned, not deleted.
func (c *Controller) DeleteFolder(ctx context.Context, folderID int64) error {
	if err := c.folders.DeleteFolder(ctx, folderID); err != nil {
		return err
	}
	return c.RefreshFolders(ctx)
}

// CountCards reports the derived card count for a folder.
func (c *Controller) CountCards(ctx context.Context, folderID int64) (int, error) {
	return c.folders.CountCards(ctx, folderID)
}

// CreateCard adds a card to the current folder and reloads the card list.
func (c *Controller) CreateCard(ctx context.Context, front, back string) (*domain.Card, error) {
	c.mu.Lock()
	folderID := c.currentFolderID
	c.mu.Unlock()

	card, err := c.cards.CreateCard(ctx, folderID, front, back)
	if err != nil {
		return nil, err
	}
	if err := c.reloadCards(ctx, folderID); err != nil {
		return nil, err
	}
	c.notify()
	return card, nil
}

// DeleteCard removes a card and reloads the current folder's card list.
func (c *Controller) DeleteCard(ctx context.Context, cardID int64) error {
	c.mu.Lock()
	folderID := c.currentFolderID
	c.mu.Unlock()

	if err := c.cards.DeleteCard(ctx, cardID); err != nil {
		return err
	}
	if err := c.reloadCards(ctx, folderID); err != nil {
		return err
	}
	c.notify()
	return nil
}

// StartStudy snapshots the currently loaded card list into a fresh
// session and switches to the study screen.
func (c *Controller) StartStudy() error {
	c.mu.Lock()
	deck := c.cardList
	session := study.New()
	if err := session.Start(deck); err != nil {
		c.mu.Unlock()
		return err
	}
	c.session = session
	c.screen = ScreenStudy
	c.mu.Unlock()
	c.notify()
	return nil
}

// ExitStudy discards the session and returns to the cards screen.
func (c *Controller) ExitStudy() {
	c.mu.Lock()
	c.session = nil
	c.screen = ScreenCards
	c.mu.Unlock()
	c.notify()
}

// Reveal exposes the current card's answer.
func (c *Controller) Reveal() error {
	return c.withSession(func(s *study.Session) error { return s.Reveal() })
}

// Hide flips the current card back to its question face.
func (c *Controller) Hide() error {
	return c.withSession(func(s *study.Session) error { return s.Hide() })
}

// Advance navigates the deck without grading.
func (c *Controller) Advance(dir study.Direction) error {
	return c.withSession(func(s *study.Session) error { return s.Advance(dir) })
}

// RestartStudy re-runs the completed session's deck with zeroed stats.
func (c *Controller) RestartStudy() error {
	return c.withSession(func(s *study.Session) error { return s.Restart() })
}

// Grade records a correctness judgment for the current card, persists
// it as a review log, and advances the session. A failed log write is
// reported but does not roll the session back; history is best effort.
func (c *Controller) Grade(ctx context.Context, correct bool) error {
	var cardID int64
	err := c.withSession(func(s *study.Session) error {
		card, ok := s.CurrentCard()
		if !ok {
			return study.ErrInvalidTransition
		}
		if err := s.Grade(correct); err != nil {
			return err
		}
		cardID = card.ID
		return nil
	})
	if err != nil {
		return err
	}

	grade := domain.GradeIncorrect
	if correct {
		grade = domain.GradeCorrect
	}
	if err := c.reviews.Log(ctx, cardID, grade); err != nil {
		c.logger.Warn("failed to persist review log", "card_id", cardID, "error", err)
	}
	return nil
}

func (c *Controller) withSession(fn func(*study.Session) error) error {
	c.mu.Lock()
	session := c.session
	if session == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	err := fn(session)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify()
	return nil
}

// Screen reports the current screen.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// CurrentFolderID reports the selected folder, zero when none.
func (c *Controller) CurrentFolderID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentFolderID
}

// Folders returns the cached folder list.
func (c *Controller) Folders() []domain.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.folderList
}

// Cards returns the cached card list for the current folder.
func (c *Controller) Cards() []domain.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cardList
}

// StudyView is a read snapshot of the active session for the
// presentation layer, which only ever reads derived state.
type StudyView struct {
	State      study.State
	Card       domain.Card
	HasCard    bool
	Revealed   bool
	Position   int
	DeckLength int
	Stats      study.Stats
	Accuracy   int
}

// Study returns a snapshot of the active session, or false when no
// session is in progress.
func (c *Controller) Study() (StudyView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return StudyView{}, false
	}
	s := c.session
	view := StudyView{
		State:      s.State(),
		Revealed:   s.Revealed(),
		Position:   s.Position(),
		DeckLength: s.DeckLength(),
		Stats:      s.Stats(),
		Accuracy:   s.Accuracy(),
	}
	view.Card, view.HasCard = s.CurrentCard()
	return view, true
}
