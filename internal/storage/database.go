package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/conorfennell/cardfold/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: all mutations are sequenced through a single
	// controller, and a :memory: dsn gives every pooled connection its
	// own empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// InsertFolder persists a new folder and returns its assigned id.
func (db *DB) InsertFolder(ctx context.Context, name string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO folders (name) VALUES (?)
	`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert folder %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for folder %q: %w", name, err)
	}
	return id, nil
}

// GetFolder retrieves a folder by id. Returns nil when it doesn't exist.
func (db *DB) GetFolder(ctx context.Context, id int64) (*domain.Folder, error) {
	var f domain.Folder
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name FROM folders WHERE id = ?
	`, id)
	if err := row.Scan(&f.ID, &f.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get folder %d: %w", id, err)
	}
	return &f, nil
}

// GetAllFolders retrieves all folders in insertion order.
func (db *DB) GetAllFolders(ctx context.Context) ([]domain.Folder, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name FROM folders ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		var f domain.Folder
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// DeleteFolder removes a folder record. Deleting an absent id is a
// no-op, matching idempotent UI delete flows. Cards in the folder are
// NOT deleted.
func (db *DB) DeleteFolder(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, `
		DELETE FROM folders WHERE id = ?
	`, id); err != nil {
		return fmt.Errorf("failed to delete folder %d: %w", id, err)
	}
	return nil
}

// InsertCard persists a new card and returns its assigned id.
// A zero folderID is stored as NULL (an unfiled card).
func (db *DB) InsertCard(ctx context.Context, card domain.Card) (int64, error) {
	var folderID any
	if card.FolderID != 0 {
		folderID = card.FolderID
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (folder_id, front, back) VALUES (?, ?, ?)
	`, folderID, card.Front, card.Back)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for card: %w", err)
	}
	return id, nil
}

// GetCard retrieves a card by id. Returns nil when it doesn't exist.
func (db *DB) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	var (
		c        domain.Card
		folderID sql.NullInt64
	)
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, folder_id, front, back FROM cards WHERE id = ?
	`, id)
	if err := row.Scan(&c.ID, &folderID, &c.Front, &c.Back); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	c.FolderID = folderID.Int64
	return &c, nil
}

// GetCardsByFolderID retrieves all cards in a folder, in insertion order.
func (db *DB) GetCardsByFolderID(ctx context.Context, folderID int64) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, folder_id, front, back FROM cards WHERE folder_id = ? ORDER BY id
	`, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for folder %d: %w", folderID, err)
	}
	defer rows.Close()
	return scanCards(rows)
}

// GetAllCards retrieves every card in insertion order, including
// unfiled and orphaned ones.
func (db *DB) GetAllCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, folder_id, front, back FROM cards ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all cards: %w", err)
	}
	defer rows.Close()
	return scanCards(rows)
}

func scanCards(rows *sql.Rows) ([]domain.Card, error) {
	var cards []domain.Card
	for rows.Next() {
		var (
			c        domain.Card
			folderID sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &folderID, &c.Front, &c.Back); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		c.FolderID = folderID.Int64
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CountCardsByFolder returns the number of cards currently filed under
// the folder. The count is always derived, never cached.
func (db *DB) CountCardsByFolder(ctx context.Context, folderID int64) (int, error) {
	var n int
	row := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cards WHERE folder_id = ?
	`, folderID)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards for folder %d: %w", folderID, err)
	}
	return n, nil
}

// DeleteCard removes a card record. Deleting an absent id is a no-op.
func (db *DB) DeleteCard(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, `
		DELETE FROM cards WHERE id = ?
	`, id); err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return nil
}

// InsertReviewLog appends one grading event.
func (db *DB) InsertReviewLog(ctx context.Context, log domain.ReviewLog) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO review_logs (card_id, grade, at) VALUES (?, ?, ?)
	`, log.CardID, log.Grade.String(), log.At)
	if err != nil {
		return 0, fmt.Errorf("failed to insert review log for card %d: %w", log.CardID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for review log: %w", err)
	}
	return id, nil
}

// GetReviewLogsByCard retrieves all grading events for a card, oldest first.
func (db *DB) GetReviewLogsByCard(ctx context.Context, cardID int64) ([]domain.ReviewLog, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, card_id, grade, at FROM review_logs WHERE card_id = ? ORDER BY id
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review logs for card %d: %w", cardID, err)
	}
	defer rows.Close()

	var logs []domain.ReviewLog
	for rows.Next() {
		var (
			l     domain.ReviewLog
			grade string
		)
		if err := rows.Scan(&l.ID, &l.CardID, &grade, &l.At); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		if grade == "correct" {
			l.Grade = domain.GradeCorrect
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Source is a remembered card source: a local directory or a git URL,
// imported into a target folder.
type Source struct {
	ID           int64
	Path         string
	FolderID     int64
	LastImported sql.NullTime
}

// InsertSource remembers a new source and returns its assigned id.
func (db *DB) InsertSource(ctx context.Context, path string, folderID int64) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO sources (path, folder_id) VALUES (?, ?)
	`, path, folderID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. Returns nil when it
// doesn't exist.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (*Source, error) {
	var s Source
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, path, folder_id, last_imported FROM sources WHERE path = ?
	`, path)
	if err := row.Scan(&s.ID, &s.Path, &s.FolderID, &s.LastImported); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves all remembered sources.
func (db *DB) GetAllSources(ctx context.Context) ([]Source, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, path, folder_id, last_imported FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.FolderID, &s.LastImported); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// UpdateSourceLastImported stamps the source with the current time.
func (db *DB) UpdateSourceLastImported(ctx context.Context, sourceID int64) error {
	if _, err := db.conn.ExecContext(ctx, `
		UPDATE sources SET last_imported = ? WHERE id = ?
	`, time.Now(), sourceID); err != nil {
		return fmt.Errorf("failed to update last imported for source ID %d: %w", sourceID, err)
	}
	return nil
}

// DeleteSource forgets a remembered source. No-op when absent. Cards
// already imported from it are kept.
func (db *DB) DeleteSource(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, `
		DELETE FROM sources WHERE id = ?
	`, id); err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	return nil
}
