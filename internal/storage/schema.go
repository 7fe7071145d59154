package storage

const schema = `
-- Folders group cards into study sets. AUTOINCREMENT keeps ids fresh
-- and never reused, even after deletes.
CREATE TABLE IF NOT EXISTS folders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);

-- Cards carry the front/back pair. folder_id is intentionally NOT a
-- foreign key: deleting a folder orphans its cards, and orphans must
-- stay readable.
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    folder_id INTEGER,
    front TEXT NOT NULL,
    back TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_folder ON cards(folder_id);

-- One row per grading event emitted by a study session.
CREATE TABLE IF NOT EXISTS review_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id INTEGER NOT NULL,
    grade TEXT NOT NULL CHECK(grade IN ('correct', 'incorrect')),
    at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_review_logs_card ON review_logs(card_id);

-- Remembered card sources: a local directory or a git URL, imported
-- into a target folder.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    folder_id INTEGER NOT NULL,
    last_imported DATETIME
);
`
