package domain

import "time"

// Folder is a named grouping of cards (a study set).
// ID is zero until the folder has been persisted; once assigned it is
// immutable and unique within the store.
type Folder struct {
	ID   int64
	Name string
}

// Card is a single front/back flashcard. FolderID is zero for unfiled
// cards. A non-zero FolderID is not guaranteed to reference a live
// folder: deleting a folder orphans its cards rather than cascading.
type Card struct {
	ID       int64
	FolderID int64
	Front    string
	Back     string
}

// Grade is a self-reported correctness judgment for one card review.
type Grade int

const (
	GradeIncorrect Grade = iota
	GradeCorrect
)

func (g Grade) String() string {
	if g == GradeCorrect {
		return "correct"
	}
	return "incorrect"
}

// ReviewLog records a single grading event emitted by a study session.
type ReviewLog struct {
	ID     int64
	CardID int64
	Grade  Grade
	At     time.Time
}
