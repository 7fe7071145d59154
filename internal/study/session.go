package study

import (
	"errors"
	"math"
	"slices"

	"github.com/conorfennell/cardfold/internal/domain"
)

var (
	// ErrEmptyDeck indicates Start was called with no cards.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrInvalidTransition indicates a session operation was called in a
	// state that does not permit it. The session is left untouched.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// State is the lifecycle phase of a session.
type State int

const (
	NotStarted State = iota
	Active
	Completed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "not started"
	}
}

// Direction selects ungraded manual navigation.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Stats is the running tally for one session. Completed counts graded
// cards only; cards skipped past the end of the deck are neither
// correct nor incorrect, so Completed may be less than the deck length
// when the session ends.
type Stats struct {
	Correct   int
	Incorrect int
	Completed int
}

// Session walks an ordered deck of cards one at a time, tracking the
// current position, whether the answer is revealed, and the grading
// tally. The deck is a snapshot taken at Start: later edits to the
// folder it came from do not reach an in-progress session.
type Session struct {
	deck     []domain.Card
	position int
	revealed bool
	state    State
	stats    Stats
}

// New returns a session in the NotStarted state.
func New() *Session {
	return &Session{}
}

// Start begins a run over the given deck: position zero, question face
// up, stats zeroed. The deck must be non-empty. Starting an Active
// session is an invalid transition; use Restart after completion.
func (s *Session) Start(deck []domain.Card) error {
	if s.state == Active {
		return ErrInvalidTransition
	}
	if len(deck) == 0 {
		return ErrEmptyDeck
	}
	s.deck = slices.Clone(deck)
	s.position = 0
	s.revealed = false
	s.stats = Stats{}
	s.state = Active
	return nil
}

// Reveal exposes the current card's back face. Revealing an already
// revealed card is a no-op.
func (s *Session) Reveal() error {
	if s.state != Active {
		return ErrInvalidTransition
	}
	s.revealed = true
	return nil
}

// Hide is the inverse of Reveal and is only valid while the answer is
// showing.
func (s *Session) Hide() error {
	if s.state != Active || !s.revealed {
		return ErrInvalidTransition
	}
	s.revealed = false
	return nil
}

// Grade records a correctness judgment for the current card and
// advances. It is only valid once the answer has been revealed; grading
// an unrevealed card fails and leaves the tally unchanged. Grading the
// last card completes the session with the final stats retained.
func (s *Session) Grade(correct bool) error {
	if s.state != Active || !s.revealed {
		return ErrInvalidTransition
	}
	if correct {
		s.stats.Correct++
	} else {
		s.stats.Incorrect++
	}
	s.stats.Completed++

	if s.position+1 < len(s.deck) {
		s.position++
		s.revealed = false
	} else {
		s.state = Completed
	}
	return nil
}

// Advance moves through the deck without grading. Backward floors at
// position zero; forward past the last card ends the session without
// counting the skipped cards.
func (s *Session) Advance(dir Direction) error {
	if s.state != Active {
		return ErrInvalidTransition
	}
	switch dir {
	case Backward:
		if s.position > 0 {
			s.position--
		}
		s.revealed = false
	case Forward:
		if s.position+1 < len(s.deck) {
			s.position++
			s.revealed = false
		} else {
			s.state = Completed
		}
	}
	return nil
}

// Restart re-enters the same deck from a completed session, zeroing
// the stats.
func (s *Session) Restart() error {
	if s.state != Completed {
		return ErrInvalidTransition
	}
	s.state = NotStarted
	return s.Start(s.deck)
}

// State reports the lifecycle phase.
func (s *Session) State() State { return s.state }

// Revealed reports whether the current card's back face is showing.
func (s *Session) Revealed() bool { return s.state == Active && s.revealed }

// Position is the zero-based index of the current card.
func (s *Session) Position() int { return s.position }

// DeckLength is the number of cards in the deck snapshot.
func (s *Session) DeckLength() int { return len(s.deck) }

// CurrentCard returns the card at the current position. The second
// return is false unless the session is Active.
func (s *Session) CurrentCard() (domain.Card, bool) {
	if s.state != Active {
		return domain.Card{}, false
	}
	return s.deck[s.position], true
}

// Stats returns a copy of the running tally.
func (s *Session) Stats() Stats { return s.stats }

// Accuracy is the graded-correct percentage, rounded to the nearest
// integer, or zero before anything has been graded. It is a pure
// function of the stats snapshot.
func (s *Session) Accuracy() int {
	return AccuracyOf(s.stats)
}

// AccuracyOf computes the accuracy percentage for a stats snapshot.
func AccuracyOf(st Stats) int {
	if st.Completed == 0 {
		return 0
	}
	return int(math.Round(100 * float64(st.Correct) / float64(st.Completed)))
}
