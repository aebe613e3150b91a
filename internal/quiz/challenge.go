// Package quiz holds the lesson and review exercises: sentence challenges,
// word selection with an offline fallback and fill-in-the-blank reviews.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/verbadiem/pkg/models"
)

// ChallengeOptions is the number of sentences in a challenge
const ChallengeOptions = 3

var (
	// ErrInvalidChallenge is returned for a malformed generated challenge
	ErrInvalidChallenge = errors.New("invalid sentence challenge")
	// ErrQuizSolved is returned when answering an already solved quiz
	ErrQuizSolved = errors.New("quiz already solved")
	// ErrOptionOutOfRange is returned for an answer index outside the options
	ErrOptionOutOfRange = errors.New("option out of range")
)

// NewRand returns a time seeded random source
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ValidateChallenge checks the generated shape: exactly three options and a
// correct index pointing at one of them
func ValidateChallenge(ch models.SentenceChallenge) error {
	if len(ch.Options) != ChallengeOptions {
		return fmt.Errorf("%w: expected %d options, got %d", ErrInvalidChallenge, ChallengeOptions, len(ch.Options))
	}
	if ch.CorrectIndex < 0 || ch.CorrectIndex >= len(ch.Options) {
		return fmt.Errorf("%w: correct index %d", ErrInvalidChallenge, ch.CorrectIndex)
	}
	return nil
}

// PrepareChallenge shuffles the options of a generated challenge and tracks
// where the correct sentence ends up. The input is not modified.
func PrepareChallenge(rnd *rand.Rand, ch models.SentenceChallenge) (models.SentenceChallenge, error) {
	if err := ValidateChallenge(ch); err != nil {
		return models.SentenceChallenge{}, err
	}

	options := append([]models.SentenceOption{}, ch.Options...)
	correctIndex := ch.CorrectIndex

	rnd.Shuffle(len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})

	return models.SentenceChallenge{Options: options, CorrectIndex: correctIndex}, nil
}

// Quiz tracks the answers given to one sentence challenge
type Quiz struct {
	Challenge models.SentenceChallenge
	attempts  int
	solved    bool
}

// NewQuiz starts a quiz on a prepared challenge
func NewQuiz(ch models.SentenceChallenge) *Quiz {
	return &Quiz{Challenge: ch}
}

// Answer records an attempt and reports whether it was correct
func (q *Quiz) Answer(index int) (bool, error) {
	if q.solved {
		return false, ErrQuizSolved
	}
	if index < 0 || index >= len(q.Challenge.Options) {
		return false, ErrOptionOutOfRange
	}

	q.attempts++
	if index == q.Challenge.CorrectIndex {
		q.solved = true
		return true, nil
	}
	return false, nil
}

// Solved reports whether the correct sentence was picked
func (q *Quiz) Solved() bool {
	return q.solved
}

// Attempts returns the number of answers given
func (q *Quiz) Attempts() int {
	return q.attempts
}

// IsFirstTry reports whether the quiz was solved with the first answer
func (q *Quiz) IsFirstTry() bool {
	return q.solved && q.attempts == 1
}
