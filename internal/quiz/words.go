package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/example/verbadiem/pkg/models"
)

// ErrNoWordAvailable is returned when neither the generator nor the offline
// deck can provide a new word
var ErrNoWordAvailable = errors.New("no new word available")

// WordSource produces a new word for the learner
type WordSource interface {
	DailyWord(ctx context.Context, target, native models.Language, excluded []string) (models.DailyWord, error)
}

// WordResult is the word picked for a lesson
type WordResult struct {
	Word models.DailyWord
	// Offline is set when the word came from the offline deck
	Offline bool
	// SourceErr is the generator failure that caused the fallback
	SourceErr error
}

// NextWord asks the source for a word the learner has not seen and falls back
// to the offline deck when the source fails. A cancelled context is returned
// as is, without consulting the deck.
func NextWord(ctx context.Context, src WordSource, deck *Deck, rnd *rand.Rand,
	target, native models.Language, learned map[string]models.DailyWord) (WordResult, error) {
	excluded := make([]string, 0, len(learned))
	for word := range learned {
		excluded = append(excluded, word)
	}

	var srcErr error
	if src != nil {
		word, err := src.DailyWord(ctx, target, native, excluded)
		if err == nil {
			return WordResult{Word: word}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return WordResult{}, ctxErr
		}
		srcErr = err
	}

	if deck != nil {
		if word, ok := deck.Pick(rnd, learned); ok {
			return WordResult{Word: word, Offline: true, SourceErr: srcErr}, nil
		}
	}

	if srcErr != nil {
		return WordResult{}, fmt.Errorf("%w: %v", ErrNoWordAvailable, srcErr)
	}
	return WordResult{}, ErrNoWordAvailable
}
