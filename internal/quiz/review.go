package quiz

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"

	"github.com/example/verbadiem/pkg/models"
)

// MaxReviewWords caps the words of one review session
const MaxReviewWords = 5

// BlankMarker replaces the reviewed word in its example sentence
const BlankMarker = "_____"

var (
	// ErrEmptyAnswer is returned for a blank review answer
	ErrEmptyAnswer = errors.New("answer cannot be empty")
	// ErrRoundFinished is returned when answering past the last word
	ErrRoundFinished = errors.New("review round finished")
	// ErrAlreadyAnswered is returned when the current word was answered
	ErrAlreadyAnswered = errors.New("word already answered")
)

// SelectReview returns a uniformly shuffled selection of at most
// MaxReviewWords candidates. The input is not modified.
func SelectReview(rnd *rand.Rand, candidates []models.DailyWord) []models.DailyWord {
	words := append([]models.DailyWord{}, candidates...)
	rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
	if len(words) > MaxReviewWords {
		words = words[:MaxReviewWords]
	}
	return words
}

// Blank hides every case-insensitive occurrence of word in sentence. When the
// word does not occur the marker is appended.
func Blank(sentence, word string) string {
	if word == "" {
		return sentence
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	if !re.MatchString(sentence) {
		return sentence + " " + BlankMarker
	}
	return re.ReplaceAllLiteralString(sentence, BlankMarker)
}

// CheckAnswer compares a typed answer with the word, ignoring case and
// surrounding spaces
func CheckAnswer(answer, word string) bool {
	answer = strings.TrimSpace(answer)
	return answer != "" && strings.ToLower(answer) == strings.ToLower(word)
}

// ReviewRound walks through the words of a review session
type ReviewRound struct {
	words    []models.DailyWord
	index    int
	answered bool
	correct  int
}

// NewReviewRound starts a round over words
func NewReviewRound(words []models.DailyWord) *ReviewRound {
	return &ReviewRound{words: append([]models.DailyWord{}, words...)}
}

// Current returns the word being reviewed
func (r *ReviewRound) Current() (models.DailyWord, bool) {
	if r.index >= len(r.words) {
		return models.DailyWord{}, false
	}
	return r.words[r.index], true
}

// Prompt returns the example sentence of the current word with the word blanked
func (r *ReviewRound) Prompt() string {
	w, ok := r.Current()
	if !ok {
		return ""
	}
	return Blank(w.Example, w.Word)
}

// Answer checks the answer to the current word
func (r *ReviewRound) Answer(answer string) (bool, error) {
	w, ok := r.Current()
	if !ok {
		return false, ErrRoundFinished
	}
	if r.answered {
		return false, ErrAlreadyAnswered
	}
	if strings.TrimSpace(answer) == "" {
		return false, ErrEmptyAnswer
	}

	r.answered = true
	correct := CheckAnswer(answer, w.Word)
	if correct {
		r.correct++
	}
	return correct, nil
}

// Next moves to the following word and reports whether one exists
func (r *ReviewRound) Next() bool {
	if r.index < len(r.words) {
		r.index++
	}
	r.answered = false
	return r.index < len(r.words)
}

// Done reports whether every word was reviewed
func (r *ReviewRound) Done() bool {
	return r.index >= len(r.words)
}

// Position returns the 1-based index of the current word and the total
func (r *ReviewRound) Position() (int, int) {
	return r.index + 1, len(r.words)
}

// Score returns the number of correct answers
func (r *ReviewRound) Score() int {
	return r.correct
}

// Len returns the number of words in the round
func (r *ReviewRound) Len() int {
	return len(r.words)
}
