package quiz

import (
	"math/rand"
	"testing"

	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlank(t *testing.T) {
	assert.Equal(t, "The beauty of the cherry blossoms is _____.",
		Blank("The beauty of the cherry blossoms is ephemeral.", "Ephemeral"))
	assert.Equal(t, "_____ (a.k.a. _____) matters.", Blank("Sonder (a.k.a. SONDER) matters.", "sonder"))
	assert.Equal(t, "No match here _____", Blank("No match here", "word"))
	assert.Equal(t, "1+1 is _____", Blank("1+1 is c++", "c++"))
}

func TestCheckAnswer(t *testing.T) {
	assert.True(t, CheckAnswer("  ephemeral ", "Ephemeral"))
	assert.False(t, CheckAnswer("ephemera", "Ephemeral"))
	assert.False(t, CheckAnswer("   ", ""))
}

func TestSelectReview(t *testing.T) {
	words := make([]models.DailyWord, 0, 8)
	for _, w := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		words = append(words, models.DailyWord{Word: w})
	}

	picked := SelectReview(rand.New(rand.NewSource(3)), words)
	assert.Len(t, picked, MaxReviewWords)
	assert.Equal(t, "a", words[0].Word, "input is not modified")

	seen := make(map[string]bool)
	for _, w := range picked {
		assert.False(t, seen[w.Word])
		seen[w.Word] = true
	}

	assert.Len(t, SelectReview(rand.New(rand.NewSource(3)), words[:2]), 2)
	assert.Empty(t, SelectReview(rand.New(rand.NewSource(3)), nil))
}

func TestReviewRound(t *testing.T) {
	round := NewReviewRound([]models.DailyWord{
		{Word: "Lethargy", Example: "A feeling of lethargy washed over him."},
		{Word: "Serendipity", Example: "It was pure serendipity."},
	})

	assert.Equal(t, "A feeling of _____ washed over him.", round.Prompt())

	_, err := round.Answer(" ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	correct, err := round.Answer("LETHARGY")
	require.NoError(t, err)
	assert.True(t, correct)

	_, err = round.Answer("again")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	require.True(t, round.Next())
	pos, total := round.Position()
	assert.Equal(t, 2, pos)
	assert.Equal(t, 2, total)

	correct, err = round.Answer("luck")
	require.NoError(t, err)
	assert.False(t, correct)

	assert.False(t, round.Next())
	assert.True(t, round.Done())
	assert.Equal(t, 1, round.Score())

	_, err = round.Answer("x")
	assert.ErrorIs(t, err, ErrRoundFinished)
}
