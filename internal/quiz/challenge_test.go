package quiz

import (
	"math/rand"
	"testing"

	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChallenge() models.SentenceChallenge {
	return models.SentenceChallenge{
		Options: []models.SentenceOption{
			{Sentence: "Fame is ephemeral.", Translation: "A fama é efêmera."},
			{Sentence: "The rock is ephemeral.", Translation: "A rocha é efêmera."},
			{Sentence: "Ephemeral the dog ran.", Translation: "Efêmero o cão correu."},
		},
		CorrectIndex: 0,
	}
}

func TestPrepareChallengeTracksCorrectOption(t *testing.T) {
	original := sampleChallenge()
	for seed := int64(0); seed < 50; seed++ {
		ch, err := PrepareChallenge(rand.New(rand.NewSource(seed)), original)
		require.NoError(t, err)

		require.Len(t, ch.Options, 3)
		assert.Equal(t, original.Options[0], ch.Options[ch.CorrectIndex])
		assert.ElementsMatch(t, original.Options, ch.Options)
	}
	assert.Equal(t, sampleChallenge(), original)
}

func TestPrepareChallengeRejectsMalformed(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	short := sampleChallenge()
	short.Options = short.Options[:2]
	_, err := PrepareChallenge(rnd, short)
	assert.ErrorIs(t, err, ErrInvalidChallenge)

	badIndex := sampleChallenge()
	badIndex.CorrectIndex = 3
	_, err = PrepareChallenge(rnd, badIndex)
	assert.ErrorIs(t, err, ErrInvalidChallenge)
}

func TestQuizFirstTry(t *testing.T) {
	q := NewQuiz(sampleChallenge())

	correct, err := q.Answer(0)
	require.NoError(t, err)
	assert.True(t, correct)
	assert.True(t, q.IsFirstTry())

	_, err = q.Answer(0)
	assert.ErrorIs(t, err, ErrQuizSolved)
}

func TestQuizRetry(t *testing.T) {
	q := NewQuiz(sampleChallenge())

	correct, err := q.Answer(2)
	require.NoError(t, err)
	assert.False(t, correct)
	assert.False(t, q.Solved())

	correct, err = q.Answer(0)
	require.NoError(t, err)
	assert.True(t, correct)
	assert.False(t, q.IsFirstTry())
	assert.Equal(t, 2, q.Attempts())

	_, err = NewQuiz(sampleChallenge()).Answer(7)
	assert.ErrorIs(t, err, ErrOptionOutOfRange)
}
