package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/verbadiem/internal/quiz"
	"github.com/example/verbadiem/pkg/models"
)

// Generator is the content collaborator of the lesson screens
type Generator interface {
	DailyWord(ctx context.Context, target, native models.Language, excluded []string) (models.DailyWord, error)
	SentenceChallenge(ctx context.Context, word models.DailyWord, target, native models.Language) (models.SentenceChallenge, error)
	RelatedWord(ctx context.Context, word models.DailyWord, target, native models.Language) (models.RelatedWord, error)
	MnemonicImage(ctx context.Context, word models.DailyWord, native models.Language) (string, error)
	PronunciationAudio(ctx context.Context, word string, target models.Language) (string, error)
	NewPractice(word models.DailyWord, target, native models.Language) Practice
}

var stringSchema = &Schema{Type: "STRING"}

var dailyWordSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"word":               stringSchema,
		"pronunciation":      stringSchema,
		"translation":        stringSchema,
		"etymology":          stringSchema,
		"example":            stringSchema,
		"exampleTranslation": stringSchema,
	},
	Required: []string{"word", "pronunciation", "translation", "etymology", "example", "exampleTranslation"},
}

var sentenceChallengeSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"options": {
			Type: "ARRAY",
			Items: &Schema{
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"sentence":    stringSchema,
					"translation": stringSchema,
				},
				Required: []string{"sentence", "translation"},
			},
		},
		"correctIndex": {Type: "INTEGER"},
	},
	Required: []string{"options", "correctIndex"},
}

var relatedWordSchema = &Schema{
	Type: "OBJECT",
	Properties: map[string]*Schema{
		"word":        stringSchema,
		"translation": stringSchema,
		"reason":      stringSchema,
	},
	Required: []string{"word", "translation", "reason"},
}

// DailyWord asks for a new beginner word with a curious origin
func (c *Client) DailyWord(ctx context.Context, target, native models.Language, excluded []string) (models.DailyWord, error) {
	targetName, nativeName := target.EnglishName(), native.EnglishName()

	prompt := fmt.Sprintf(`Provide one and only one word in %s that has a very curious origin, an interesting history, or a funny story behind it. The word should be suitable for a beginner.
- The word itself and the example sentence must be in %s.
- All other fields (translation, pronunciation, etymology, exampleTranslation) MUST be in %s. This is very important for the user to understand.`,
		targetName, targetName, nativeName)
	if len(excluded) > 0 {
		prompt += fmt.Sprintf("\n- CRITICAL: Do not select any of the following words, as the user has already learned them: %s.", strings.Join(excluded, ", "))
	}

	var word models.DailyWord
	if err := c.generateJSON(ctx, prompt, dailyWordSchema, 0.9, &word); err != nil {
		return models.DailyWord{}, fmt.Errorf("failed to get daily word: %w", err)
	}
	if strings.TrimSpace(word.Word) == "" {
		return models.DailyWord{}, fmt.Errorf("failed to get daily word: %w", ErrEmptyResponse)
	}
	return word, nil
}

// SentenceChallenge asks for three sentences of which exactly one uses the
// word correctly
func (c *Client) SentenceChallenge(ctx context.Context, word models.DailyWord, target, native models.Language) (models.SentenceChallenge, error) {
	targetName, nativeName := target.EnglishName(), native.EnglishName()

	prompt := fmt.Sprintf(`The user is a beginner learning the word "%s" (which means "%s") in %s. Create a multiple-choice question to test their understanding.
All sentences must be very simple and basic, suitable for a beginner.
Provide exactly three sentence options in %s.
1. One sentence must use the word "%s" correctly and naturally.
2. The other two sentences must be plausible but use the word "%s" incorrectly. The incorrect usage could be subtle, like using it in the wrong context, with the wrong preposition, or with a slightly wrong meaning. The sentences themselves should be grammatically correct.
3. Provide the translation for all three sentences in %s.
4. Tell me the index (0, 1, or 2) of the correct sentence.`,
		word.Word, word.Translation, targetName, targetName, word.Word, word.Word, nativeName)

	var challenge models.SentenceChallenge
	if err := c.generateJSON(ctx, prompt, sentenceChallengeSchema, 0.7, &challenge); err != nil {
		return models.SentenceChallenge{}, fmt.Errorf("failed to get sentence challenge: %w", err)
	}
	if err := quiz.ValidateChallenge(challenge); err != nil {
		return models.SentenceChallenge{}, fmt.Errorf("failed to get sentence challenge: %w", err)
	}
	return challenge, nil
}

// RelatedWord asks for a word connected to the one just learned
func (c *Client) RelatedWord(ctx context.Context, word models.DailyWord, target, native models.Language) (models.RelatedWord, error) {
	targetName, nativeName := target.EnglishName(), native.EnglishName()

	prompt := fmt.Sprintf(`The user just learned the %s word "%s" (which means "%s" in %s).
Find one other interesting, related %s word that a beginner could learn next.
The relationship could be etymological (sharing a root), semantic (a synonym, antonym, or conceptually linked), or otherwise interesting.
Provide the translation of this new word into %s.
Also provide a brief, engaging explanation in %s about the connection between the two words.`,
		targetName, word.Word, word.Translation, nativeName, targetName, nativeName, nativeName)

	var related models.RelatedWord
	if err := c.generateJSON(ctx, prompt, relatedWordSchema, 0.7, &related); err != nil {
		return models.RelatedWord{}, fmt.Errorf("failed to get related word: %w", err)
	}
	return related, nil
}
