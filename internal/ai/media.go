package ai

import (
	"context"
	"fmt"

	"github.com/example/verbadiem/pkg/models"
)

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount   int           `json:"sampleCount"`
	AspectRatio   string        `json:"aspectRatio"`
	OutputOptions outputOptions `json:"outputOptions"`
}

type outputOptions struct {
	MimeType string `json:"mimeType"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// MnemonicImage generates a text-free illustration of the word's meaning and
// returns it as base64 encoded JPEG
func (c *Client) MnemonicImage(ctx context.Context, word models.DailyWord, native models.Language) (string, error) {
	prompt := fmt.Sprintf(`Create an artistic, memorable, and slightly surreal image that serves as a mnemonic for a language learner.
The word is "%s" (which means "%s" in %s).
The etymology/origin is: "%s".
The image should visually represent the CORE CONCEPT of the word, inspired by its meaning and etymology.
Style: Whimsical, storybook illustration style. Evocative, beautiful, high contrast, vivid colors. Digital painting.
IMPORTANT: DO NOT include any text, letters, or words in the image. The image must be purely visual.`,
		word.Word, word.Translation, native.EnglishName(), word.Etymology)

	request := predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount:   1,
			AspectRatio:   "1:1",
			OutputOptions: outputOptions{MimeType: "image/jpeg"},
		},
	}

	var response predictResponse
	if err := c.post(ctx, c.imageModel+":predict", request, &response); err != nil {
		return "", fmt.Errorf("failed to get mnemonic image: %w", err)
	}
	if len(response.Predictions) == 0 || response.Predictions[0].BytesBase64Encoded == "" {
		return "", fmt.Errorf("failed to get mnemonic image: %w", ErrEmptyResponse)
	}
	return response.Predictions[0].BytesBase64Encoded, nil
}

// PronunciationAudio returns base64 encoded 16-bit mono PCM at 24 kHz
func (c *Client) PronunciationAudio(ctx context.Context, word string, target models.Language) (string, error) {
	prompt := fmt.Sprintf("Pronounce the %s word: %s", target.EnglishName(), word)

	content, err := c.generate(ctx, c.ttsModel, GenerateRequest{
		Contents:         []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{ResponseModalities: []string{"AUDIO"}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get pronunciation audio: %w", err)
	}

	for _, part := range content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return part.InlineData.Data, nil
		}
	}
	return "", fmt.Errorf("failed to get pronunciation audio: %w", ErrEmptyResponse)
}
