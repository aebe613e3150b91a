package models

// DailyWord is a learned word record. Records are keyed by Word and never
// change once stored in a progress record.
type DailyWord struct {
	Word               string `json:"word"`
	Pronunciation      string `json:"pronunciation"`
	Translation        string `json:"translation"`
	Etymology          string `json:"etymology"`
	Example            string `json:"example"`
	ExampleTranslation string `json:"exampleTranslation"`
}

// RelatedWord is a follow-up word suggested after a lesson
type RelatedWord struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Reason      string `json:"reason"`
}

// SentenceOption is one candidate sentence of a challenge
type SentenceOption struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
}

// SentenceChallenge is a multiple choice question with exactly one sentence
// that uses the word correctly.
type SentenceChallenge struct {
	Options      []SentenceOption `json:"options"`
	CorrectIndex int              `json:"correctIndex"`
}
