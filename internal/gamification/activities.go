package gamification

import "github.com/example/verbadiem/pkg/models"

// ReviewSession rewards a finished review session
func (e *Engine) ReviewSession(p models.UserProgress) Outcome {
	return e.activity(p, XPReviewSession, TagReview, func(n *models.UserProgress) { n.ReviewCount++ })
}

// PracticeSession rewards a finished practice conversation
func (e *Engine) PracticeSession(p models.UserProgress) Outcome {
	return e.activity(p, XPPracticeSession, TagPractice, func(n *models.UserProgress) { n.PracticeCount++ })
}

// RelatedWordFound rewards discovering a related word
func (e *Engine) RelatedWordFound(p models.UserProgress) Outcome {
	return e.activity(p, XPRelatedWord, TagRelatedWord, func(n *models.UserProgress) { n.RelatedWordCount++ })
}

// VisualizeWord rewards generating a mnemonic image
func (e *Engine) VisualizeWord(p models.UserProgress) Outcome {
	return e.activity(p, XPVisualizeWord, TagVisualize, func(n *models.UserProgress) { n.VisualizeCount++ })
}

// activity bumps one counter and then awards XP, so counter based
// achievements unlock in the same turn.
func (e *Engine) activity(p models.UserProgress, amount int, tag string, bump func(*models.UserProgress)) Outcome {
	next := p.Clone()
	bump(&next)
	return e.AwardXP(next, amount, tag)
}
