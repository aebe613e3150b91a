package gamification

import (
	"strings"

	"github.com/example/verbadiem/pkg/models"
)

// CreateCollection appends an empty collection. A blank name leaves the
// progress unchanged and returns ErrEmptyCollectionName.
func (e *Engine) CreateCollection(p models.UserProgress, name string) (models.UserProgress, models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return p, models.Collection{}, ErrEmptyCollectionName
	}

	c := models.Collection{ID: e.NewID(), Name: name, WordIDs: []string{}}
	next := p.Clone()
	next.Collections = append(next.Collections, c)
	return next, c, nil
}

// UpdateCollections sets the membership of wordID: it is added to every
// selected collection and removed from every other one. A non-empty newName
// first creates a collection holding the word.
func (e *Engine) UpdateCollections(p models.UserProgress, wordID string, selectedIDs []string, newName string) (models.UserProgress, error) {
	if _, ok := p.LearnedWords[wordID]; !ok {
		return p, ErrUnknownWord
	}

	next := p.Clone()
	selected := make(map[string]bool, len(selectedIDs)+1)
	for _, id := range selectedIDs {
		selected[id] = true
	}

	if name := strings.TrimSpace(newName); name != "" {
		c := models.Collection{ID: e.NewID(), Name: name, WordIDs: []string{wordID}}
		next.Collections = append(next.Collections, c)
		selected[c.ID] = true
	}

	for i, c := range next.Collections {
		has := c.Contains(wordID)
		switch {
		case selected[c.ID] && !has:
			next.Collections[i].WordIDs = append(c.WordIDs, wordID)
		case !selected[c.ID] && has:
			kept := make([]string, 0, len(c.WordIDs))
			for _, id := range c.WordIDs {
				if id != wordID {
					kept = append(kept, id)
				}
			}
			next.Collections[i].WordIDs = kept
		}
	}
	return next, nil
}
