package quiz

import (
	"math/rand"

	"github.com/example/verbadiem/pkg/models"
)

var builtinWords = []models.DailyWord{
	{
		Word:               "Ephemeral",
		Pronunciation:      "uh-FEM-er-uhl",
		Translation:        "Efêmero",
		Etymology:          "From the Greek 'ephemeros', lasting only one day. It describes things that are fleeting, like a mayfly's life or a sunset.",
		Example:            "The beauty of the cherry blossoms is ephemeral.",
		ExampleTranslation: "A beleza das flores de cerejeira é efêmera.",
	},
	{
		Word:               "Serendipity",
		Pronunciation:      "ser-en-DIP-i-tee",
		Translation:        "Serendipidade",
		Etymology:          "Coined by Horace Walpole in 1754 after the Persian tale 'The Three Princes of Serendip', whose heroes kept making lucky discoveries.",
		Example:            "Finding a ten-dollar bill in an old coat was a moment of serendipity.",
		ExampleTranslation: "Encontrar uma nota de dez dólares em um casaco velho foi um momento de serendipidade.",
	},
	{
		Word:               "Lethargy",
		Pronunciation:      "LETH-er-jee",
		Translation:        "Letargia",
		Etymology:          "From the Greek 'lēthargos' (forgetful, drowsy), related to Lethe, the river of forgetfulness in the Greek underworld.",
		Example:            "A feeling of lethargy washed over him after the big meal.",
		ExampleTranslation: "Uma sensação de letargia tomou conta dele após a grande refeição.",
	},
	{
		Word:               "Mellifluous",
		Pronunciation:      "muh-LIF-loo-us",
		Translation:        "Melífluo",
		Etymology:          "From the Latin 'mel' (honey) and 'fluere' (to flow): literally flowing with honey, said of a sweet and smooth voice.",
		Example:            "She had a mellifluous voice that was perfect for radio.",
		ExampleTranslation: "Ela tinha uma voz melíflua que era perfeita para rádio.",
	},
}

// Deck is the set of words used when the word generator is unavailable
type Deck struct {
	words []models.DailyWord
}

// NewDeck returns the built-in words followed by extra ones. Words whose text
// is already present are skipped.
func NewDeck(extra ...models.DailyWord) *Deck {
	d := &Deck{}
	seen := make(map[string]bool)
	for _, w := range append(append([]models.DailyWord{}, builtinWords...), extra...) {
		if w.Word == "" || seen[w.Word] {
			continue
		}
		seen[w.Word] = true
		d.words = append(d.words, w)
	}
	return d
}

// Words returns a copy of the deck
func (d *Deck) Words() []models.DailyWord {
	return append([]models.DailyWord{}, d.words...)
}

// Len returns the deck size
func (d *Deck) Len() int {
	return len(d.words)
}

// Available returns the words not yet learned
func (d *Deck) Available(learned map[string]models.DailyWord) []models.DailyWord {
	available := make([]models.DailyWord, 0, len(d.words))
	for _, w := range d.words {
		if _, ok := learned[w.Word]; !ok {
			available = append(available, w)
		}
	}
	return available
}

// Pick returns a random word not yet learned
func (d *Deck) Pick(rnd *rand.Rand, learned map[string]models.DailyWord) (models.DailyWord, bool) {
	available := d.Available(learned)
	if len(available) == 0 {
		return models.DailyWord{}, false
	}
	return available[rnd.Intn(len(available))], true
}
