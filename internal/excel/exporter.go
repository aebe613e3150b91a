package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the export workbook
const (
	WordsSheet       = "Words"
	CollectionsSheet = "Collections"
	StatsSheet       = "Statistics"
)

var wordHeader = []interface{}{"Word", "Pronunciation", "Translation", "Etymology", "Example", "Example translation", "Collections"}

// ExportProgress writes the learned words, collections and statistics of a
// learner as an xlsx workbook. The words sheet uses the import column layout
// so an export can be imported back as a deck.
func ExportProgress(w io.Writer, p models.UserProgress) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", WordsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeWords(f, p); err != nil {
		return err
	}
	if err := writeCollections(f, p); err != nil {
		return err
	}
	if err := writeStats(f, p); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeWords(f *excelize.File, p models.UserProgress) error {
	if err := setRow(f, WordsSheet, 1, wordHeader); err != nil {
		return err
	}

	membership := make(map[string][]string)
	for _, c := range p.Collections {
		for _, id := range c.WordIDs {
			membership[id] = append(membership[id], c.Name)
		}
	}

	for i, key := range p.LearnedWordKeys() {
		word := p.LearnedWords[key]
		row := []interface{}{
			word.Word, word.Pronunciation, word.Translation, word.Etymology,
			word.Example, word.ExampleTranslation, strings.Join(membership[key], ", "),
		}
		if err := setRow(f, WordsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCollections(f *excelize.File, p models.UserProgress) error {
	if _, err := f.NewSheet(CollectionsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := setRow(f, CollectionsSheet, 1, []interface{}{"Collection", "Words"}); err != nil {
		return err
	}
	for i, c := range p.Collections {
		if err := setRow(f, CollectionsSheet, i+2, []interface{}{c.Name, strings.Join(c.WordIDs, ", ")}); err != nil {
			return err
		}
	}
	return nil
}

func writeStats(f *excelize.File, p models.UserProgress) error {
	if _, err := f.NewSheet(StatsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	stats := gamification.BuildStatistics(p)
	rows := [][]interface{}{
		{"Words learned", stats.WordsLearned},
		{"XP", stats.XP},
		{"Level", fmt.Sprintf("%d (%s)", stats.Level, stats.LevelName)},
		{"Current streak", stats.CurrentStreak},
		{"Longest streak", stats.LongestStreak},
		{"Reviews", stats.ReviewCount},
		{"Practice sessions", stats.PracticeCount},
		{"Words visualized", stats.VisualizeCount},
		{"Related words", stats.RelatedCount},
	}
	for _, a := range stats.Achievements {
		status := "locked"
		if a.Unlocked {
			status = "unlocked"
		}
		rows = append(rows, []interface{}{"Achievement: " + a.Name, status})
	}

	for i, row := range rows {
		if err := setRow(f, StatsSheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
