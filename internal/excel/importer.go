// Package excel moves words in and out of spreadsheets: extra offline deck
// words are imported from xlsx or csv files and learned words are exported
// to xlsx.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/verbadiem/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath                 string // Path to the Excel or CSV file
	WordColumn               string // Column with the word
	PronunciationColumn      string // Column with the pronunciation
	TranslationColumn        string // Column with the translation
	EtymologyColumn          string // Column with the etymology
	ExampleColumn            string // Column with the example sentence
	ExampleTranslationColumn string // Column with the example translation
	SheetName                string // Name of the sheet to import
	StartRow                 int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:               "A",
		PronunciationColumn:      "B",
		TranslationColumn:        "C",
		EtymologyColumn:          "D",
		ExampleColumn:            "E",
		ExampleTranslationColumn: "F",
		SheetName:                "Sheet1",
		StartRow:                 2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	Words          []models.DailyWord
	TotalProcessed int
	Skipped        int
	Errors         []string
}

// ImportWords imports words from an Excel or CSV file
func ImportWords(config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		file, err := os.Open(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return ImportCSV(file, config)
	}

	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return importFromExcel(f, config)
}

// ImportExcel imports words from an xlsx stream
func ImportExcel(r io.Reader, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return importFromExcel(f, config)
}

func importFromExcel(f *excelize.File, config ImportConfig) (*ImportResult, error) {
	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	seen := make(map[string]bool)
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.add(row, config, seen, i+1)
	}
	return result, nil
}

// ImportCSV imports words from CSV data
func ImportCSV(r io.Reader, config ImportConfig) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	seen := make(map[string]bool)
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		result.add(row, config, seen, rowNum)
	}
	return result, nil
}

func (r *ImportResult) add(row []string, config ImportConfig, seen map[string]bool, rowNum int) {
	if isBlank(row) {
		return
	}
	r.TotalProcessed++

	word, err := parseRow(row, config)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}

	key := strings.ToLower(word.Word)
	if seen[key] {
		r.Skipped++
		return
	}
	seen[key] = true
	r.Words = append(r.Words, word)
}

func parseRow(row []string, config ImportConfig) (models.DailyWord, error) {
	word := models.DailyWord{
		Word:               getCellValue(row, config.WordColumn),
		Pronunciation:      getCellValue(row, config.PronunciationColumn),
		Translation:        getCellValue(row, config.TranslationColumn),
		Etymology:          getCellValue(row, config.EtymologyColumn),
		Example:            getCellValue(row, config.ExampleColumn),
		ExampleTranslation: getCellValue(row, config.ExampleTranslationColumn),
	}

	if word.Word == "" {
		return word, fmt.Errorf("word is empty")
	}
	if word.Translation == "" {
		return word, fmt.Errorf("translation is empty for %q", word.Word)
	}
	if word.Example == "" {
		return word, fmt.Errorf("example is empty for %q", word.Word)
	}
	return word, nil
}

// getCellValue returns the trimmed value of a column letter in a row
func getCellValue(row []string, column string) string {
	if column == "" {
		return ""
	}
	index, err := excelize.ColumnNameToNumber(column)
	if err != nil || index < 1 || index > len(row) {
		return ""
	}
	return strings.TrimSpace(row[index-1])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
