package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestImportCSV(t *testing.T) {
	data := strings.Join([]string{
		"word,pronunciation,translation,etymology,example,example translation",
		"Sonder,SON-der,Sonder,Coined in 2012,Sonder hit me on the train.,Senti sonder no trem.",
		",,,,,",
		"sonder,x,x,x,x,x",
		"Hiraeth,HEER-eyeth,,Welsh,I feel hiraeth.,Sinto hiraeth.",
	}, "\n")

	result, err := ImportCSV(strings.NewReader(data), DefaultImportConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Words, 1)
	assert.Equal(t, "Sonder hit me on the train.", result.Words[0].Example)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 5")
}

func TestImportWordsFromExcelFile(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Word", "Pronunciation", "Translation", "Etymology", "Example", "Example translation"},
		{"Petrichor", "PET-ri-kor", "Petricor", "Greek petra + ichor", "I love the petrichor after rain.", "Adoro o petricor depois da chuva."},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "deck.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	config := DefaultImportConfig()
	config.FilePath = path
	result, err := ImportWords(config)
	require.NoError(t, err)

	require.Len(t, result.Words, 1)
	assert.Equal(t, models.DailyWord{
		Word:               "Petrichor",
		Pronunciation:      "PET-ri-kor",
		Translation:        "Petricor",
		Etymology:          "Greek petra + ichor",
		Example:            "I love the petrichor after rain.",
		ExampleTranslation: "Adoro o petricor depois da chuva.",
	}, result.Words[0])
}

func TestImportWordsFromCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.csv")
	require.NoError(t, os.WriteFile(path, []byte("header\nLimerence,,Limerência,,Limerence is intense.,\n"), 0o600))

	config := DefaultImportConfig()
	config.FilePath = path
	result, err := ImportWords(config)
	require.NoError(t, err)
	require.Len(t, result.Words, 1)
	assert.Equal(t, "Limerência", result.Words[0].Translation)
}

func TestExportRoundTrip(t *testing.T) {
	p := models.DefaultProgress()
	p.XP = 40
	p.LearnedWords["Lethargy"] = models.DailyWord{Word: "Lethargy", Translation: "Letargia", Example: "Lethargy after lunch."}
	p.LearnedWords["Ephemeral"] = models.DailyWord{Word: "Ephemeral", Translation: "Efêmero", Example: "Fame is ephemeral."}
	p.Collections = []models.Collection{{ID: "c1", Name: "Moods", WordIDs: []string{"Lethargy"}}}

	var buf bytes.Buffer
	require.NoError(t, ExportProgress(&buf, p))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(WordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ephemeral", rows[1][0])
	assert.Equal(t, "Lethargy", rows[2][0])
	assert.Equal(t, "Moods", rows[2][6])

	collections, err := f.GetRows(CollectionsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Moods", "Lethargy"}, collections[1])

	config := DefaultImportConfig()
	config.SheetName = WordsSheet
	imported, err := ImportExcel(bytes.NewReader(buf.Bytes()), config)
	require.NoError(t, err)
	assert.Len(t, imported.Words, 2)
	assert.Empty(t, imported.Errors)
}
