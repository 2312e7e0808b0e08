package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/session"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", cell(1, i+1), &r))
	}
	path := filepath.Join(t.TempDir(), "transcripts.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		header []string
		want   Columns
	}{
		{[]string{"IdAnalysis", "Speaker", "Transcrição da Ligação"}, Columns{CallID: 0, Transcript: 2}},
		{[]string{"Text", "Call ID"}, Columns{CallID: 1, Transcript: 0}},
		{[]string{"a", "b"}, Columns{CallID: 0, Transcript: 1}},
		{[]string{"only"}, Columns{CallID: -1, Transcript: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectColumns(tt.header), "%v", tt.header)
	}
}

func TestLoadScenarios(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"IdAnalysis", "Transcrição da Ligação"},
		{"101", "Bom dia, minha trinca no para-brisa aumentou."},
		{"202", "O retrovisor do caminhão quebrou."},
		{"101", "Posso agendar na loja?"},
		{"", "linha sem id"},
	})

	got, err := LoadScenarios(path, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, scenario.Scenario{
		Type:     scenario.TypeWindshield,
		Context:  "Bom dia, minha trinca no para-brisa aumentou. Posso agendar na loja?",
		SourceID: "101",
	}, got[0])
	assert.Equal(t, scenario.TypeMirror, got[1].Type)

	sum, err := Summarize(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalRows)
	assert.Equal(t, 2, sum.Scenarios)
	assert.Len(t, sum.Examples, 2)
	assert.Equal(t, 1, sum.Personas[scenario.Persona(got[1])])
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadScenarios(filepath.Join(t.TempDir(), "missing.xlsx"), nil)
	assert.Error(t, err)

	headerOnly := writeWorkbook(t, [][]any{{"IdAnalysis", "Transcript"}})
	_, err = LoadScenarios(headerOnly, nil)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestWriteScoreSheet(t *testing.T) {
	s := session.New(session.WithSeed(1))
	_, err := s.Start()
	require.NoError(t, err)
	_, err = s.Turn(context.Background(), "Bom dia, Carglass! Qual é o seu nome completo?")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "score.xlsx")
	require.NoError(t, WriteScoreSheet(path, s.Snapshot()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ScoreSheet, TranscriptSheet, TipsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ScoreSheet)
	require.NoError(t, err)
	require.Len(t, rows, 14)
	assert.Equal(t, []string{"ID", "Item", "Points", "Max points", "Evidence"}, rows[0])
	assert.Equal(t, "salutation; brand", rows[1][4])
	assert.Equal(t, "Total", rows[13][1])
	assert.Equal(t, "81", rows[13][3])

	trows, err := f.GetRows(TranscriptSheet)
	require.NoError(t, err)
	require.Len(t, trows, 4)
	assert.Equal(t, "Bom dia, Carglass! Qual é o seu nome completo?", trows[2][2])
}
