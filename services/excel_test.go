package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	require.NoError(t, f.Close())
	return buf
}

func TestParseScoreSheet(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Game 1", "Game 2"}, // header row, skipped
		{"Kim", 180, 210},
		{"Lee", 150},
		{"", 999},         // no name
		{"Park", "abc"},   // unreadable scores
		{"Choi", 200, ""}, // blank trailing cell ignored
	})

	rows, skipped, err := ParseScoreSheet(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped) // only Park counts; the header is recognized

	require.Len(t, rows, 3)
	assert.Equal(t, "Kim", rows[0].MemberName)
	assert.Equal(t, []int{180, 210}, rows[0].Scores)
	assert.Equal(t, "Lee", rows[1].MemberName)
	assert.Equal(t, []int{150}, rows[1].Scores)
	assert.Equal(t, "Choi", rows[2].MemberName)
	assert.Equal(t, []int{200}, rows[2].Scores)
}

func TestParseScoreSheetNotAWorkbook(t *testing.T) {
	_, _, err := ParseScoreSheet(bytes.NewReader([]byte("not a zip")))
	assert.Error(t, err)
}

func TestBuildStatsWorkbook(t *testing.T) {
	jan := 185
	rows := []StatRow{
		{Name: "Kim", Games: 3, Total: 570, Average: 190, Participation: 1.0, Monthly: [12]*int{0: &jan}},
	}
	rollup := TeamRollup{TotalGames: 3, TotalScore: 570, TeamAverage: 190}

	f, err := BuildStatsWorkbook(2025, rows, rollup)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)

	name, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Kim", name)

	monthly, err := f.GetCellValue(sheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "185", monthly)

	total, err := f.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Team (2025)", total)
}
