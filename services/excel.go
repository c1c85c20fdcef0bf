// services/excel.go - spreadsheet import/export
package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseScoreSheet reads the first sheet of an uploaded workbook into
// bulk rows. Expected layout: one participant per row, name in the first
// column, one score per following column. A header row (no numeric
// cells) is skipped automatically. Returns the parsed rows plus the
// count of rows that had a name but no readable score.
func ParseScoreSheet(r io.Reader) ([]BulkRow, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, fmt.Errorf("workbook has no sheets")
	}

	rawRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("could not read sheet: %w", err)
	}

	rows := make([]BulkRow, 0, len(rawRows))
	skipped := 0
	for i, raw := range rawRows {
		if len(raw) == 0 {
			continue
		}
		name := strings.TrimSpace(raw[0])
		if name == "" {
			continue
		}

		scores := make([]int, 0, len(raw)-1)
		for _, cell := range raw[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			n, err := strconv.Atoi(cell)
			if err != nil {
				continue
			}
			scores = append(scores, n)
		}

		if len(scores) == 0 {
			// Only the first row gets the benefit of the doubt as a header
			if i > 0 {
				skipped++
			}
			continue
		}

		rows = append(rows, BulkRow{MemberName: name, Scores: scores})
	}

	return rows, skipped, nil
}

var statsMonthHeaders = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// BuildStatsWorkbook renders a year's stats table as a downloadable
// workbook: one row per identity plus a team total row.
func BuildStatsWorkbook(year int, rows []StatRow, rollup TeamRollup) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := append([]string{"Name", "Games", "Total", "Average", "Participation"}, statsMonthHeaders...)
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Name,
			row.Games,
			row.Total,
			row.Average,
			fmt.Sprintf("%.0f%%", row.Participation*100),
		}
		for m := 0; m < 12; m++ {
			if row.Monthly[m] != nil {
				values = append(values, *row.Monthly[m])
			} else {
				values = append(values, "")
			}
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(rows) + 2
	totals := []interface{}{
		fmt.Sprintf("Team (%d)", year),
		rollup.TotalGames,
		rollup.TotalScore,
		rollup.TeamAverage,
		fmt.Sprintf("%.0f%%", rollup.TeamParticipation*100),
	}
	for m := 0; m < 12; m++ {
		if rollup.TeamMonthlyAverage[m] != nil {
			totals = append(totals, *rollup.TeamMonthlyAverage[m])
		} else {
			totals = append(totals, "-")
		}
	}
	for col, v := range totals {
		cell, err := excelize.CoordinatesToCellName(col+1, totalRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, err
		}
	}

	return f, nil
}
