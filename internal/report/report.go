// Package report renders professor-facing cohort spreadsheets.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/helix-ai/backend/internal/analytics"
)

const (
	sheetName          = "Turma"
	componentSheetName = "Componentes"
)

// StudentRow joins the cohort ranking with account details for display.
type StudentRow struct {
	Entry       analytics.CohortEntry
	Name        string
	Email       string
	Weakest     string
	WeakestTier string
	Trend       analytics.Trend
	Components  map[string]analytics.ComponentStats
}

// WriteCohortXLSX renders the ranking as a spreadsheet. Professors asked
// for xlsx rather than CSV so accents and accuracy formatting survive a
// round trip through Excel.
func WriteCohortXLSX(w io.Writer, rows []StudentRow, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"Posição", "Nome", "Email", "Pontos", "Acerto (%)", "Respostas", "Tópico mais fraco", "Nível mais fraco", "Tendência", "Atenção"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		attention := ""
		if row.Entry.NeedsAttention {
			attention = "sim"
		}
		values := []any{
			row.Entry.Rank,
			row.Name,
			row.Email,
			row.Entry.TotalPoints,
			fmt.Sprintf("%.1f", row.Entry.AccuracyPercent),
			row.Entry.Submissions,
			row.Weakest,
			row.WeakestTier,
			string(row.Trend),
			attention,
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	footer := fmt.Sprintf("Gerado em %s", generatedAt.Format("02/01/2006 15:04"))
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+3)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, cell, footer); err != nil {
		return err
	}

	if err := f.SetColWidth(sheetName, "B", "C", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "G", "I", 22); err != nil {
		return err
	}

	if err := writeComponentSheet(f, rows); err != nil {
		return err
	}

	return f.Write(w)
}

// writeComponentSheet breaks each student's accuracy down by knowledge
// component so professors can see where the class as a whole struggles.
func writeComponentSheet(f *excelize.File, rows []StudentRow) error {
	f.NewSheet(componentSheetName)

	headers := []string{"Nome", "Componente", "Tentativas", "Acertos", "Acerto (%)"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(componentSheetName, cell, h); err != nil {
			return err
		}
	}

	r := 2
	for _, row := range rows {
		components := make([]string, 0, len(row.Components))
		for name := range row.Components {
			components = append(components, name)
		}
		sort.Strings(components)

		for _, name := range components {
			stats := row.Components[name]
			values := []any{
				row.Name,
				name,
				stats.Attempts,
				stats.Correct,
				fmt.Sprintf("%.1f", stats.AccuracyPercent),
			}
			for c, v := range values {
				cell, err := excelize.CoordinatesToCellName(c+1, r)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(componentSheetName, cell, v); err != nil {
					return err
				}
			}
			r++
		}
	}

	return f.SetColWidth(componentSheetName, "A", "B", 32)
}
