package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/helix-ai/backend/internal/analytics"
	"github.com/helix-ai/backend/internal/report"
)

func TestWriteCohortXLSX(t *testing.T) {
	rows := []report.StudentRow{
		{
			Entry:       analytics.CohortEntry{Rank: 1, UserID: "u1", TotalPoints: 145, AccuracyPercent: 92.3, Submissions: 24},
			Name:        "Ana Souza",
			Email:       "ana@aluno.fcmsantacasasp.edu.br",
			Weakest:     "replicação",
			WeakestTier: "intermediate",
			Trend:       analytics.TrendImproving,
			Components: map[string]analytics.ComponentStats{
				"replicação":  {Attempts: 4, Correct: 2, AccuracyPercent: 50},
				"transcrição": {Attempts: 6, Correct: 6, AccuracyPercent: 100},
			},
		},
		{
			Entry:   analytics.CohortEntry{Rank: 2, UserID: "u2", TotalPoints: 40, AccuracyPercent: 38.0, Submissions: 5, NeedsAttention: true},
			Name:    "Bruno Lima",
			Email:   "bruno@aluno.fcmsantacasasp.edu.br",
			Weakest: "tradução",
			Trend:   analytics.TrendDeclining,
		},
	}

	var buf bytes.Buffer
	if err := report.WriteCohortXLSX(&buf, rows, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("write report: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	name, err := f.GetCellValue("Turma", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if name != "Ana Souza" {
		t.Errorf("expected first ranked student in B2, got %q", name)
	}

	tier, err := f.GetCellValue("Turma", "H2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if tier != "intermediate" {
		t.Errorf("expected weakest tier in H2, got %q", tier)
	}

	attention, err := f.GetCellValue("Turma", "J3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if attention != "sim" {
		t.Errorf("expected attention flag for second student, got %q", attention)
	}

	// Component breakdown lands on its own sheet, components sorted by name.
	component, err := f.GetCellValue("Componentes", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if component != "replicação" {
		t.Errorf("expected first component row, got %q", component)
	}
	accuracy, err := f.GetCellValue("Componentes", "E3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if accuracy != "100.0" {
		t.Errorf("expected transcrição accuracy in E3, got %q", accuracy)
	}
}
