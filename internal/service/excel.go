package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/xuri/excelize/v2"
)

// Nomes das planilhas do export
const (
	TasksSheet   = "Tarefas"
	SummarySheet = "Resumo"
)

var (
	taskHeaders    = []string{"Título", "Data", "Duração (h)", "Categoria", "Criada em"}
	summaryHeaders = []string{"Categoria", "Horas", "Percentual", "Meta"}
)

// ExcelGenerator gera o export .xlsx das tarefas e do resumo por categoria
type ExcelGenerator struct {
	tasks TaskStore
	goals GoalStore
}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator(tasks TaskStore, goals GoalStore) *ExcelGenerator {
	return &ExcelGenerator{tasks: tasks, goals: goals}
}

// Export carrega os dados do usuário e gera a planilha
func (g *ExcelGenerator) Export(ctx context.Context, userID string) (*bytes.Buffer, error) {
	tasks, err := g.tasks.ListTasks(ctx, userID)
	if err != nil {
		metrics.Get().IncrementExport(false)
		return nil, err
	}
	goals, err := g.goals.GetGoals(ctx, userID)
	if err != nil {
		metrics.Get().IncrementExport(false)
		return nil, err
	}

	buf, err := g.Generate(tasks, goals)
	metrics.Get().IncrementExport(err == nil)
	logger.AuditMutation(ctx, logger.AuditActionTaskExport, "task", userID, err)
	return buf, err
}

// Generate gera um arquivo Excel com as planilhas Tarefas e Resumo
func (g *ExcelGenerator) Generate(tasks []model.Task, goals model.Goals) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Renomeia a sheet padrão
	if err := f.SetSheetName(f.GetSheetName(0), TasksSheet); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("criar sheet: %w", err)
	}

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilo: %w", err)
	}

	if err := writeHeaders(f, TasksSheet, taskHeaders, headerStyle); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}
	if err := writeHeaders(f, SummarySheet, summaryHeaders, headerStyle); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}

	if err := writeTasks(f, tasks); err != nil {
		return nil, fmt.Errorf("escrever tarefas: %w", err)
	}
	if err := writeSummary(f, Totals(tasks), goals); err != nil {
		return nil, fmt.Errorf("escrever resumo: %w", err)
	}

	if err := autoFitColumns(f, TasksSheet, len(taskHeaders)); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}
	if err := autoFitColumns(f, SummarySheet, len(summaryHeaders)); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}
	return buf, nil
}

func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"3CAE63"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeTasks(f *excelize.File, tasks []model.Task) error {
	for i, task := range tasks {
		row := i + 2 // Linha 1 é header

		// Durações numéricas viram número para permitir somas no Excel
		var duration interface{} = task.Duration
		if h, ok := ParseHours(task.Duration); ok {
			duration = h
		}

		values := []interface{}{task.Title, task.DueDate, duration, task.Category, task.CreatedAt.Format("2006-01-02 15:04")}
		if err := setRow(f, TasksSheet, row, values); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, totals []CategoryTotal, goals model.Goals) error {
	for i, t := range totals {
		var goal interface{} = ""
		if g, ok := goals[t.Category]; ok {
			goal = g
		}
		if err := setRow(f, SummarySheet, i+2, []interface{}{t.Category, t.Hours, t.Percent, goal}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return f.SetSheetRow(sheet, cell, &values)
}

func autoFitColumns(f *excelize.File, sheet string, numCols int) error {
	for col := 1; col <= numCols; col++ {
		colName, _ := excelize.ColumnNumberToName(col)
		if err := f.SetColWidth(sheet, colName, colName, 20); err != nil {
			return err
		}
	}
	return nil
}
