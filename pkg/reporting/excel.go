package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantbench/dca-backtest/internal/backtest"
)

// ExcelStyles holds the style IDs reused across sheets
type ExcelStyles struct {
	HeaderStyle   int
	CurrencyStyle int
	PercentStyle  int
	NumberStyle   int
	DateStyle     int
}

// ExcelReporter writes a multi-sheet workbook for a backtest run.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteReportXLSX writes a Summary sheet plus a Trajectory sheet per run
func (r *ExcelReporter) WriteReportXLSX(result *backtest.Result, traj *backtest.Trajectory, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const trajectorySheet = "Trajectory"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(trajectorySheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, summarySheet, result, styles); err != nil {
		return err
	}
	if err := r.writeTrajectorySheet(fx, trajectorySheet, traj, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates all Excel styles used by the report
func (r *ExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	// Header style - dark background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7, // Currency format with $ symbol
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10, // 0.00%
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.DateStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 14, // m/d/yyyy
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	return styles, err
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, result *backtest.Result, styles ExcelStyles) error {
	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Ticker", result.Ticker, 0},
		{"Start Date", result.Start, styles.DateStyle},
		{"End Date", result.End, styles.DateStyle},
		{"Total Invested", result.TotalInvested, styles.CurrencyStyle},
		{"Final Value", result.FinalValue, styles.CurrencyStyle},
		{"Absolute Gain", result.AbsoluteGain, styles.CurrencyStyle},
		{"Total Return", result.PercentGain / 100, styles.PercentStyle},
		{"Monthly Return", result.MonthlyReturn / 100, styles.PercentStyle},
		{"Max Drawdown", result.MaxDrawdownPct / 100, styles.PercentStyle},
		{"Price Drawdown", result.PriceDrawdownPct / 100, styles.PercentStyle},
		{"Executed Buys", result.ExecutedEvents, 0},
		{"Units Held", result.TotalUnits, styles.NumberStyle},
		{"Buy & Hold Value", result.BuyAndHoldValue, styles.CurrencyStyle},
		{"Buy & Hold Return", result.BuyAndHoldGainPct / 100, styles.PercentStyle},
		{"Buy & Hold Monthly", result.BuyAndHoldMonthly / 100, styles.PercentStyle},
	}

	headerCell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := fx.SetCellValue(sheet, headerCell, "Metric"); err != nil {
		return err
	}
	fx.SetCellValue(sheet, "B1", "Value")
	fx.SetCellStyle(sheet, "A1", "B1", styles.HeaderStyle)

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+2)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := fx.SetCellValue(sheet, labelCell, row.label); err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, valueCell, row.value); err != nil {
			return err
		}
		if row.style != 0 {
			fx.SetCellStyle(sheet, valueCell, valueCell, row.style)
		}
	}

	fx.SetColWidth(sheet, "A", "A", 22)
	fx.SetColWidth(sheet, "B", "B", 18)
	return nil
}

func (r *ExcelReporter) writeTrajectorySheet(fx *excelize.File, sheet string, traj *backtest.Trajectory, styles ExcelStyles) error {
	headers := []string{"Date", "Invested", "Units", "Value"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for i, s := range traj.Samples {
		row := i + 2
		dateCell, _ := excelize.CoordinatesToCellName(1, row)
		fx.SetCellValue(sheet, dateCell, s.Date)
		fx.SetCellStyle(sheet, dateCell, dateCell, styles.DateStyle)

		for col, v := range []float64{s.TotalInvested, s.TotalUnits, s.PortfolioValue} {
			cell, _ := excelize.CoordinatesToCellName(col+2, row)
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			style := styles.CurrencyStyle
			if col == 1 {
				style = styles.NumberStyle
			}
			fx.SetCellStyle(sheet, cell, cell, style)
		}
	}

	fx.SetColWidth(sheet, "A", "D", 14)
	return nil
}

// Package-level convenience function
func WriteReportXLSX(result *backtest.Result, traj *backtest.Trajectory, path string) error {
	return NewExcelReporter().WriteReportXLSX(result, traj, path)
}
