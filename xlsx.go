package main

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// writeXLSX renders the summaries as a workbook: one summary sheet, one days
// sheet per utility, and a sheet of missing zones.
func writeXLSX(filename string, rng DateRange, summaries []UtilitySummary) error {
	f := excelize.NewFile()
	summarySheet := "summary"
	f.SetSheetName("Sheet1", summarySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Usage summary")
	_ = f.SetCellValue(summarySheet, "A2", "Window")
	_ = f.SetCellValue(summarySheet, "B2", fmt.Sprintf("%s - %s", formatBoundary(rng.From), formatBoundary(rng.To)))

	headers := []string{"Utility", "Total kWh", "Daily avg kWh", "Peak day", "Peak hour", "Low hour", "Avg price p/kWh", "Est. cost £"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(summarySheet, cell, h)
	}

	for row, s := range summaries {
		values := []any{
			s.Name,
			s.Stats.TotalConsumption,
			s.Stats.DailyAverage,
			"",
			fmt.Sprintf("%02d:00", s.Stats.PeakHour),
			"",
			"",
			"",
		}
		if s.Stats.PeakDay != nil {
			values[3] = s.Stats.PeakDay.Date.Format("2006-01-02")
		}
		if s.Stats.LowHour >= 0 {
			values[5] = fmt.Sprintf("%02d:00", s.Stats.LowHour)
		}
		if s.Stats.AvgUnitPrice != nil {
			values[6] = *s.Stats.AvgUnitPrice
		}
		if s.Stats.EstimatedCost != nil {
			values[7] = *s.Stats.EstimatedCost
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+5)
			_ = f.SetCellValue(summarySheet, cell, v)
		}
	}

	for _, s := range summaries {
		if err := writeDaysSheet(f, s); err != nil {
			return err
		}
	}

	if err := writeZonesSheet(f, summaries); err != nil {
		return err
	}

	return f.SaveAs(filename)
}

func writeDaysSheet(f *excelize.File, s UtilitySummary) error {
	sheet := s.Name
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	_ = f.SetCellValue(sheet, "A1", "Date")
	_ = f.SetCellValue(sheet, "B1", "Consumption (kWh)")
	_ = f.SetCellValue(sheet, "C1", "Avg price (p/kWh)")
	_ = f.SetCellValue(sheet, "D1", "Readings")
	_ = f.SetCellValue(sheet, "E1", "Data OK")
	_ = f.SetCellValue(sheet, "F1", "Previous (kWh)")
	_ = f.SetCellValue(sheet, "G1", "Change (%)")

	for i, dc := range s.Period.Comparison {
		row := i + 2
		b := dc.Current
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.Date.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.TotalConsumption)
		if b.AvgUnitPrice != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), *b.AvgUnitPrice)
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.ReadingCount)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.HasData)
		if dc.Previous != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), dc.Previous.TotalConsumption)
		}
		if dc.PercentChange != nil {
			_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), *dc.PercentChange)
		}
	}
	return nil
}

func writeZonesSheet(f *excelize.File, summaries []UtilitySummary) error {
	sheet := "missing-zones"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	_ = f.SetCellValue(sheet, "A1", "Utility")
	_ = f.SetCellValue(sheet, "B1", "Start")
	_ = f.SetCellValue(sheet, "C1", "End")

	row := 2
	for _, s := range summaries {
		for _, z := range s.Zones {
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), s.Name)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), z.Start.Format("2006-01-02"))
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), z.End.Format("2006-01-02"))
			row++
		}
	}
	return nil
}
