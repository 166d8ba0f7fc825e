package main

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Helper function to format optional float64 values with precision
func formatFloat(val *float64, precision int) string {
	if val != nil {
		formatStr := fmt.Sprintf("%%.%df", precision)
		return fmt.Sprintf(formatStr, *val)
	}
	return "NaN"
}

// Write the per-day reconciliation and summary statistics to a CSV file
func writeCSV(filename string, rng DateRange, summaries []UtilitySummary) error {
	if len(summaries) == 0 {
		return fmt.Errorf("not enough data to write CSV")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Utility",
		"Date",
		"Consumption_KWh",
		"Avg_Price_Pence",
		"Reading_Count",
		"Data_OK",
		"Previous_KWh",
		"Percent_Change",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range summaries {
		for _, dc := range s.Period.Comparison {
			b := dc.Current
			prev := "NaN"
			if dc.Previous != nil {
				prev = fmt.Sprintf("%.4f", dc.Previous.TotalConsumption)
			}
			record := []string{
				s.Name,
				b.Date.Format("2006-01-02"),
				fmt.Sprintf("%.4f", b.TotalConsumption),
				formatFloat(b.AvgUnitPrice, 4),
				fmt.Sprintf("%d", b.ReadingCount),
				fmt.Sprintf("%t", b.HasData),
				prev,
				formatFloat(dc.PercentChange, 2),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}

		summary := summaryRecords(s)
		for _, record := range summary {
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func summaryRecords(s UtilitySummary) [][]string {
	records := [][]string{
		{s.Name, "total", fmt.Sprintf("%.4f", s.Stats.TotalConsumption), "", "", "", "", ""},
		{s.Name, "daily_average", fmt.Sprintf("%.4f", s.Stats.DailyAverage), "", "", "", "", ""},
	}
	if s.Stats.PeakDay != nil {
		records = append(records, []string{
			s.Name, "peak_day", fmt.Sprintf("%.4f", s.Stats.PeakDay.TotalConsumption),
			"", "", "", s.Stats.PeakDay.Date.Format("2006-01-02"), "",
		})
	}
	records = append(records, []string{
		s.Name, "peak_hour", fmt.Sprintf("%02d:00", s.Stats.PeakHour), "", "", "", "", "",
	})
	if s.Stats.LowHour >= 0 {
		records = append(records, []string{
			s.Name, "low_hour", fmt.Sprintf("%02d:00", s.Stats.LowHour), "", "", "", "", "",
		})
	}
	if s.Stats.EstimatedCost != nil {
		records = append(records, []string{
			s.Name, "estimated_cost_pounds", fmt.Sprintf("%.2f", *s.Stats.EstimatedCost), "", "", "", "", "",
		})
	}
	for _, z := range s.Zones {
		records = append(records, []string{
			s.Name, "missing_zone", "", "", "", "",
			z.Start.Format("2006-01-02"), z.End.Format("2006-01-02"),
		})
	}
	return records
}
