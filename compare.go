package main

import "time"

// Previous-day totals below this many kWh make percentage change
// meaningless; the comparison reports nil instead of a near-infinite spike.
const minComparableKWh = 0.1

// compare aligns current against previous by day index (the i-th day of each
// window), not by calendar date. Previous buckets dated on or after the
// start of today (UTC, at comparison time) are dropped first so a partial
// "today" never contaminates the baseline.
func compare(current, previous []DayBucket, now time.Time) PeriodResult {
	today := startOfDayUTC(now)

	var prev []DayBucket
	for _, b := range previous {
		if startOfDayUTC(b.Date).Before(today) {
			prev = append(prev, b)
		}
	}

	result := PeriodResult{Current: current, Previous: prev}
	for i, cur := range current {
		dc := DayComparison{Current: cur}
		if i < len(prev) {
			p := prev[i]
			dc.Previous = &p
			if p.TotalConsumption >= minComparableKWh {
				pc := (cur.TotalConsumption - p.TotalConsumption) / p.TotalConsumption * 100
				dc.PercentChange = &pc
			}
		}
		result.Comparison = append(result.Comparison, dc)
	}
	return result
}
