package main

import (
	"sort"
	"time"
)

// A day counts as reliably covered once it has at least this many of the
// expected 48 half-hour slots.
const minReadingsPerDay = 40

// aggregate buckets a series into daily points when the window spans more
// than one day, or one point per reading for sub-day windows. Readings are
// grouped by the UTC date of their interval start; each bucket carries a
// running weighted average of the rates that resolved for its readings.
func aggregate(series []Reading, rates []Rate, rng DateRange) []DayBucket {
	if rng.Days() <= 1 {
		return aggregateSubDaily(series, rates)
	}

	buckets := make(map[time.Time]*DayBucket)
	priceSamples := make(map[time.Time]int)

	for _, r := range series {
		day := startOfDayUTC(r.IntervalStart)
		b, ok := buckets[day]
		if !ok {
			b = &DayBucket{Date: day}
			buckets[day] = b
		}
		b.TotalConsumption += r.Consumption
		b.ReadingCount++

		if p := resolveRate(rates, r.IntervalStart); p != nil {
			n := float64(priceSamples[day])
			if b.AvgUnitPrice == nil {
				b.AvgUnitPrice = new(float64)
			}
			*b.AvgUnitPrice = (*b.AvgUnitPrice*n + *p) / (n + 1)
			priceSamples[day]++
		}
	}

	out := make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		b.HasData = b.ReadingCount >= minReadingsPerDay && b.TotalConsumption > 0
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// aggregateSubDaily emits one point per reading, each carrying its own
// resolved price. HasData is left false; the coverage rule is a daily
// concept and gap detection only runs on multi-day windows.
func aggregateSubDaily(series []Reading, rates []Rate) []DayBucket {
	out := make([]DayBucket, 0, len(series))
	for _, r := range series {
		out = append(out, DayBucket{
			Date:             r.IntervalStart.UTC(),
			TotalConsumption: r.Consumption,
			AvgUnitPrice:     resolveRate(rates, r.IntervalStart),
			ReadingCount:     1,
		})
	}
	return out
}

// hourlyPattern averages consumption per hour of day (0-23) across the whole
// series, independent of date.
func hourlyPattern(series []Reading) [24]float64 {
	var sums [24]float64
	var counts [24]int
	for _, r := range series {
		h := r.IntervalStart.UTC().Hour()
		sums[h] += r.Consumption
		counts[h]++
	}
	var avgs [24]float64
	for h := range sums {
		if counts[h] > 0 {
			avgs[h] = sums[h] / float64(counts[h])
		}
	}
	return avgs
}

// peakHour is the hour with the highest average consumption; ties take the
// earliest hour.
func peakHour(avgs [24]float64) int {
	peak := 0
	for h, v := range avgs {
		if v > avgs[peak] {
			peak = h
		}
	}
	return peak
}

// lowHour is the hour with the lowest positive average consumption, or -1
// when every hour averages zero. Ties take the earliest hour.
func lowHour(avgs [24]float64) int {
	low := -1
	for h, v := range avgs {
		if v <= 0 {
			continue
		}
		if low == -1 || v < avgs[low] {
			low = h
		}
	}
	return low
}

// estimateCost blends usage cost with the daily standing charge, converting
// pence to pounds. Readings without a resolvable rate contribute nothing.
// Returns nil when neither a usage price nor a standing charge applies, so
// callers never see a NaN from an empty price sample set.
func estimateCost(series []Reading, rates []Rate, charge *StandingCharge, days int) *float64 {
	resolved := false
	usagePence := 0.0
	for _, r := range series {
		if p := resolveRate(rates, r.IntervalStart); p != nil {
			usagePence += r.Consumption * *p
			resolved = true
		}
	}
	if !resolved && charge == nil {
		return nil
	}
	total := usagePence / 100
	if charge != nil {
		total += charge.ValueIncVat * float64(days) / 100
	}
	return &total
}

// computeStats derives the summary statistics for one utility over rng.
func computeStats(buckets []DayBucket, series []Reading, rates []Rate, charge *StandingCharge, rng DateRange) UsageStats {
	stats := UsageStats{LowHour: -1}

	for i := range buckets {
		b := buckets[i]
		stats.TotalConsumption += b.TotalConsumption
		if stats.PeakDay == nil || b.TotalConsumption > stats.PeakDay.TotalConsumption {
			stats.PeakDay = &buckets[i]
		}
		if b.AvgUnitPrice == nil {
			continue
		}
		p := *b.AvgUnitPrice
		if stats.MinUnitPrice == nil || p < *stats.MinUnitPrice {
			v := p
			stats.MinUnitPrice = &v
		}
		if stats.MaxUnitPrice == nil || p > *stats.MaxUnitPrice {
			v := p
			stats.MaxUnitPrice = &v
		}
		if stats.AvgUnitPrice == nil {
			stats.AvgUnitPrice = new(float64)
		}
	}

	// None-aware average over the buckets that priced.
	if stats.AvgUnitPrice != nil {
		sum, n := 0.0, 0
		for _, b := range buckets {
			if b.AvgUnitPrice != nil {
				sum += *b.AvgUnitPrice
				n++
			}
		}
		*stats.AvgUnitPrice = sum / float64(n)
	}

	if days := rng.Days(); days > 0 {
		stats.DailyAverage = stats.TotalConsumption / float64(days)
	}

	stats.HourlyAverages = hourlyPattern(series)
	stats.PeakHour = peakHour(stats.HourlyAverages)
	stats.LowHour = lowHour(stats.HourlyAverages)
	stats.EstimatedCost = estimateCost(series, rates, charge, rng.Days())
	return stats
}
