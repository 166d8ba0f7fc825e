package main

import "time"

// findMissingZones walks the expected days of rng in order and reports
// maximal runs of days that fail the coverage rule. A zone opens at the last
// known-good day and closes at the next good day; a run still open at the
// end of the range closes one day past the last expected day. A gap before
// the first good day has no reference point and is not reported.
func findMissingZones(rng DateRange, buckets []DayBucket) []MissingZone {
	byDate := make(map[time.Time]DayBucket, len(buckets))
	for _, b := range buckets {
		byDate[startOfDayUTC(b.Date)] = b
	}

	var zones []MissingZone
	var lastGood time.Time
	seenGood := false
	var open *MissingZone
	var lastExpected time.Time

	for day := startOfDayUTC(rng.From); day.Before(rng.To); day = day.AddDate(0, 0, 1) {
		lastExpected = day
		b, ok := byDate[day]
		good := ok && b.HasData

		switch {
		case good && open != nil:
			open.End = day
			zones = append(zones, *open)
			open = nil
			lastGood = day
		case good:
			lastGood = day
			seenGood = true
		case open == nil && seenGood:
			open = &MissingZone{Start: lastGood}
		}
	}

	if open != nil {
		// No later good day bounds the run; close it at the "next" day.
		open.End = lastExpected.AddDate(0, 0, 1)
		zones = append(zones, *open)
	}

	return zones
}
