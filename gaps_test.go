package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

// goodDay builds a bucket that passes the coverage rule.
func goodDay(date time.Time) DayBucket {
	return DayBucket{Date: date, TotalConsumption: 10, ReadingCount: 48, HasData: true}
}

// badDay builds a bucket that fails it.
func badDay(date time.Time) DayBucket {
	return DayBucket{Date: date, TotalConsumption: 2, ReadingCount: 10}
}

func TestFindMissingZonesMiddleGap(t *testing.T) {
	rng := DateRange{From: day(1), To: day(8)}
	buckets := []DayBucket{
		goodDay(day(1)),
		goodDay(day(2)),
		badDay(day(3)),
		// day 4 has no bucket at all
		goodDay(day(5)),
		goodDay(day(6)),
		goodDay(day(7)),
	}

	zones := findMissingZones(rng, buckets)
	require.Len(t, zones, 1)
	require.Equal(t, day(2), zones[0].Start, "zone starts at the last known-good day")
	require.Equal(t, day(5), zones[0].End, "zone ends at the next good day")
}

func TestFindMissingZonesTrailingGap(t *testing.T) {
	rng := DateRange{From: day(1), To: day(6)}
	buckets := []DayBucket{
		goodDay(day(1)),
		goodDay(day(2)),
		badDay(day(3)),
		badDay(day(4)),
		badDay(day(5)),
	}

	zones := findMissingZones(rng, buckets)
	require.Len(t, zones, 1)
	require.Equal(t, day(2), zones[0].Start)
	require.Equal(t, day(6), zones[0].End, "open run closes one day past the last expected day")
}

func TestFindMissingZonesLeadingGapNotReported(t *testing.T) {
	rng := DateRange{From: day(1), To: day(6)}
	buckets := []DayBucket{
		badDay(day(1)),
		badDay(day(2)),
		goodDay(day(3)),
		goodDay(day(4)),
		goodDay(day(5)),
	}

	zones := findMissingZones(rng, buckets)
	require.Empty(t, zones, "a gap with no preceding good day has no reference point")
}

func TestFindMissingZonesAllGood(t *testing.T) {
	rng := DateRange{From: day(1), To: day(4)}
	buckets := []DayBucket{goodDay(day(1)), goodDay(day(2)), goodDay(day(3))}
	require.Empty(t, findMissingZones(rng, buckets))
}

func TestFindMissingZonesMultiple(t *testing.T) {
	rng := DateRange{From: day(1), To: day(10)}
	buckets := []DayBucket{
		goodDay(day(1)),
		badDay(day(2)),
		goodDay(day(3)),
		goodDay(day(4)),
		badDay(day(5)),
		badDay(day(6)),
		goodDay(day(7)),
		goodDay(day(8)),
		goodDay(day(9)),
	}

	zones := findMissingZones(rng, buckets)
	require.Len(t, zones, 2)
	require.Equal(t, MissingZone{Start: day(1), End: day(3)}, zones[0])
	require.Equal(t, MissingZone{Start: day(4), End: day(7)}, zones[1])
}

func TestFindMissingZonesIdempotent(t *testing.T) {
	rng := DateRange{From: day(1), To: day(8)}
	buckets := []DayBucket{
		goodDay(day(1)),
		badDay(day(2)),
		badDay(day(3)),
		goodDay(day(4)),
	}

	first := findMissingZones(rng, buckets)
	second := findMissingZones(rng, buckets)
	require.Equal(t, first, second)
}

func TestLowCoverageDayFallsInsideZone(t *testing.T) {
	// A day with only 10 readings of 0.5 each is below the 40-reading floor.
	rng := DateRange{From: day(1), To: day(4)}
	sparse := day(2)
	series := append(halfHourReadings(day(1), 48, 0.5), halfHourReadings(sparse, 10, 0.5)...)
	series = append(series, halfHourReadings(day(3), 48, 0.5)...)

	buckets := aggregate(series, nil, rng)
	require.Len(t, buckets, 3)
	require.False(t, buckets[1].HasData)

	zones := findMissingZones(rng, buckets)
	require.Len(t, zones, 1)
	require.True(t, !sparse.Before(zones[0].Start) && sparse.Before(zones[0].End),
		"the sparse date sits inside the reported zone")
}
