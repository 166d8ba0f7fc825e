package main

import "time"

// Reading is one half-hourly consumption sample for a meter/direction.
type Reading struct {
	IntervalStart time.Time
	IntervalEnd   time.Time
	Consumption   float64 // kWh
}

// Rate is a unit price window in pence/kWh including VAT. A nil ValidFrom or
// ValidTo means the window is open at that end.
type Rate struct {
	ValidFrom     *time.Time
	ValidTo       *time.Time
	ValueIncVat   float64
	PaymentMethod string
}

// StandingCharge is a flat daily fee in pence/day including VAT, applied
// independently of consumption.
type StandingCharge struct {
	ValidFrom   *time.Time
	ValidTo     *time.Time
	ValueIncVat float64
}

// DateRange is a half-open [From, To) window. Boundaries are treated as UTC
// everywhere; formatBoundary renders them for the API and the cache.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Days returns the number of calendar days the window spans, rounding any
// partial trailing day up.
func (r DateRange) Days() int {
	d := r.To.Sub(r.From)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Previous returns the equal-length window immediately preceding this one.
func (r DateRange) Previous() DateRange {
	d := r.To.Sub(r.From)
	return DateRange{From: r.From.Add(-d), To: r.From}
}

// DayBucket is one aggregated day (or, for sub-day windows, one reading).
// AvgUnitPrice is nil when no rate resolved for any reading in the bucket.
type DayBucket struct {
	Date             time.Time
	TotalConsumption float64
	AvgUnitPrice     *float64 // pence/kWh
	ReadingCount     int
	HasData          bool
}

// MissingZone is a maximal contiguous run of days without reliable data,
// bounded by the nearest good day on each side (or one day past the range
// end for trailing gaps).
type MissingZone struct {
	Start time.Time
	End   time.Time
}

// DayComparison pairs the i-th day of the current window with the i-th day
// of the previous window. PercentChange is nil when the previous total is
// below the comparable threshold or no previous day lines up.
type DayComparison struct {
	Current       DayBucket
	Previous      *DayBucket
	PercentChange *float64
}

// PeriodResult is the output of a period comparison. Previous is nil unless
// a previous window was requested.
type PeriodResult struct {
	Current    []DayBucket
	Previous   []DayBucket
	Comparison []DayComparison
}

// UsageStats are the derived statistics for one utility over a window.
// Price fields are nil when no rate resolved for any bucket.
type UsageStats struct {
	TotalConsumption float64
	DailyAverage     float64
	PeakDay          *DayBucket
	AvgUnitPrice     *float64
	MinUnitPrice     *float64
	MaxUnitPrice     *float64
	HourlyAverages   [24]float64
	PeakHour         int
	LowHour          int      // -1 when no hour has a positive average
	EstimatedCost    *float64 // pounds
}

// MeterInfo identifies one meter and its current tariff.
type MeterInfo struct {
	ProductCode  string
	TariffCode   string
	SerialNumber string
	Mpan         string // used for both mpan/mprn
}

// startOfDayUTC truncates t to UTC midnight.
func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
