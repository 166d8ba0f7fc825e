package main

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

// UtilitySummary is the reconciled output for one (utility, direction) pair.
type UtilitySummary struct {
	Name   string
	Days   []DayBucket
	Stats  UsageStats
	Zones  []MissingZone
	Period PeriodResult
}

// App manages application dependencies and logic.
type App struct {
	Config  *Config
	Octopus *OctopusService
	Cache   *RangeCache
	Fetcher *Fetcher
}

// NewApp wires the service, cache and fetcher, and discovers the account's
// meters. Meter discovery failures (including bad tariff codes) are
// precondition failures and abort startup.
func NewApp(config *Config) (*App, error) {
	octopusService := NewOctopusService(http.DefaultTransport, config.APIKey)

	importMeter, exportMeter, gasMeter, err := octopusService.GetMeters(config.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meter and tariff details: %w", err)
	}
	if importMeter == nil && exportMeter == nil && gasMeter == nil {
		return nil, &NoMeterError{Utility: "any"}
	}

	cache := NewRangeCache()
	fetcher := &Fetcher{
		Source:       octopusService,
		Pricing:      octopusService,
		Cache:        cache,
		Import:       importMeter,
		Export:       exportMeter,
		Gas:          gasMeter,
		MaxRangeDays: config.MaxRangeDays,
	}

	return &App{
		Config:  config,
		Octopus: octopusService,
		Cache:   cache,
		Fetcher: fetcher,
	}, nil
}

// window derives the query range from explicit flags, falling back to the
// configured number of days ending at the latest available reading (or now,
// when the probe has nothing to say).
func (app *App) window() DateRange {
	if app.Config.StartTime != nil && app.Config.EndTime != nil {
		return DateRange{From: app.Config.StartTime.UTC(), To: app.Config.EndTime.UTC()}
	}

	end := time.Now().UTC()
	if app.Fetcher.Import != nil {
		if last, value, err := app.Octopus.GetLastReading(app.Fetcher.Import); err == nil && !last.IsZero() {
			end = last.Add(30 * time.Minute).UTC()
			log.Printf("Latest reading %s with value %.4f kWh", last.Format(time.RFC3339), value)
		}
	}
	from := startOfDayUTC(end.AddDate(0, 0, -app.Config.RangeDays))
	return DateRange{From: from, To: end}
}

// Run executes one fetch/aggregate/report cycle.
func (app *App) Run() error {
	rng := app.window()
	log.Printf("Using date range %s - %s", formatBoundary(rng.From), formatBoundary(rng.To))

	result, err := app.Fetcher.FetchAll(rng, app.Config.ComparePrevious)
	if err != nil {
		return fmt.Errorf("failed to fetch consumption data: %w", err)
	}

	summaries := buildSummaries(result, time.Now())
	if len(summaries) == 0 {
		return fmt.Errorf("no data returned for any meter")
	}

	for _, s := range summaries {
		logSummary(s)
	}

	if err := writeCSV(app.Config.OutputCSV, rng, summaries); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	log.Printf("Wrote CSV to %s", app.Config.OutputCSV)

	if app.Config.OutputXLSX != "" {
		if err := writeXLSX(app.Config.OutputXLSX, rng, summaries); err != nil {
			return fmt.Errorf("failed to write XLSX: %w", err)
		}
		log.Printf("Wrote XLSX to %s", app.Config.OutputXLSX)
	}

	return nil
}

// buildSummaries reconciles a fetch result into per-utility summaries.
// Slots with no data (no meter, or a recovered fetch failure) are skipped.
func buildSummaries(result *FetchResult, now time.Time) []UtilitySummary {
	type slot struct {
		name     string
		current  []Reading
		previous []Reading
		rates    []Rate
		charge   *StandingCharge
	}

	elecCharge := currentStandingCharge(result.Tariffs.ElectricityStandingCharges, now)
	gasCharge := currentStandingCharge(result.Tariffs.GasStandingCharges, now)

	slots := []slot{
		{name: "electricity-import", current: result.Current.Import, rates: result.Tariffs.ElectricityRates, charge: elecCharge},
		// Export earns at the unit rate but pays no standing charge.
		{name: "electricity-export", current: result.Current.Export, rates: result.Tariffs.ElectricityRates},
		{name: "gas", current: result.Current.Gas, rates: result.Tariffs.GasRates, charge: gasCharge},
	}
	if result.Previous != nil {
		slots[0].previous = result.Previous.Import
		slots[1].previous = result.Previous.Export
		slots[2].previous = result.Previous.Gas
	}

	var summaries []UtilitySummary
	for _, sl := range slots {
		if sl.current == nil {
			continue
		}

		days := aggregate(sl.current, sl.rates, result.Range)
		summary := UtilitySummary{
			Name:  sl.name,
			Days:  days,
			Stats: computeStats(days, sl.current, sl.rates, sl.charge, result.Range),
			Zones: findMissingZones(result.Range, days),
		}

		var prevDays []DayBucket
		if sl.previous != nil {
			prevDays = aggregate(sl.previous, sl.rates, result.Range.Previous())
		}
		summary.Period = compare(days, prevDays, now)

		summaries = append(summaries, summary)
	}
	return summaries
}

func logSummary(s UtilitySummary) {
	log.Printf("%s: %.2f kWh over %d days (%.2f kWh/day)",
		s.Name, s.Stats.TotalConsumption, len(s.Days), s.Stats.DailyAverage)
	if s.Stats.EstimatedCost != nil {
		log.Printf("%s: estimated cost £%.2f", s.Name, *s.Stats.EstimatedCost)
	}
	for _, z := range s.Zones {
		log.Printf("%s: missing data between %s and %s",
			s.Name, z.Start.Format("2006-01-02"), z.End.Format("2006-01-02"))
	}
}
