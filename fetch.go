package main

import (
	"log"
	"sync"
	"time"
)

// ConsumptionSource supplies half-hourly readings for a meter.
type ConsumptionSource interface {
	ElectricityConsumption(meter *MeterInfo, from, to time.Time) ([]Reading, error)
	GasConsumption(meter *MeterInfo, from, to time.Time) ([]Reading, error)
}

// TariffSource supplies unit rates and standing charges for a meter's
// current tariff.
type TariffSource interface {
	ElectricityRates(meter *MeterInfo, from, to time.Time) ([]Rate, error)
	GasRates(meter *MeterInfo, from, to time.Time) ([]Rate, error)
	StandingCharges(meter *MeterInfo, utility string) ([]StandingCharge, error)
}

// ConsumptionData holds one window's series per direction. A nil slice means
// the account has no meter for that slot or its fetch failed; partial data
// is an expected outcome, not an error.
type ConsumptionData struct {
	Import []Reading
	Export []Reading
	Gas    []Reading
}

// TariffData holds the pricing inputs for a window.
type TariffData struct {
	ElectricityRates           []Rate
	GasRates                   []Rate
	ElectricityStandingCharges []StandingCharge
	GasStandingCharges         []StandingCharge
}

// FetchResult is the assembled output of one orchestrated fetch.
type FetchResult struct {
	Range    DateRange
	Current  ConsumptionData
	Previous *ConsumptionData
	Tariffs  TariffData
}

// Fetcher issues the concurrent requests needed to populate a window and
// assembles a unified result. Every slot consults the cache before touching
// the network; a failing slot logs and yields nil rather than aborting the
// batch. Configuration errors (range limit, bad tariff codes) surface before
// any fetch is issued.
type Fetcher struct {
	Source  ConsumptionSource
	Pricing TariffSource
	Cache   *RangeCache

	Import *MeterInfo
	Export *MeterInfo
	Gas    *MeterInfo

	MaxRangeDays int
}

const defaultMaxRangeDays = 90

func (f *Fetcher) maxDays() int {
	if f.MaxRangeDays > 0 {
		return f.MaxRangeDays
	}
	return defaultMaxRangeDays
}

// FetchAll populates consumption for the window (and its equal-length
// predecessor when requested) plus the tariff inputs. Sibling slots run as
// independent goroutines writing to disjoint fields and are joined before
// assembly; no ordering is guaranteed between them.
func (f *Fetcher) FetchAll(rng DateRange, includePrevious bool) (*FetchResult, error) {
	if days := rng.Days(); days > f.maxDays() {
		return nil, &RangeTooLargeError{Days: days, Max: f.maxDays()}
	}

	result := &FetchResult{Range: rng}
	if includePrevious {
		result.Previous = &ConsumptionData{}
	}
	prev := rng.Previous()

	var wg sync.WaitGroup
	run := func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task()
		}()
	}

	run(func() {
		result.Current.Import = f.readings("consumption_import", f.Import, rng, f.Source.ElectricityConsumption)
	})
	run(func() {
		result.Current.Export = f.readings("consumption_export", f.Export, rng, f.Source.ElectricityConsumption)
	})
	run(func() {
		result.Current.Gas = f.readings("consumption_gas", f.Gas, rng, f.Source.GasConsumption)
	})

	if includePrevious {
		run(func() {
			result.Previous.Import = f.readings("consumption_import", f.Import, prev, f.Source.ElectricityConsumption)
		})
		run(func() {
			result.Previous.Export = f.readings("consumption_export", f.Export, prev, f.Source.ElectricityConsumption)
		})
		run(func() {
			result.Previous.Gas = f.readings("consumption_gas", f.Gas, prev, f.Source.GasConsumption)
		})
	}

	// Rates span the previous window too so its readings price the same way.
	rateRange := rng
	if includePrevious {
		rateRange.From = prev.From
	}
	run(func() {
		result.Tariffs.ElectricityRates = f.rates("rates_electricity", f.Import, rateRange, f.Pricing.ElectricityRates)
	})
	run(func() {
		result.Tariffs.GasRates = f.rates("rates_gas", f.Gas, rateRange, f.Pricing.GasRates)
	})
	run(func() {
		result.Tariffs.ElectricityStandingCharges = f.charges("standing_electricity", f.Import, "electricity")
	})
	run(func() {
		result.Tariffs.GasStandingCharges = f.charges("standing_gas", f.Gas, "gas")
	})

	wg.Wait()
	return result, nil
}

// FetchAllTariffs populates only the pricing inputs for a window.
func (f *Fetcher) FetchAllTariffs(rng DateRange) *TariffData {
	var out TariffData
	var wg sync.WaitGroup
	run := func(task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task()
		}()
	}

	run(func() { out.ElectricityRates = f.rates("rates_electricity", f.Import, rng, f.Pricing.ElectricityRates) })
	run(func() { out.GasRates = f.rates("rates_gas", f.Gas, rng, f.Pricing.GasRates) })
	run(func() {
		out.ElectricityStandingCharges = f.charges("standing_electricity", f.Import, "electricity")
	})
	run(func() { out.GasStandingCharges = f.charges("standing_gas", f.Gas, "gas") })

	wg.Wait()
	return &out
}

func (f *Fetcher) readings(key string, meter *MeterInfo, rng DateRange, fetch func(*MeterInfo, time.Time, time.Time) ([]Reading, error)) []Reading {
	if meter == nil {
		return nil
	}
	if v, ok := f.Cache.GetRange(key, rng.From, rng.To); ok {
		return v.([]Reading)
	}
	data, err := fetch(meter, rng.From, rng.To)
	if err != nil {
		log.Printf("[ERROR] fetch %s: %v", key, err)
		return nil
	}
	f.Cache.SetRange(key, rng.From, rng.To, data, ConsumptionTTL)
	return data
}

func (f *Fetcher) rates(key string, meter *MeterInfo, rng DateRange, fetch func(*MeterInfo, time.Time, time.Time) ([]Rate, error)) []Rate {
	if meter == nil {
		return nil
	}
	if v, ok := f.Cache.GetRange(key, rng.From, rng.To); ok {
		return v.([]Rate)
	}
	data, err := fetch(meter, rng.From, rng.To)
	if err != nil {
		log.Printf("[ERROR] fetch %s: %v", key, err)
		return nil
	}
	f.Cache.SetRange(key, rng.From, rng.To, data, TariffTTL)
	return data
}

func (f *Fetcher) charges(key string, meter *MeterInfo, utility string) []StandingCharge {
	if meter == nil {
		return nil
	}
	if v, ok := f.Cache.Get(key); ok {
		return v.([]StandingCharge)
	}
	data, err := f.Pricing.StandingCharges(meter, utility)
	if err != nil {
		log.Printf("[ERROR] fetch %s: %v", key, err)
		return nil
	}
	f.Cache.Set(key, data, TariffTTL)
	return data
}
