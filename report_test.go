package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleSummaries(t *testing.T) (DateRange, []UtilitySummary) {
	t.Helper()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rng := DateRange{From: start, To: start.AddDate(0, 0, 7)}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	result := &FetchResult{
		Range: rng,
		Current: ConsumptionData{
			Import: halfHourReadings(start, 48, 0.5),
		},
		Previous: &ConsumptionData{
			Import: halfHourReadings(rng.Previous().From, 48, 1.0),
		},
		Tariffs: TariffData{
			ElectricityRates:           []Rate{{ValueIncVat: 20}},
			ElectricityStandingCharges: []StandingCharge{{ValueIncVat: 50, ValidFrom: ptrTime(start)}},
		},
	}
	return rng, buildSummaries(result, now)
}

func TestWriteCSV(t *testing.T) {
	rng, summaries := sampleSummaries(t)
	path := filepath.Join(t.TempDir(), "usage.csv")

	require.NoError(t, writeCSV(path, rng, summaries))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(records), 2)
	require.Equal(t, "Utility", records[0][0])

	// First data row: the one aggregated day, halved against its baseline.
	require.Equal(t, "electricity-import", records[1][0])
	require.Equal(t, "2024-03-01", records[1][1])
	require.Equal(t, "24.0000", records[1][2])
	require.Equal(t, "48.0000", records[1][6])
	require.Equal(t, "-50.00", records[1][7])
}

func TestWriteCSVNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")
	err := writeCSV(path, DateRange{}, nil)
	require.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	rng, summaries := sampleSummaries(t)
	path := filepath.Join(t.TempDir(), "usage.xlsx")

	require.NoError(t, writeXLSX(path, rng, summaries))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
