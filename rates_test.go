// rates_test.go
package main

import (
	"testing"
	"time"
)

func floatPtr(f float64) *float64 {
	return &f
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func TestResolveRate(t *testing.T) {
	tests := []struct {
		name   string
		time   time.Time
		rates  []Rate
		expect *float64
	}{
		{
			name: "Match within range",
			time: time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 10.5, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC))},
			},
			expect: floatPtr(10.5),
		},
		{
			name: "No match, before all ranges",
			time: time.Date(2025, 1, 1, 11, 45, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 10.5, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC))},
			},
			expect: nil,
		},
		{
			name: "No match, after all ranges",
			time: time.Date(2025, 1, 1, 12, 45, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 10.5, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC))},
			},
			expect: nil,
		},
		{
			name: "Multiple ranges, match in the middle",
			time: time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 5.0, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 12, 10, 0, 0, time.UTC))},
				{ValueIncVat: 10.5, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 10, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 12, 20, 0, 0, time.UTC))},
				{ValueIncVat: 7.5, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 20, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC))},
			},
			expect: floatPtr(10.5),
		},
		{
			name: "Overlapping windows, first match wins",
			time: time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 5.0, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC))},
				{ValueIncVat: 10.5, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2025, 1, 1, 13, 0, 0, 0, time.UTC))},
			},
			expect: floatPtr(5.0),
		},
		{
			name:   "Empty rates list",
			time:   time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC),
			rates:  []Rate{},
			expect: nil,
		},
		{
			name: "Open-ended rate",
			time: time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 10.5, ValidFrom: ptrTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)), ValidTo: nil},
			},
			expect: floatPtr(10.5),
		},
		{
			name: "Open-starting rate",
			time: time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 10.5, ValidFrom: nil, ValidTo: ptrTime(time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC))},
			},
			expect: floatPtr(10.5),
		},
		{
			name: "Fully open rate",
			time: time.Date(2025, 1, 1, 12, 15, 0, 0, time.UTC),
			rates: []Rate{
				{ValueIncVat: 10.5, ValidFrom: nil, ValidTo: nil},
			},
			expect: floatPtr(10.5),
		},
		{
			name: "Fixed monthly rate applies outside its window",
			time: time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC),
			rates: []Rate{
				{
					ValueIncVat:   6.33,
					ValidFrom:     ptrTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
					ValidTo:       ptrTime(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
					PaymentMethod: monthlyPaymentMethod,
				},
			},
			expect: floatPtr(6.33),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := resolveRate(test.rates, test.time)

			if test.expect == nil && result != nil {
				t.Errorf("expected nil, got %.2f", *result)
			} else if test.expect != nil && result == nil {
				t.Errorf("expected %.2f, got nil", *test.expect)
			} else if test.expect != nil && result != nil && *test.expect != *result {
				t.Errorf("expected %.2f, got %.2f", *test.expect, *result)
			}
		})
	}
}

func TestResolveRateFixedIsTimestampIndependent(t *testing.T) {
	rates := []Rate{
		{ValueIncVat: 6.33, PaymentMethod: monthlyPaymentMethod},
	}

	a := resolveRate(rates, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	b := resolveRate(rates, time.Date(2035, 12, 31, 23, 30, 0, 0, time.UTC))
	if a == nil || b == nil || *a != *b {
		t.Fatalf("fixed rate should resolve identically for any timestamp, got %v and %v", a, b)
	}
}

func TestCurrentStandingCharge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		charges []StandingCharge
		expect  *float64
	}{
		{
			name:    "No charges",
			charges: nil,
			expect:  nil,
		},
		{
			name: "None currently valid",
			charges: []StandingCharge{
				{ValueIncVat: 40, ValidFrom: ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), ValidTo: ptrTime(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
			},
			expect: nil,
		},
		{
			name: "Single open-ended charge",
			charges: []StandingCharge{
				{ValueIncVat: 47.85, ValidFrom: ptrTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))},
			},
			expect: floatPtr(47.85),
		},
		{
			name: "Latest start wins among overlapping agreements",
			charges: []StandingCharge{
				{ValueIncVat: 40, ValidFrom: ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
				{ValueIncVat: 52.1, ValidFrom: ptrTime(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))},
				{ValueIncVat: 45, ValidFrom: ptrTime(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))},
			},
			expect: floatPtr(52.1),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := currentStandingCharge(test.charges, now)

			if test.expect == nil && result != nil {
				t.Errorf("expected nil, got %.2f", result.ValueIncVat)
			} else if test.expect != nil && result == nil {
				t.Errorf("expected %.2f, got nil", *test.expect)
			} else if test.expect != nil && result != nil && *test.expect != result.ValueIncVat {
				t.Errorf("expected %.2f, got %.2f", *test.expect, result.ValueIncVat)
			}
		})
	}
}
