package main

import "time"

// Monthly gas tariffs carry no time-of-use structure; the API flags them
// with this payment method on their single rate entry.
const monthlyPaymentMethod = "direct_debit_monthly"

// fixedRate reports whether the rate set is a single monthly entry that
// applies uniformly regardless of timestamp.
func fixedRate(rates []Rate) bool {
	return len(rates) == 1 && rates[0].PaymentMethod == monthlyPaymentMethod
}

// resolveRate returns the unit rate in effect at t, or nil when none
// resolves. An unresolved rate is not an error; the reading is simply
// excluded from price-based statistics. Overlapping validity windows resolve
// to the first match in input order.
func resolveRate(rates []Rate, t time.Time) *float64 {
	if fixedRate(rates) {
		v := rates[0].ValueIncVat
		return &v
	}
	for _, r := range rates {
		// Handle nil ValidFrom: treat as before zero time
		startBefore := r.ValidFrom == nil || !t.Before(*r.ValidFrom)
		// Handle nil ValidTo: treat as after Max(time.Time)
		endAfter := r.ValidTo == nil || t.Before(*r.ValidTo)

		if startBefore && endAfter {
			v := r.ValueIncVat
			return &v
		}
	}
	return nil
}

// currentStandingCharge picks, among charges whose validity window contains
// now, the one with the latest ValidFrom (most recently started agreement
// wins). Returns nil when no charge is currently valid.
func currentStandingCharge(charges []StandingCharge, now time.Time) *StandingCharge {
	var current *StandingCharge
	for i := range charges {
		c := charges[i]
		startBefore := c.ValidFrom == nil || !now.Before(*c.ValidFrom)
		endAfter := c.ValidTo == nil || now.Before(*c.ValidTo)
		if !startBefore || !endAfter {
			continue
		}
		if current == nil {
			current = &c
			continue
		}
		switch {
		case c.ValidFrom == nil:
			// An open start never beats a dated one.
		case current.ValidFrom == nil || c.ValidFrom.After(*current.ValidFrom):
			current = &c
		}
	}
	return current
}
