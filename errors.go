package main

import "fmt"

// UpstreamError reports a non-2xx response from the Octopus API. The caller
// decides how to surface it; per-slot fetches recover it into an empty slot.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("octopus api returned status %d: %s", e.StatusCode, e.Message)
}

// NoMeterError indicates the account has no meter for the requested utility.
type NoMeterError struct {
	Utility string
}

func (e *NoMeterError) Error() string {
	return fmt.Sprintf("no %s meter configured on the account", e.Utility)
}

// TariffCodeError indicates a tariff code that does not match the expected
// format (e.g. E-1R-AGILE-24-04-03-C).
type TariffCodeError struct {
	Code string
}

func (e *TariffCodeError) Error() string {
	return fmt.Sprintf("tariff code %q does not match the expected format", e.Code)
}

// RangeTooLargeError indicates a query window above the configured limit.
type RangeTooLargeError struct {
	Days int
	Max  int
}

func (e *RangeTooLargeError) Error() string {
	return fmt.Sprintf("date range of %d days exceeds the %d day limit", e.Days, e.Max)
}
