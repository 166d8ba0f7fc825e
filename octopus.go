package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	octopus "github.com/mgazza/go-octopus-energy/client"
	"github.com/mgazza/go-octopus-energy/client/accounts"
	"github.com/mgazza/go-octopus-energy/client/electricity_meter_points"
	"github.com/mgazza/go-octopus-energy/client/products"
)

const apiBaseURL = "https://api.octopus.energy/v1"

// Tariff codes look like E-1R-AGILE-24-04-03-C or G-1R-VAR-22-11-01-C; the
// middle section is the product code.
var tariffCodePattern = regexp.MustCompile(`^[EG]-\d[A-Z]-(.+)-[A-Z]$`)

// formatBoundary renders a window boundary as the API expects it, always at
// UTC regardless of the caller's location. Every query parameter and cache
// key derives its boundary strings from here.
func formatBoundary(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// OctopusService handles interactions with the Octopus Energy API. The
// generated client covers accounts, products, electricity consumption and
// electricity unit rates; gas consumption, gas unit rates and standing
// charges are not in its surface, so those go direct against the same API
// with the same Basic authentication.
type OctopusService struct {
	Client     *octopus.OctopusEnergyRESTAPI
	HTTPClient *http.Client
	APIKey     string
	BaseURL    string
}

// NewOctopusService creates a new OctopusService with pre-configured
// authentication (API key as username, empty password).
func NewOctopusService(rt http.RoundTripper, apiKey string) *OctopusService {
	cfg := octopus.DefaultTransportConfig()
	transport := httptransport.New(cfg.Host, cfg.BasePath, cfg.Schemes)
	transport.Transport = rt
	transport.DefaultAuthentication = httptransport.BasicAuth(apiKey, "")

	client := octopus.New(transport, strfmt.Default)
	return &OctopusService{
		Client:     client,
		HTTPClient: &http.Client{Transport: rt},
		APIKey:     apiKey,
		BaseURL:    apiBaseURL,
	}
}

// validateTariffCode checks the expected tariff code shape and returns the
// embedded product code section.
func validateTariffCode(code string) (string, error) {
	m := tariffCodePattern.FindStringSubmatch(code)
	if m == nil {
		return "", &TariffCodeError{Code: code}
	}
	return m[1], nil
}

// GetMeters fetches the account's meters and their current tariffs.
// Returns the import, export and gas meter; a nil meter means the account
// has no meter point for that slot.
func (s *OctopusService) GetMeters(accountID string) (*MeterInfo, *MeterInfo, *MeterInfo, error) {
	params := accounts.NewGetAccountParams().WithAccountID(accountID)
	response, err := s.Client.Accounts.GetAccount(params, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch account details: %w", err)
	}

	if len(response.Payload.Properties) < 1 {
		return nil, nil, nil, fmt.Errorf("no properties found on the account")
	}

	property := response.Payload.Properties[0]

	// Fetch all products to map product codes
	productParams := products.NewListProductsParams()
	productResponse, err := s.Client.Products.ListProducts(productParams, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	findProductCode := func(tariffCode string) (string, error) {
		fallback, err := validateTariffCode(tariffCode)
		if err != nil {
			return "", err
		}
		for _, p := range productResponse.Payload.Results {
			if strings.Contains(tariffCode, *p.Code) {
				return *p.Code, nil
			}
		}
		return fallback, nil
	}

	var importMeter, exportMeter, gasMeter *MeterInfo
	for _, meterPoint := range property.ElectricityMeterPoints {
		if len(meterPoint.Meters) < 1 || len(meterPoint.Agreements) < 1 {
			continue
		}

		// The last agreement is the one currently in force.
		tariffCode := meterPoint.Agreements[len(meterPoint.Agreements)-1].TariffCode
		productCode, err := findProductCode(tariffCode)
		if err != nil {
			return nil, nil, nil, err
		}

		meter := &MeterInfo{
			ProductCode:  productCode,
			TariffCode:   tariffCode,
			SerialNumber: meterPoint.Meters[0].SerialNumber,
			Mpan:         meterPoint.Mpan,
		}
		if meterPoint.IsExport {
			exportMeter = meter
		} else {
			importMeter = meter
		}
	}

	for _, meterPoint := range property.GasMeterPoints {
		if len(meterPoint.Meters) < 1 || len(meterPoint.Agreements) < 1 {
			continue
		}

		tariffCode := meterPoint.Agreements[len(meterPoint.Agreements)-1].TariffCode
		productCode, err := findProductCode(tariffCode)
		if err != nil {
			return nil, nil, nil, err
		}

		gasMeter = &MeterInfo{
			ProductCode:  productCode,
			TariffCode:   tariffCode,
			SerialNumber: meterPoint.Meters[0].SerialNumber,
			Mpan:         meterPoint.Mprn,
		}
	}

	return importMeter, exportMeter, gasMeter, nil
}

// GetLastReading fetches the start date time and value of the most recent
// reading on the meter.
func (s *OctopusService) GetLastReading(meter *MeterInfo) (time.Time, float64, error) {
	orderBy := "-period"
	params := electricity_meter_points.NewListConsumptionForAnElectricityMeterParams().
		WithMpan(meter.Mpan).
		WithSerialNumber(meter.SerialNumber).
		WithOrderBy(&orderBy)

	response, err := s.Client.ElectricityMeterPoints.ListConsumptionForAnElectricityMeter(params, nil)
	if err != nil {
		return time.Time{}, 0, err
	}

	if len(response.Payload.Results) == 0 {
		return time.Time{}, 0, nil
	}

	r := response.Payload.Results[0]
	return time.Time(*r.IntervalStart), r.Consumption, nil
}

// ElectricityConsumption fetches half-hourly readings for an electricity
// meter over [from, to), following pagination.
func (s *OctopusService) ElectricityConsumption(meter *MeterInfo, from, to time.Time) ([]Reading, error) {
	if meter == nil {
		return nil, &NoMeterError{Utility: "electricity"}
	}

	total := 0
	page := int64(1)
	pageSize := int64(336) // two weeks of 30 mins
	params := electricity_meter_points.NewListConsumptionForAnElectricityMeterParams().
		WithMpan(meter.Mpan).
		WithSerialNumber(meter.SerialNumber).
		WithPeriodFrom((*strfmt.DateTime)(&from)).
		WithPeriodTo((*strfmt.DateTime)(&to)).
		WithPageSize(&pageSize).
		WithPage(&page)

	var out []Reading
	for {
		response, err := s.Client.ElectricityMeterPoints.ListConsumptionForAnElectricityMeter(params, nil)
		if err != nil {
			return nil, fmt.Errorf("error querying octopus data: %w", err)
		}
		if !response.IsSuccess() {
			return nil, fmt.Errorf("error querying octopus data: %v", response.Error())
		}

		for _, r := range response.Payload.Results {
			total++
			start := time.Time(*r.IntervalStart).UTC()
			out = append(out, Reading{
				IntervalStart: start,
				IntervalEnd:   start.Add(30 * time.Minute),
				Consumption:   r.Consumption,
			})
		}

		if response.Payload.Next == nil {
			break
		}
		page++
	}

	log.Printf("Fetched %d electricity records for %s", total, meter.Mpan)

	return sortReadings(out), nil
}

// ElectricityRates fetches standard unit rates for the meter's tariff over
// [from, to) with pagination.
func (s *OctopusService) ElectricityRates(meter *MeterInfo, from, to time.Time) ([]Rate, error) {
	if meter == nil {
		return nil, &NoMeterError{Utility: "electricity"}
	}

	var allRates []Rate
	pageSize := int64(672) // Fetch two weeks of half-hour slots per page
	page := int64(1)

	params := products.NewListElectricityTariffStandardUnitRatesParams().
		WithProductCode(meter.ProductCode).
		WithTariffCode(meter.TariffCode).
		WithPeriodFrom((*strfmt.DateTime)(&from)).
		WithPeriodTo((*strfmt.DateTime)(&to)).
		WithPageSize(&pageSize)

	for {
		params.WithPage(&page)
		response, err := s.Client.Products.ListElectricityTariffStandardUnitRates(params, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch unit rates: %w", err)
		}

		for _, rate := range response.Payload.Results {
			allRates = append(allRates, Rate{
				ValueIncVat: rate.ValueIncVat,
				ValidFrom:   (*time.Time)(rate.ValidFrom),
				ValidTo:     (*time.Time)(rate.ValidTo),
			})
		}

		if response.Payload.Next == nil {
			break
		}

		page++
	}

	return allRates, nil
}

// consumptionPage mirrors the upstream consumption page shape.
type consumptionPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []struct {
		Consumption   float64   `json:"consumption"`
		IntervalStart time.Time `json:"interval_start"`
		IntervalEnd   time.Time `json:"interval_end"`
	} `json:"results"`
}

// ratePage mirrors the upstream unit rate / standing charge page shape.
// Standing charge results simply never set payment_method.
type ratePage struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []struct {
		ValueExcVat   float64    `json:"value_exc_vat"`
		ValueIncVat   float64    `json:"value_inc_vat"`
		ValidFrom     *time.Time `json:"valid_from"`
		ValidTo       *time.Time `json:"valid_to"`
		PaymentMethod string     `json:"payment_method"`
	} `json:"results"`
}

// getJSON performs an authenticated GET and decodes the body into out.
// Non-2xx statuses become an UpstreamError carrying status and message.
func (s *OctopusService) getJSON(endpoint string, out any) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(s.APIKey, "")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &UpstreamError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return nil
}

// GasConsumption fetches half-hourly readings for a gas meter over
// [from, to), following pagination via the next link.
func (s *OctopusService) GasConsumption(meter *MeterInfo, from, to time.Time) ([]Reading, error) {
	if meter == nil {
		return nil, &NoMeterError{Utility: "gas"}
	}

	endpoint := fmt.Sprintf("%s/gas-meter-points/%s/meters/%s/consumption/?period_from=%s&period_to=%s&page_size=336",
		s.BaseURL, meter.Mpan, meter.SerialNumber,
		url.QueryEscape(formatBoundary(from)), url.QueryEscape(formatBoundary(to)))

	var out []Reading
	total := 0
	for next := &endpoint; next != nil; {
		var page consumptionPage
		if err := s.getJSON(*next, &page); err != nil {
			return nil, fmt.Errorf("error querying gas data: %w", err)
		}

		for _, r := range page.Results {
			total++
			out = append(out, Reading{
				IntervalStart: r.IntervalStart.UTC(),
				IntervalEnd:   r.IntervalEnd.UTC(),
				Consumption:   r.Consumption,
			})
		}

		next = page.Next
	}

	log.Printf("Fetched %d gas records for %s", total, meter.Mpan)

	return sortReadings(out), nil
}

// GasRates fetches standard unit rates for a gas tariff over [from, to).
// Monthly gas tariffs come back as a single entry flagged with the
// direct_debit_monthly payment method.
func (s *OctopusService) GasRates(meter *MeterInfo, from, to time.Time) ([]Rate, error) {
	if meter == nil {
		return nil, &NoMeterError{Utility: "gas"}
	}

	endpoint := fmt.Sprintf("%s/products/%s/gas-tariffs/%s/standard-unit-rates/?period_from=%s&period_to=%s",
		s.BaseURL, meter.ProductCode, meter.TariffCode,
		url.QueryEscape(formatBoundary(from)), url.QueryEscape(formatBoundary(to)))

	var allRates []Rate
	for next := &endpoint; next != nil; {
		var page ratePage
		if err := s.getJSON(*next, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch gas unit rates: %w", err)
		}

		for _, r := range page.Results {
			allRates = append(allRates, Rate{
				ValueIncVat:   r.ValueIncVat,
				ValidFrom:     r.ValidFrom,
				ValidTo:       r.ValidTo,
				PaymentMethod: r.PaymentMethod,
			})
		}

		next = page.Next
	}

	return allRates, nil
}

// StandingCharges fetches the standing charge windows for a meter's tariff.
// utility selects the electricity or gas tariff path.
func (s *OctopusService) StandingCharges(meter *MeterInfo, utility string) ([]StandingCharge, error) {
	if meter == nil {
		return nil, &NoMeterError{Utility: utility}
	}

	tariffKind := "electricity-tariffs"
	if utility == "gas" {
		tariffKind = "gas-tariffs"
	}
	endpoint := fmt.Sprintf("%s/products/%s/%s/%s/standing-charges/",
		s.BaseURL, meter.ProductCode, tariffKind, meter.TariffCode)

	var charges []StandingCharge
	for next := &endpoint; next != nil; {
		var page ratePage
		if err := s.getJSON(*next, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch standing charges: %w", err)
		}

		for _, r := range page.Results {
			charges = append(charges, StandingCharge{
				ValueIncVat: r.ValueIncVat,
				ValidFrom:   r.ValidFrom,
				ValidTo:     r.ValidTo,
			})
		}

		next = page.Next
	}

	return charges, nil
}

// sortReadings orders a series ascending by interval start. Duplicate slots
// are not expected from the API but must not break processing; the value
// seen last wins.
func sortReadings(in []Reading) []Reading {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].IntervalStart.Before(in[j].IntervalStart)
	})

	out := make([]Reading, 0, len(in))
	for _, r := range in {
		if n := len(out); n > 0 && out[n-1].IntervalStart.Equal(r.IntervalStart) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}
