package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"VRSentinel/internal/model"
)

const (
	DefaultFMPBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultFMPStableURL = "https://financialmodelingprep.com/stable"
)

// FMPProvider implements PriceProvider using the Financial Modeling Prep REST API.
type FMPProvider struct {
	BaseURL   string
	StableURL string
	APIKey    string
	Tries     int
	Backoff   time.Duration
	Client    *http.Client
	log       zerolog.Logger
}

// NewFMPProvider creates a provider with optional proxy support.
func NewFMPProvider(apiKey, proxyURL string, timeout time.Duration, log zerolog.Logger) *FMPProvider {
	return &FMPProvider{
		BaseURL:   DefaultFMPBaseURL,
		StableURL: DefaultFMPStableURL,
		APIKey:    apiKey,
		Tries:     3,
		Backoff:   1500 * time.Millisecond,
		Client:    newHTTPClient(proxyURL, timeout),
		log:       log.With().Str("provider", "fmp").Logger(),
	}
}

func (f *FMPProvider) Name() string { return "fmp" }

// fmpBar is one entry of historical-price-full.
type fmpBar struct {
	Date            string   `json:"date"`
	Open            float64  `json:"open"`
	High            float64  `json:"high"`
	Low             float64  `json:"low"`
	Close           float64  `json:"close"`
	AdjClose        *float64 `json:"adjClose"`
	UnadjustedClose float64  `json:"unadjustedClose"`
	Volume          float64  `json:"volume"`
}

// fmpSplit is one entry of the stable splits endpoint.
type fmpSplit struct {
	Date        string  `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
}

func (f *FMPProvider) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/historical-price-full/%s?%s", f.BaseURL, url.PathEscape(symbol), f.query(url.Values{
		"from": {from.Format("2006-01-02")},
		"to":   {to.Format("2006-01-02")},
	}))

	var raw json.RawMessage
	if err := getJSON(ctx, f.Client, endpoint, nil, &raw, f.Tries, f.Backoff, f.log); err != nil {
		return nil, fmt.Errorf("fmp bars %s: %w", symbol, err)
	}
	fbars, err := decodeFMPHistorical(raw)
	if err != nil {
		return nil, fmt.Errorf("fmp bars %s: %w", symbol, err)
	}

	bars := make([]model.PricePoint, 0, len(fbars))
	for _, fb := range fbars {
		d, err := time.Parse("2006-01-02", fb.Date)
		if err != nil {
			f.log.Debug().Str("symbol", symbol).Str("date", fb.Date).Msg("skipping bar with unparseable date")
			continue
		}
		c := fb.Close
		if c == 0 && fb.UnadjustedClose > 0 {
			c = fb.UnadjustedClose
		}
		bars = append(bars, model.PricePoint{
			Date:          d,
			Open:          fb.Open,
			High:          fb.High,
			Low:           fb.Low,
			Close:         c,
			AdjustedClose: fb.AdjClose,
			Volume:        fb.Volume,
		})
	}
	return bars, nil
}

func (f *FMPProvider) FetchSplits(ctx context.Context, symbol string, from, to time.Time) ([]model.SplitEvent, error) {
	endpoint := fmt.Sprintf("%s/splits?%s", f.StableURL, f.query(url.Values{
		"symbol": {symbol},
		"from":   {from.Format("2006-01-02")},
		"to":     {to.Format("2006-01-02")},
	}))
	var fsplits []fmpSplit
	if err := getJSON(ctx, f.Client, endpoint, nil, &fsplits, f.Tries, f.Backoff, f.log); err != nil {
		return nil, fmt.Errorf("fmp splits %s: %w", symbol, err)
	}
	splits := make([]model.SplitEvent, 0, len(fsplits))
	for _, fs := range fsplits {
		d, err := time.Parse("2006-01-02", fs.Date)
		if err != nil {
			continue
		}
		splits = append(splits, model.SplitEvent{Date: d, Numerator: fs.Numerator, Denominator: fs.Denominator})
	}
	return splits, nil
}

func (f *FMPProvider) query(v url.Values) string {
	if f.APIKey != "" {
		v.Set("apikey", f.APIKey)
	}
	return v.Encode()
}

// decodeFMPHistorical accepts both {"symbol":..,"historical":[..]} and a bare list.
func decodeFMPHistorical(raw json.RawMessage) ([]fmpBar, error) {
	var wrapped struct {
		Historical []fmpBar `json:"historical"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Historical, nil
	}
	var list []fmpBar
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode historical: %w", err)
	}
	return list, nil
}
