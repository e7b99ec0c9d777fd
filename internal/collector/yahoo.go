package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"VRSentinel/internal/model"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements PriceProvider using the Yahoo Finance chart API.
type YahooProvider struct {
	BaseURL   string
	Tries     int
	Backoff   time.Duration
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	log       zerolog.Logger
}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider(proxyURL string, timeout time.Duration, log zerolog.Logger) *YahooProvider {
	return &YahooProvider{
		BaseURL: DefaultYahooBaseURL,
		Tries:   3,
		Backoff: time.Second,
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		log: log.With().Str("provider", "yahoo").Logger(),
	}
}

func (f *YahooProvider) Name() string { return "yahoo" }

func (f *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Splits map[string]struct {
					Date        int64   `json:"date"`
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
				} `json:"splits"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(values []interface{}, i int) interface{} {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func (f *YahooProvider) fetchChart(ctx context.Context, symbol, interval string, from, to time.Time) (*yahooChart, error) {
	q := url.Values{
		"interval":             {interval},
		"period1":              {strconv.FormatInt(from.Unix(), 10)},
		"period2":              {strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10)},
		"events":               {"split"},
		"includeAdjustedClose": {"true"},
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	var chart yahooChart
	if err := getJSON(ctx, f.Client, u, map[string]string{"User-Agent": "Mozilla/5.0"}, &chart, f.Tries, f.Backoff, f.log); err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}
	return &chart, nil
}

func (f *YahooProvider) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	chart, err := f.fetchChart(ctx, symbol, "1d", from, to)
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}
	offset := time.Duration(result.Meta.GMTOffset) * time.Second

	bars := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(at(quote.Open, i))
		h := toFloat(at(quote.High, i))
		l := toFloat(at(quote.Low, i))
		c := toFloat(at(quote.Close, i))
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bar := model.PricePoint{
			// exchange-local calendar day
			Date:   time.Unix(ts, 0).UTC().Add(offset),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(at(quote.Volume, i)),
		}
		if v := at(adj, i); v != nil {
			a := toFloat(v)
			bar.AdjustedClose = &a
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (f *YahooProvider) FetchSplits(ctx context.Context, symbol string, from, to time.Time) ([]model.SplitEvent, error) {
	// events are returned for any interval; monthly keeps the payload small
	chart, err := f.fetchChart(ctx, symbol, "1mo", from, to)
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	offset := time.Duration(result.Meta.GMTOffset) * time.Second

	splits := make([]model.SplitEvent, 0, len(result.Events.Splits))
	for _, s := range result.Events.Splits {
		splits = append(splits, model.SplitEvent{
			Date:        time.Unix(s.Date, 0).UTC().Add(offset),
			Numerator:   s.Numerator,
			Denominator: s.Denominator,
		})
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].Date.Before(splits[j].Date) })
	return splits, nil
}
