package store

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"VRSentinel/internal/model"
)

// seriesPayload is the msgpack layout of the payload column.
type seriesPayload struct {
	Source string         `msgpack:"source"`
	Bars   []barPayload   `msgpack:"bars"`
	Splits []splitPayload `msgpack:"splits"`
}

type barPayload struct {
	Date     int64    `msgpack:"d"`
	Open     float64  `msgpack:"o"`
	High     float64  `msgpack:"h"`
	Low      float64  `msgpack:"l"`
	Close    float64  `msgpack:"c"`
	AdjClose *float64 `msgpack:"a,omitempty"`
	Volume   float64  `msgpack:"v"`
}

type splitPayload struct {
	Date        int64   `msgpack:"d"`
	Numerator   float64 `msgpack:"n"`
	Denominator float64 `msgpack:"m"`
}

func encodeSeries(entry model.CachedSeries) ([]byte, error) {
	p := seriesPayload{
		Source: entry.Source,
		Bars:   make([]barPayload, len(entry.Series.Points)),
		Splits: make([]splitPayload, len(entry.Splits)),
	}
	for i, b := range entry.Series.Points {
		p.Bars[i] = barPayload{
			Date: b.Date.Unix(), Open: b.Open, High: b.High, Low: b.Low,
			Close: b.Close, AdjClose: b.AdjustedClose, Volume: b.Volume,
		}
	}
	for i, s := range entry.Splits {
		p.Splits[i] = splitPayload{Date: s.Date.Unix(), Numerator: s.Numerator, Denominator: s.Denominator}
	}
	return msgpack.Marshal(&p)
}

func decodeSeries(symbol string, data []byte, fetchedAt time.Time) (model.CachedSeries, error) {
	var p seriesPayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return model.CachedSeries{}, err
	}
	points := make([]model.PricePoint, len(p.Bars))
	for i, b := range p.Bars {
		points[i] = model.PricePoint{
			Date: time.Unix(b.Date, 0).UTC(), Open: b.Open, High: b.High, Low: b.Low,
			Close: b.Close, AdjustedClose: b.AdjClose, Volume: b.Volume,
		}
	}
	splits := make([]model.SplitEvent, len(p.Splits))
	for i, s := range p.Splits {
		splits[i] = model.SplitEvent{Date: time.Unix(s.Date, 0).UTC(), Numerator: s.Numerator, Denominator: s.Denominator}
	}
	return model.CachedSeries{
		Series:    model.NewPriceSeries(symbol, points),
		Splits:    model.SortSplits(splits),
		Source:    p.Source,
		FetchedAt: fetchedAt,
	}, nil
}
