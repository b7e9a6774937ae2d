package marketdata

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
)

// BarRecord is the CSV row shape for bar fixtures. Timestamps are RFC 3339.
type BarRecord struct {
	Symbol    string  `csv:"symbol"`
	Timestamp string  `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    float64 `csv:"volume"`
}

// LoadBarsCSV reads a bar fixture file into memory, typically feeding a
// StaticBarSource.
func LoadBarsCSV(path string) ([]*Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadBarsCSV: %w", err)
	}
	defer f.Close()

	var records []*BarRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("LoadBarsCSV: unmarshal %s: %w", path, err)
	}

	out := make([]*Bar, 0, len(records))
	for i, r := range records {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("LoadBarsCSV: row %d: bad timestamp %q: %w", i+1, r.Timestamp, err)
		}
		out = append(out, &Bar{
			Symbol:    r.Symbol,
			Timestamp: ts.In(MarketLocation()),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return out, nil
}

// WriteBarsCSV writes bars in the fixture format LoadBarsCSV reads.
func WriteBarsCSV(path string, bars []*Bar) error {
	records := make([]*BarRecord, 0, len(bars))
	for _, b := range bars {
		records = append(records, &BarRecord{
			Symbol:    b.Symbol,
			Timestamp: b.Timestamp.Format(time.RFC3339),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteBarsCSV: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("WriteBarsCSV: marshal %s: %w", path, err)
	}
	return nil
}
