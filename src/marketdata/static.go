package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// StaticBarSource is an in-memory BarSource backed by a fixed bar set. It
// serves tests and CSV-driven runs. Loading must finish before concurrent
// reads begin; after that the source is read-only.
type StaticBarSource struct {
	days map[string]map[string][]*Bar // date key -> symbol -> ordered bars
}

func NewStaticBarSource(bars ...*Bar) *StaticBarSource {
	s := &StaticBarSource{days: make(map[string]map[string][]*Bar)}
	s.Add(bars...)
	return s
}

// Add appends bars to the source, keeping every symbol-day sequence ordered
// regardless of insertion order.
func (s *StaticBarSource) Add(bars ...*Bar) {
	touched := make(map[string]map[string]bool)
	for _, b := range bars {
		key := DateKey(b.Timestamp)
		if s.days[key] == nil {
			s.days[key] = make(map[string][]*Bar)
		}
		s.days[key][b.Symbol] = append(s.days[key][b.Symbol], b)

		if touched[key] == nil {
			touched[key] = make(map[string]bool)
		}
		touched[key][b.Symbol] = true
	}

	for key, symbols := range touched {
		for symbol := range symbols {
			seq := s.days[key][symbol]
			sort.SliceStable(seq, func(i, j int) bool {
				return seq[i].Timestamp.Before(seq[j].Timestamp)
			})
		}
	}
}

func (s *StaticBarSource) TradingDays(_ context.Context, start, end time.Time) ([]time.Time, error) {
	lo, hi := Midnight(start), Midnight(end)

	var out []time.Time
	for key := range s.days {
		day, err := ParseDate(key)
		if err != nil {
			return nil, fmt.Errorf("StaticBarSource.TradingDays: bad day key %q: %w", key, err)
		}
		if day.Before(lo) || day.After(hi) {
			continue
		}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (s *StaticBarSource) SymbolsWithData(_ context.Context, day time.Time) ([]string, error) {
	symbols := s.days[DateKey(day)]
	out := make([]string, 0, len(symbols))
	for symbol := range symbols {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out, nil
}

func (s *StaticBarSource) MinuteBars(_ context.Context, symbol string, day time.Time, from, to TimeOfDay) ([]*Bar, error) {
	var out []*Bar
	for _, b := range s.days[DateKey(day)][symbol] {
		tod := TimeOfDayOf(b.Timestamp)
		if tod < from || tod > to {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
