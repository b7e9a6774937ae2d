package marketdata

import (
	"fmt"
	"sync"
	"time"
)

// TimeOfDay is a clock time in the market time zone, stored as minutes since
// midnight. Minute bars are addressed by it, so integer arithmetic on the
// type walks the tape bar by bar.
type TimeOfDay int

// Regular session landmarks for US equities, in America/New_York.
const (
	SessionStart    TimeOfDay = 4 * 60          // earliest pre-market print
	MarketOpen      TimeOfDay = 9*60 + 30       // 09:30
	OpeningRangeEnd TimeOfDay = 10 * 60         // 10:00, the decision cutoff
	ForcedCloseTime TimeOfDay = 15*60 + 55      // 15:55, nothing stays open past this
	MarketClose     TimeOfDay = 16 * 60         // 16:00
)

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("ParseTimeOfDay: %w", err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// OnDay anchors the clock time to a calendar day in the market time zone.
func (t TimeOfDay) OnDay(day time.Time) time.Time {
	d := day.In(MarketLocation())
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, MarketLocation())
}

// ManagementCheckpoints returns the fixed intraday times at which open
// positions are re-evaluated: every 30 minutes from 10:30 through 15:30.
func ManagementCheckpoints() []TimeOfDay {
	var out []TimeOfDay
	for t := NewTimeOfDay(10, 30); t <= NewTimeOfDay(15, 30); t += 30 {
		out = append(out, t)
	}
	return out
}

var marketLocation struct {
	once sync.Once
	loc  *time.Location
}

// MarketLocation returns the exchange time zone. The zone database entry is
// required; running without it is not supported.
func MarketLocation() *time.Location {
	marketLocation.once.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			panic(fmt.Errorf("MarketLocation: %w", err))
		}
		marketLocation.loc = loc
	})
	return marketLocation.loc
}

// ParseDate parses a YYYY-MM-DD calendar date in the market time zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, MarketLocation())
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %w", err)
	}
	return t, nil
}

// DateKey formats a timestamp as its market-timezone calendar-day key.
func DateKey(t time.Time) string {
	return t.In(MarketLocation()).Format("2006-01-02")
}

// Midnight truncates a timestamp to its market-timezone calendar day.
func Midnight(t time.Time) time.Time {
	d := t.In(MarketLocation())
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, MarketLocation())
}

// TimeOfDayOf extracts the market-timezone clock time of a timestamp.
func TimeOfDayOf(t time.Time) TimeOfDay {
	d := t.In(MarketLocation())
	return NewTimeOfDay(d.Hour(), d.Minute())
}
