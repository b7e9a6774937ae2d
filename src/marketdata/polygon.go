package marketdata

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"
)

// PolygonFetcher pulls minute aggregates from the Polygon REST API. It is
// the ingestion edge: fetched bars are written into the ClickHouse store
// rather than served to the simulator directly.
type PolygonFetcher struct {
	client *polygon.Client
}

func NewPolygonFetcher(apiKey string) *PolygonFetcher {
	return &PolygonFetcher{client: polygon.New(apiKey)}
}

// FetchMinuteBars returns adjusted one-minute bars for symbol between from
// and to, ordered ascending. The iterator pages through the API internally.
func (f *PolygonFetcher) FetchMinuteBars(ctx context.Context, symbol string, from, to time.Time) ([]*Bar, error) {
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Minute,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithOrder(models.Asc).WithLimit(50000).WithAdjusted(true)

	iter := f.client.ListAggs(ctx, params)

	var out []*Bar
	for iter.Next() {
		item := iter.Item()
		out = append(out, &Bar{
			Symbol:    symbol,
			Timestamp: time.Time(item.Timestamp).In(MarketLocation()),
			Open:      item.Open,
			High:      item.High,
			Low:       item.Low,
			Close:     item.Close,
			Volume:    item.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("FetchMinuteBars: %s: %w", symbol, err)
	}

	log.Debugf("fetched %d minute bars for %s between %s and %s", len(out), symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return out, nil
}
