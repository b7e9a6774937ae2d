package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	log "github.com/sirupsen/logrus"
)

// ClickHouseConfig locates the columnar bar store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Table    string
}

// ClickHouseBarSource serves minute bars from a ClickHouse table ordered by
// (symbol, timestamp). Timestamps are stored in UTC and converted to the
// market time zone on read. The native connection is safe for concurrent
// queries, so one source is shared by all day-batch workers.
type ClickHouseBarSource struct {
	conn  driver.Conn
	table string
}

func NewClickHouseBarSource(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseBarSource, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("NewClickHouseBarSource: open %s: %w", cfg.Addr, err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("NewClickHouseBarSource: ping %s: %w", cfg.Addr, err)
	}

	table := cfg.Table
	if table == "" {
		table = "minute_bars"
	}
	return &ClickHouseBarSource{conn: conn, table: table}, nil
}

// EnsureSchema creates the minute-bar table when it does not exist yet.
func (s *ClickHouseBarSource) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol    LowCardinality(String),
			timestamp DateTime64(3, 'UTC'),
			open      Float64,
			high      Float64,
			low       Float64,
			close     Float64,
			volume    Float64
		)
		ENGINE = MergeTree()
		ORDER BY (symbol, timestamp)`, s.table)

	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("EnsureSchema: %s: %w", s.table, err)
	}
	return nil
}

func (s *ClickHouseBarSource) TradingDays(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT toDate(timestamp, 'America/New_York') AS day
		FROM %s
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY day ASC`, s.table)

	rows, err := s.conn.Query(ctx, query, Midnight(start).UTC(), Midnight(end).AddDate(0, 0, 1).UTC())
	if err != nil {
		return nil, fmt.Errorf("TradingDays: query: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("TradingDays: scan: %w", err)
		}
		// Date columns scan as UTC midnight of the literal date; rebuild the
		// same calendar day in the market time zone.
		y, m, d := day.UTC().Date()
		out = append(out, time.Date(y, m, d, 0, 0, 0, 0, MarketLocation()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TradingDays: rows: %w", err)
	}
	return out, nil
}

func (s *ClickHouseBarSource) SymbolsWithData(ctx context.Context, day time.Time) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT symbol
		FROM %s
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY symbol ASC`, s.table)

	dayStart := Midnight(day)
	rows, err := s.conn.Query(ctx, query, dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC())
	if err != nil {
		return nil, fmt.Errorf("SymbolsWithData: query %s: %w", DateKey(day), err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("SymbolsWithData: scan: %w", err)
		}
		out = append(out, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SymbolsWithData: rows: %w", err)
	}
	return out, nil
}

func (s *ClickHouseBarSource) MinuteBars(ctx context.Context, symbol string, day time.Time, from, to TimeOfDay) ([]*Bar, error) {
	query := fmt.Sprintf(`
		SELECT symbol, timestamp, open, high, low, close, volume
		FROM %s
		WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC`, s.table)

	rows, err := s.conn.Query(ctx, query, symbol, from.OnDay(day).UTC(), to.OnDay(day).UTC())
	if err != nil {
		return nil, fmt.Errorf("MinuteBars: query %s on %s: %w", symbol, DateKey(day), err)
	}
	defer rows.Close()

	var out []*Bar
	for rows.Next() {
		var b Bar
		if err := rows.ScanStruct(&b); err != nil {
			return nil, fmt.Errorf("MinuteBars: scan %s on %s: %w", symbol, DateKey(day), err)
		}
		b.Timestamp = b.Timestamp.In(MarketLocation())
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MinuteBars: rows %s on %s: %w", symbol, DateKey(day), err)
	}
	return out, nil
}

// WriteBars batch-inserts bars; the ingestion command is the only writer.
func (s *ClickHouseBarSource) WriteBars(ctx context.Context, bars []*Bar) error {
	if len(bars) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", s.table))
	if err != nil {
		return fmt.Errorf("WriteBars: prepare batch: %w", err)
	}

	for _, b := range bars {
		if err := batch.Append(b.Symbol, b.Timestamp.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("WriteBars: append %s @ %s: %w", b.Symbol, b.Timestamp.Format(time.RFC3339), err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("WriteBars: send: %w", err)
	}

	log.Infof("wrote %d bars to %s", len(bars), s.table)
	return nil
}

func (s *ClickHouseBarSource) Close() error {
	return s.conn.Close()
}
