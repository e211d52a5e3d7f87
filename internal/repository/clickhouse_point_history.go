package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

// PointHistorySchema returns the DDL for the point history table.
// Re-fetched points replace older copies of the same (symbol, interval, date).
func PointHistorySchema(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			symbol      LowCardinality(String),
			interval    LowCardinality(String),
			date        String,
			open        Nullable(Float64),
			high        Nullable(Float64),
			low         Nullable(Float64),
			close       Float64,
			volume      Nullable(Float64),
			source      LowCardinality(String),
			ingested_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(ingested_at)
		ORDER BY (symbol, interval, date)`, table),
	}
}

// ClickHousePointHistory implements PointHistory on ClickHouse.
type ClickHousePointHistory struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

func NewClickHousePointHistory(ch *pkgch.Client, table string, l *applogger.Logger) *ClickHousePointHistory {
	return &ClickHousePointHistory{db: ch.DB(), table: table, l: l, now: time.Now}
}

var _ domrepo.PointHistory = (*ClickHousePointHistory)(nil)

func (h *ClickHousePointHistory) Append(ctx context.Context, res *models.SeriesResult) error {
	if res == nil || len(res.Points) == 0 {
		return nil
	}
	interval := ""
	if res.Meta != nil {
		interval = res.Meta.Interval
	}
	ingested := h.now().UTC()

	// Multi-row VALUES in chunks to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(res.Points); start += chunkSize {
		end := min(start+chunkSize, len(res.Points))

		values := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*10)
		for _, p := range res.Points[start:end] {
			if p.Close == nil {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				res.Symbol, interval, p.Date,
				nullable(p.Open), nullable(p.High), nullable(p.Low), *p.Close, nullable(p.Volume),
				res.Source, ingested,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, interval, date, open, high, low, close, volume, source, ingested_at) VALUES %s",
			h.table, strings.Join(values, ","))
		if _, err := h.db.ExecContext(ctx, q, args...); err != nil {
			h.l.Error("clickhouse append points error",
				applogger.String("table", h.table),
				applogger.String("symbol", res.Symbol),
				applogger.Int("points", len(values)),
				applogger.Error(err),
			)
			return fmt.Errorf("append points: %w", err)
		}
	}
	return nil
}

// Query returns the newest limit points in ascending date order.
func (h *ClickHousePointHistory) Query(ctx context.Context, symbol, interval string, limit int) ([]models.CanonicalPoint, error) {
	const qtpl = `
        SELECT date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND interval = ?
        ORDER BY date DESC
        LIMIT ?
    `
	rows, err := h.db.QueryContext(ctx, fmt.Sprintf(qtpl, h.table), symbol, interval, limit)
	if err != nil {
		h.l.Error("clickhouse query points error",
			applogger.String("table", h.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	out := make([]models.CanonicalPoint, 0, limit)
	for rows.Next() {
		var (
			p                       models.CanonicalPoint
			open, high, low, volume sql.NullFloat64
			closePrice              float64
		)
		if err := rows.Scan(&p.Date, &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		p.Open, p.High, p.Low, p.Volume = fromNull(open), fromNull(high), fromNull(low), fromNull(volume)
		p.Close = models.Float(closePrice)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}
