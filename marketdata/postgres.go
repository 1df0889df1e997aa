package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/meenmo/bondrisk/logger"
)

// PostgresFeed reads quotes from a table with columns
// (curve_date date, tenor text, rate double precision). Tenors use the
// ParseTenor syntax ("3M", "10Y" or a bare year count).
type PostgresFeed struct {
	db    *sql.DB
	query string
	log   *logger.Entry
}

// NewPostgresFeed opens dsn with the lib/pq driver. table may be schema-qualified.
func NewPostgresFeed(dsn, table string) (*PostgresFeed, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("NewPostgresFeed: dsn is required")
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresFeed: %w", err)
	}
	return NewPostgresFeedDB(sql.OpenDB(connector), table)
}

// NewPostgresFeedDB wraps an existing handle; the feed takes ownership and
// closes it on Close.
func NewPostgresFeedDB(db *sql.DB, table string) (*PostgresFeed, error) {
	ident, err := quoteTable(table)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresFeed: %w", err)
	}
	return &PostgresFeed{
		db:    db,
		query: quotesQuery(ident),
		log:   logger.GetLogger().WithComponent("marketdata"),
	}, nil
}

// Quotes loads every tenor stored for curveDate.
func (p *PostgresFeed) Quotes(ctx context.Context, curveDate time.Time) (map[float64]float64, error) {
	started := time.Now()
	day := curveDate.Format("2006-01-02")

	rows, err := p.db.QueryContext(ctx, p.query, day)
	if err != nil {
		return nil, fmt.Errorf("PostgresFeed: query %s: %w", day, err)
	}
	defer rows.Close()

	quotes := make(map[float64]float64)
	for rows.Next() {
		var (
			tenorText string
			rate      float64
		)
		if err := rows.Scan(&tenorText, &rate); err != nil {
			return nil, fmt.Errorf("PostgresFeed: scan: %w", err)
		}
		tenor, err := ParseTenor(tenorText)
		if err != nil {
			return nil, fmt.Errorf("PostgresFeed: %w", err)
		}
		if _, dup := quotes[tenor]; dup {
			return nil, fmt.Errorf("PostgresFeed: duplicate tenor %q on %s", tenorText, day)
		}
		quotes[tenor] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PostgresFeed: rows: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("PostgresFeed: %w %s", ErrNoQuotes, day)
	}

	logger.LogDuration(p.log, "load_quotes", started, logger.Fields{
		"curve_date": day,
		"tenors":     len(quotes),
	})
	return quotes, nil
}

// Close releases the database handle.
func (p *PostgresFeed) Close() error {
	return p.db.Close()
}

func quotesQuery(table string) string {
	return "SELECT tenor::text, rate FROM " + table + " WHERE curve_date = $1 ORDER BY 1"
}

// quoteTable quotes each dot-separated part of a table name.
func quoteTable(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("table name is required")
	}
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("table name %q has too many parts", table)
	}
	for i, part := range parts {
		if part == "" {
			return "", fmt.Errorf("table name %q has an empty part", table)
		}
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, "."), nil
}
