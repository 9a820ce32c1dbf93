// Package cache persists extraction outcomes behind two caches: a
// query cache keyed by the free-text search string (fuzzy lookup) and a
// report cache keyed by the exact filing identity. The default backend
// is a SQLite file; a Postgres backend is selected when DATABASE_URL is
// set.
package cache

import (
	"context"
	"time"

	"bundesanzeiger/pkg/models"
)

// DefaultSimilarityThreshold is the query-cache match cutoff on the
// 0..100 similarity scale.
const DefaultSimilarityThreshold = 90

// QueryEntry is one row of the query cache.
type QueryEntry struct {
	SearchQuery string
	CompanyName string
	ReportName  string
	ReportDate  string
	Fields      *models.FinancialFields
	CreatedAt   time.Time
}

// ReportEntry is one row of the report cache, keyed by
// (CompanyName, ReportName, ReportDate).
type ReportEntry struct {
	CompanyName  string
	ReportName   string
	ReportDate   string
	Content      string
	URL          string
	Fields       *models.FinancialFields
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Store is the cache contract shared by both backends. Each operation
// is a self-contained transaction; there is no cross-call locking, and
// a concurrent read-modify-insert race on the query cache at worst
// produces a duplicate row.
type Store interface {
	// FindSimilarQuery scans stored queries in insertion order and
	// returns the first whose similarity to query reaches threshold,
	// or nil on a miss.
	FindSimilarQuery(ctx context.Context, query string, threshold int) (*QueryEntry, error)

	// StoreQuery records an extraction outcome for a search string.
	// It is a no-op when every financial field is null: negative
	// results are always retried on the next lookup.
	StoreQuery(ctx context.Context, entry QueryEntry) error

	// GetReport returns the cached filing for the exact key, touching
	// its last-accessed timestamp. An empty reportDate matches any
	// date. Returns nil on a miss.
	GetReport(ctx context.Context, companyName, reportName, reportDate string) (*ReportEntry, error)

	// StoreReport upserts a filing on its natural key. It is a no-op
	// when the report content is empty.
	StoreReport(ctx context.Context, entry ReportEntry) error

	Close() error
}

// admitQuery implements the query-cache admission rule.
func admitQuery(entry QueryEntry) bool {
	return entry.Fields.HasData()
}

// admitReport implements the report-cache admission rule.
func admitReport(entry ReportEntry) bool {
	return entry.Content != ""
}
