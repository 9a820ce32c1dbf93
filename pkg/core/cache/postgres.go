package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bundesanzeiger/pkg/models"
)

// PostgresStore is the shared-deployment cache backend, selected when
// DATABASE_URL is configured. Same contract as the SQLite backend.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to databaseURL and brings the cache schema
// forward.
func OpenPostgres(ctx context.Context, databaseURL string, log *slog.Logger) (*PostgresStore, error) {
	if log == nil {
		log = slog.Default()
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &PostgresStore{pool: pool, log: log}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the cache tables and adds columns introduced after
// the initial schema. ADD COLUMN IF NOT EXISTS makes the step
// idempotent across versions.
func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS financial_data (
			id BIGSERIAL PRIMARY KEY,
			search_query TEXT NOT NULL,
			company_name TEXT,
			report_name TEXT,
			report_date TEXT,
			net_profit DOUBLE PRECISION,
			umsatz DOUBLE PRECISION,
			bilanzsumme_total DOUBLE PRECISION,
			created_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS reports_cache (
			id BIGSERIAL PRIMARY KEY,
			company_name TEXT NOT NULL,
			report_name TEXT NOT NULL,
			report_date TEXT NOT NULL DEFAULT '',
			report_content TEXT,
			report_url TEXT,
			net_profit DOUBLE PRECISION,
			umsatz DOUBLE PRECISION,
			bilanzsumme_total DOUBLE PRECISION,
			created_at TIMESTAMPTZ DEFAULT now(),
			last_accessed TIMESTAMPTZ DEFAULT now(),
			UNIQUE(company_name, report_name, report_date)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create cache tables: %w", err)
		}
	}

	laterColumns := []string{
		"mitarbeiter", "gewinnvortrag", "schulden", "eigenkapital",
		"guv_zinsen", "guv_steuern", "guv_abschreibungen", "cash", "dividende",
	}
	for _, table := range []string{"financial_data", "reports_cache"} {
		for _, col := range laterColumns {
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s DOUBLE PRECISION", table, col)
			if _, err := s.pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("extend %s schema: %w", table, err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FindSimilarQuery(ctx context.Context, query string, threshold int) (*QueryEntry, error) {
	stmt := fmt.Sprintf(
		"SELECT search_query, company_name, report_name, report_date, %s FROM financial_data ORDER BY id",
		strings.Join(models.FieldNames, ", "),
	)
	rows, err := s.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query cache scan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry := QueryEntry{Fields: &models.FinancialFields{}}
		var company, report, date *string
		values := make([]*float64, len(models.FieldNames))

		dest := []interface{}{&entry.SearchQuery, &company, &report, &date}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan query cache row: %w", err)
		}

		similarity := SimilarityRatio(query, entry.SearchQuery)
		if similarity < threshold {
			continue
		}

		entry.CompanyName = deref(company)
		entry.ReportName = deref(report)
		entry.ReportDate = deref(date)
		for i, name := range models.FieldNames {
			*entry.Fields.Field(name) = values[i]
		}

		s.log.Info("query cache hit", "query", query, "stored", entry.SearchQuery, "similarity", similarity)
		return &entry, nil
	}
	return nil, rows.Err()
}

func (s *PostgresStore) StoreQuery(ctx context.Context, entry QueryEntry) error {
	if !admitQuery(entry) {
		s.log.Info("skipping query cache store: all financial values are null", "query", entry.SearchQuery)
		return nil
	}

	stmt := fmt.Sprintf(
		"INSERT INTO financial_data (search_query, company_name, report_name, report_date, %s) VALUES (%s)",
		strings.Join(models.FieldNames, ", "),
		placeholders(4+len(models.FieldNames)),
	)
	args := []interface{}{entry.SearchQuery, entry.CompanyName, entry.ReportName, entry.ReportDate}
	args = append(args, fieldArgs(entry.Fields)...)

	if _, err := s.pool.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("store query result: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReport(ctx context.Context, companyName, reportName, reportDate string) (*ReportEntry, error) {
	stmt := fmt.Sprintf(
		"SELECT company_name, report_name, report_date, report_content, report_url, %s FROM reports_cache WHERE company_name = $1 AND report_name = $2",
		strings.Join(models.FieldNames, ", "),
	)
	args := []interface{}{companyName, reportName}
	if reportDate != "" {
		stmt += " AND report_date = $3"
		args = append(args, reportDate)
	}
	stmt += " LIMIT 1"

	entry := ReportEntry{Fields: &models.FinancialFields{}}
	var content, reportURL *string
	values := make([]*float64, len(models.FieldNames))

	dest := []interface{}{&entry.CompanyName, &entry.ReportName, &entry.ReportDate, &content, &reportURL}
	for i := range values {
		dest = append(dest, &values[i])
	}

	err := s.pool.QueryRow(ctx, stmt, args...).Scan(dest...)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup cached report: %w", err)
	}

	entry.Content = deref(content)
	entry.URL = deref(reportURL)
	for i, name := range models.FieldNames {
		*entry.Fields.Field(name) = values[i]
	}

	if _, err := s.pool.Exec(ctx,
		"UPDATE reports_cache SET last_accessed = $1 WHERE company_name = $2 AND report_name = $3",
		time.Now().UTC(), companyName, reportName,
	); err != nil {
		return nil, fmt.Errorf("touch cached report: %w", err)
	}

	s.log.Info("report cache hit", "company", companyName, "report", reportName)
	return &entry, nil
}

func (s *PostgresStore) StoreReport(ctx context.Context, entry ReportEntry) error {
	if !admitReport(entry) {
		s.log.Info("skipping report cache store: no report content",
			"company", entry.CompanyName, "report", entry.ReportName)
		return nil
	}

	var updates []string
	for _, name := range models.FieldNames {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
	}

	stmt := fmt.Sprintf(`INSERT INTO reports_cache
		(company_name, report_name, report_date, report_content, report_url, last_accessed, %s)
		VALUES (%s)
		ON CONFLICT (company_name, report_name, report_date) DO UPDATE SET
			report_content = EXCLUDED.report_content,
			report_url = EXCLUDED.report_url,
			last_accessed = EXCLUDED.last_accessed,
			%s`,
		strings.Join(models.FieldNames, ", "),
		placeholders(6+len(models.FieldNames)),
		strings.Join(updates, ",\n\t\t\t"),
	)

	args := []interface{}{
		entry.CompanyName, entry.ReportName, entry.ReportDate,
		entry.Content, entry.URL, time.Now().UTC(),
	}
	args = append(args, fieldArgs(entry.Fields)...)

	if _, err := s.pool.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
