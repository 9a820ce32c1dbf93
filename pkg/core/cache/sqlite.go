package cache

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"bundesanzeiger/pkg/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteStore is the default cache backend: a single database file,
// schema managed by embedded goose migrations run once at open time.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the cache database at dbPath
// and migrates its schema forward.
func OpenSQLite(dbPath string, log *slog.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = slog.Default()
	}

	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// One writer at a time; concurrent requests queue briefly instead
	// of failing with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache schema: %w", err)
	}

	log.Debug("cache database ready", "path", dbPath)
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindSimilarQuery(ctx context.Context, query string, threshold int) (*QueryEntry, error) {
	stmt := fmt.Sprintf(
		"SELECT search_query, company_name, report_name, report_date, %s FROM financial_data ORDER BY id",
		strings.Join(models.FieldNames, ", "),
	)
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query cache scan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry := QueryEntry{Fields: &models.FinancialFields{}}
		var company, report, date sql.NullString
		values := make([]sql.NullFloat64, len(models.FieldNames))

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

		entry.CompanyName = company.String
		entry.ReportName = report.String
		entry.ReportDate = date.String
		assignFields(entry.Fields, values)

		s.log.Info("query cache hit", "query", query, "stored", entry.SearchQuery, "similarity", similarity)
		return &entry, nil
	}
	return nil, rows.Err()
}

func (s *SQLiteStore) StoreQuery(ctx context.Context, entry QueryEntry) error {
	if !admitQuery(entry) {
		s.log.Info("skipping query cache store: all financial values are null", "query", entry.SearchQuery)
		return nil
	}

	stmt := fmt.Sprintf(
		"INSERT INTO financial_data (search_query, company_name, report_name, report_date, %s) VALUES (?, ?, ?, ?%s)",
		strings.Join(models.FieldNames, ", "),
		strings.Repeat(", ?", len(models.FieldNames)),
	)
	args := []interface{}{entry.SearchQuery, entry.CompanyName, entry.ReportName, entry.ReportDate}
	args = append(args, fieldArgs(entry.Fields)...)

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("store query result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, companyName, reportName, reportDate string) (*ReportEntry, error) {
	stmt := fmt.Sprintf(
		"SELECT company_name, report_name, report_date, report_content, report_url, %s FROM reports_cache WHERE company_name = ? AND report_name = ?",
		strings.Join(models.FieldNames, ", "),
	)
	args := []interface{}{companyName, reportName}
	if reportDate != "" {
		stmt += " AND report_date = ?"
		args = append(args, reportDate)
	}
	stmt += " LIMIT 1"

	entry := ReportEntry{Fields: &models.FinancialFields{}}
	var content, reportURL sql.NullString
	values := make([]sql.NullFloat64, len(models.FieldNames))

	dest := []interface{}{&entry.CompanyName, &entry.ReportName, &entry.ReportDate, &content, &reportURL}
	for i := range values {
		dest = append(dest, &values[i])
	}

	err := s.db.QueryRowContext(ctx, stmt, args...).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup cached report: %w", err)
	}

	entry.Content = content.String
	entry.URL = reportURL.String
	assignFields(entry.Fields, values)

	if _, err := s.db.ExecContext(ctx,
		"UPDATE reports_cache SET last_accessed = ? WHERE company_name = ? AND report_name = ?",
		time.Now().UTC().Format(time.RFC3339), companyName, reportName,
	); err != nil {
		return nil, fmt.Errorf("touch cached report: %w", err)
	}

	s.log.Info("report cache hit", "company", companyName, "report", reportName)
	return &entry, nil
}

func (s *SQLiteStore) StoreReport(ctx context.Context, entry ReportEntry) error {
	if !admitReport(entry) {
		s.log.Info("skipping report cache store: no report content",
			"company", entry.CompanyName, "report", entry.ReportName)
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	cols := strings.Join(models.FieldNames, ", ")
	var updates []string
	for _, name := range models.FieldNames {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", name, name))
	}

	stmt := fmt.Sprintf(`INSERT INTO reports_cache
		(company_name, report_name, report_date, report_content, report_url, created_at, last_accessed, %s)
		VALUES (?, ?, ?, ?, ?, ?, ?%s)
		ON CONFLICT(company_name, report_name, report_date) DO UPDATE SET
			report_content = excluded.report_content,
			report_url = excluded.report_url,
			last_accessed = excluded.last_accessed,
			%s`,
		cols,
		strings.Repeat(", ?", len(models.FieldNames)),
		strings.Join(updates, ",\n\t\t\t"),
	)

	args := []interface{}{
		entry.CompanyName, entry.ReportName, entry.ReportDate,
		entry.Content, entry.URL, now, now,
	}
	args = append(args, fieldArgs(entry.Fields)...)

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

// fieldArgs renders the financial fields as SQL arguments in
// models.FieldNames order, nil for null.
func fieldArgs(fields *models.FinancialFields) []interface{} {
	args := make([]interface{}, 0, len(models.FieldNames))
	for _, name := range models.FieldNames {
		if fields == nil {
			args = append(args, nil)
			continue
		}
		slot := fields.Field(name)
		if slot == nil || *slot == nil {
			args = append(args, nil)
			continue
		}
		args = append(args, **slot)
	}
	return args
}

// assignFields writes scanned nullable columns back onto the model.
func assignFields(fields *models.FinancialFields, values []sql.NullFloat64) {
	for i, name := range models.FieldNames {
		if !values[i].Valid {
			continue
		}
		v := values[i].Float64
		*fields.Field(name) = &v
	}
}
