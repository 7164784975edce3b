package service

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DataSourceConfig holds connection details
type DataSourceConfig struct {
	Type     string `json:"type"` // "postgres", "sqlite"
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"` // "disable", "require"
	Path     string `json:"path"`    // sqlite file path
}

// DataSource loads transaction tables from an external database. Rows
// come back as strings so the ingestion layer can run the same
// normalization and parsing it applies to CSV uploads.
type DataSource interface {
	Connect(config DataSourceConfig) error
	Close() error
	ListTables() ([]string, error)
	FetchTable(tableName string, limit int) (columns []string, rows [][]string, err error)
}

// NewDataSource picks the implementation for config.Type
func NewDataSource(config DataSourceConfig) (DataSource, error) {
	switch config.Type {
	case "postgres":
		return &PostgresDataSource{}, nil
	case "sqlite":
		return &SQLiteDataSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported datasource type: %s", config.Type)
	}
}

// PostgresDataSource implements DataSource for PostgreSQL
type PostgresDataSource struct {
	db *sql.DB
}

func (p *PostgresDataSource) Connect(config DataSourceConfig) error {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}

	p.db = db
	return nil
}

func (p *PostgresDataSource) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *PostgresDataSource) ListTables() ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	return scanTableNames(p.db, query)
}

func (p *PostgresDataSource) FetchTable(tableName string, limit int) ([]string, [][]string, error) {
	return fetchTable(p.db, tableName, limit)
}

// SQLiteDataSource implements DataSource for a SQLite export file
type SQLiteDataSource struct {
	db *sql.DB
}

func (s *SQLiteDataSource) Connect(config DataSourceConfig) error {
	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteDataSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDataSource) ListTables() ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name;
	`
	return scanTableNames(s.db, query)
}

func (s *SQLiteDataSource) FetchTable(tableName string, limit int) ([]string, [][]string, error) {
	return fetchTable(s.db, tableName, limit)
}

func scanTableNames(db *sql.DB, query string) ([]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

func fetchTable(db *sql.DB, tableName string, limit int) ([]string, [][]string, error) {
	// tableName must come from ListTables; it cannot be parameterized in
	// SQL, so the handler validates it against the table list first.
	query := fmt.Sprintf("SELECT * FROM %q LIMIT %d", tableName, limit)

	rows, err := db.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var result [][]string
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}

		record := make([]string, len(columns))
		for i, val := range values {
			switch v := val.(type) {
			case nil:
				record[i] = ""
			case []byte:
				record[i] = string(v)
			case time.Time:
				record[i] = v.Format("2006-01-02 15:04:05")
			default:
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		result = append(result, record)
	}

	return columns, result, rows.Err()
}
