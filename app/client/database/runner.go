package database

import (
	"context"
	"database/sql"
	"devmcp/app/config"
	"errors"
	"log/slog"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	"github.com/samber/do"
	"github.com/samber/oops"
	go_ora "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"
)

var (
	ErrNotSelect     = errors.New("only SELECT queries can be executed")
	ErrNotConfigured = errors.New("database connection is not configured")
)

// Row holds one value per column, in column order.
type Row []any

type QueryResult struct {
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
	RowCount int      `json:"rowCount"`
}

// Runner executes read-only queries against the configured database. The
// connection pool is opened on first use.
type Runner struct {
	cfg config.Database

	mu sync.Mutex
	db *sql.DB
}

var _ do.Shutdownable = (*Runner)(nil)

func New(di *do.Injector) (*Runner, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewRunner(cfg.Database), nil
}

func NewRunner(cfg config.Database) *Runner {
	return &Runner{cfg: cfg}
}

// source returns the database/sql driver name and DSN.
func (r *Runner) source() (string, string, error) {
	cfg := r.cfg

	switch cfg.Driver {
	case "", "oracle":
		if cfg.DSN != "" {
			return "oracle", cfg.DSN, nil
		}
		var missing []string
		for _, field := range [][2]string{
			{"ORACLE_HOST", cfg.Host},
			{"ORACLE_USERNAME", cfg.Username},
			{"ORACLE_PASSWORD", cfg.Password},
		} {
			if field[1] == "" {
				missing = append(missing, field[0])
			}
		}
		if len(missing) > 0 {
			return "", "", oops.In("database").With("missing", missing).Wrap(ErrNotConfigured)
		}
		port := cfg.Port
		if port == 0 {
			port = 1521
		}
		return "oracle", go_ora.BuildUrl(cfg.Host, port, "", cfg.Username, cfg.Password, map[string]string{"SID": cfg.SID}), nil
	case "postgres", "sqlite":
		if cfg.DSN == "" {
			return "", "", oops.In("database").With("driver", cfg.Driver).Wrap(ErrNotConfigured)
		}
		return cfg.Driver, cfg.DSN, nil
	default:
		return "", "", oops.In("database").With("driver", cfg.Driver).Errorf("unsupported database driver")
	}
}

func (r *Runner) open() (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}

	driver, dsn, err := r.source()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, oops.In("database").With("driver", driver).Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	r.db = db
	return db, nil
}

// NormalizeQuery trims query and drops one trailing semicolon. Anything that
// does not start with SELECT is rejected.
func NormalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	}
	if !strings.HasPrefix(strings.ToUpper(q), "SELECT") {
		return "", oops.In("database").With("query", query).Wrap(ErrNotSelect)
	}
	return q, nil
}

func (r *Runner) ExecuteSelect(ctx context.Context, query string) (*QueryResult, error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}

	db, err := r.open()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, oops.In("database").Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, oops.In("database").Errorf("failed to read columns: %w", err)
	}

	result := &QueryResult{Columns: columns, Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err = rows.Scan(targets...); err != nil {
			return nil, oops.In("database").Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err = rows.Err(); err != nil {
		return nil, oops.In("database").Errorf("failed to read rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// TestConnection reports whether the database answers a ping.
func (r *Runner) TestConnection(ctx context.Context) bool {
	db, err := r.open()
	if err != nil {
		slog.Warn("Database is not configured", slog.Any("error", err))
		return false
	}
	if err = db.PingContext(ctx); err != nil {
		slog.Warn("Database ping failed", slog.Any("error", err))
		return false
	}
	return true
}

func (r *Runner) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}
