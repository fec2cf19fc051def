// Package database opens short-lived connections to the databases described by
// stored profiles, to check that a profile actually works.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	apperrors "github.com/allisson/connvault/internal/errors"
	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

const (
	mysqlDriver  = "mysql"
	sqliteDriver = "sqlite"
)

var (
	// ErrConnectionFailed indicates the database could not be reached or refused the login.
	ErrConnectionFailed = apperrors.New("connection failed")

	// ErrDatabaseFileMissing indicates a SQLite profile points at a file that does not exist.
	ErrDatabaseFileMissing = apperrors.Wrap(apperrors.ErrNotFound, "database file missing")
)

// Config holds the connection settings used while testing a profile.
type Config struct {
	Timeout         time.Duration
	ConnMaxLifetime time.Duration
}

// Result describes a successful connection test.
type Result struct {
	Kind          vaultDomain.Kind
	Target        string
	ServerVersion string
	Latency       time.Duration
}

// Tester checks that a profile can be connected to.
type Tester interface {
	Test(ctx context.Context, profile vaultDomain.ConnectionProfile) (Result, error)
}

// OpenFunc opens a database handle. sql.Open in production.
type OpenFunc func(driverName, dataSourceName string) (*sql.DB, error)

type tester struct {
	cfg    Config
	open   OpenFunc
	logger *slog.Logger
}

// NewTester creates a Tester that opens connections with sql.Open.
func NewTester(cfg Config, logger *slog.Logger) Tester {
	return newTester(cfg, sql.Open, logger)
}

func newTester(cfg Config, open OpenFunc, logger *slog.Logger) *tester {
	return &tester{cfg: cfg, open: open, logger: logger}
}

// Test opens the profile's database, pings it and reads the server version.
// Nothing is written; SQLite files are opened read-only and never created.
func (t *tester) Test(ctx context.Context, profile vaultDomain.ConnectionProfile) (Result, error) {
	if err := profile.Validate(); err != nil {
		return Result{}, err
	}

	var (
		driver, dsn, versionQuery string
		result                    = Result{Kind: profile.Kind}
	)

	switch profile.Kind {
	case vaultDomain.KindMySQL:
		driver = mysqlDriver
		dsn = MySQLDSN(profile, t.cfg.Timeout)
		versionQuery = "SELECT VERSION()"
		result.Target = profile.Label()
	case vaultDomain.KindSQLite:
		if _, err := os.Stat(profile.Path); err != nil {
			if os.IsNotExist(err) {
				return Result{}, fmt.Errorf("%w: %s", ErrDatabaseFileMissing, profile.Path)
			}
			return Result{}, fmt.Errorf("failed to stat database file: %w", err)
		}
		driver = sqliteDriver
		dsn = SQLiteDSN(profile.Path)
		versionQuery = "SELECT sqlite_version()"
		result.Target = profile.Label()
	}

	start := time.Now()
	db, err := t.connect(ctx, driver, dsn)
	if err != nil {
		t.logger.Debug("connection test failed", slog.String("kind", string(profile.Kind)), slog.Any("error", err))
		return Result{}, err
	}
	defer func() {
		_ = db.Close()
	}()

	queryCtx, cancel := t.withTimeout(ctx)
	defer cancel()
	if err := db.QueryRowContext(queryCtx, versionQuery).Scan(&result.ServerVersion); err != nil {
		return Result{}, fmt.Errorf("%w: failed to read server version: %v", ErrConnectionFailed, err)
	}
	result.Latency = time.Since(start)

	t.logger.Debug("connection test succeeded",
		slog.String("kind", string(profile.Kind)),
		slog.Duration("latency", result.Latency),
	)
	return result, nil
}

// connect opens a single-connection pool and pings it.
func (t *tester) connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := t.open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(t.cfg.ConnMaxLifetime)

	pingCtx, cancel := t.withTimeout(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return db, nil
}

func (t *tester) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.cfg.Timeout)
}

// MySQLDSN builds a go-sql-driver DSN for profile.
func MySQLDSN(profile vaultDomain.ConnectionProfile, timeout time.Duration) string {
	port := profile.Port
	if port == 0 {
		port = vaultDomain.DefaultMySQLPort
	}

	cfg := mysql.NewConfig()
	cfg.User = profile.User
	cfg.Passwd = profile.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(strings.Trim(profile.Host, "[]"), strconv.Itoa(port))
	cfg.DBName = profile.Database
	cfg.Timeout = timeout
	cfg.ReadTimeout = timeout
	return cfg.FormatDSN()
}

// SQLiteDSN builds a read-only modernc.org/sqlite DSN for path.
func SQLiteDSN(path string) string {
	return "file:" + path + "?mode=ro"
}
