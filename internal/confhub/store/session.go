package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/pkg/log"
	"github.com/google/wire"
	"github.com/snowflakedb/gosnowflake"
)

var ProviderSet = wire.NewSet(NewSession, wire.Bind(new(Queryer), new(*Session)))

// Row is one result row keyed by upper-case column name.
type Row = map[string]any

// Queryer is the query surface repositories depend on.
type Queryer interface {
	ExecuteQuery(ctx context.Context, query string, args ...any) ([]Row, error)
	ExecuteNonQuery(ctx context.Context, query string, args ...any) (int64, error)
}

// driver is the dialed connection. The production implementation wraps
// database/sql over gosnowflake; tests substitute scripted fakes.
type driver interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

type DialFunc func(cfg Config) (driver, error)

type Config struct {
	Account              string
	User                 string
	Password             string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
	Warehouse            string
	Database             string
	Schema               string
	Role                 string
	Application          string
	LoginTimeout         int
}

func (c *Config) SetDefaults() {
	if c.Database == "" {
		c.Database = "CONFHUB"
	}
	if c.Application == "" {
		c.Application = "ConfHub"
	}
	if c.Schema == "" {
		c.Schema = "PUBLIC"
	}
	if c.LoginTimeout == 0 {
		c.LoginTimeout = 30
	}
}

// Session owns one warehouse connection and serializes reconnects.
type Session struct {
	cfg  Config
	dial DialFunc

	mu   sync.Mutex
	conn driver
}

func NewSession(cfg Config) *Session {
	cfg.SetDefaults()
	return &Session{cfg: cfg, dial: dialSnowflake}
}

// NewSessionWithDial injects a custom dialer. Used by tests.
func NewSessionWithDial(cfg Config, dial DialFunc) *Session {
	cfg.SetDefaults()
	return &Session{cfg: cfg, dial: dial}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

func validIdentifier(name string) error {
	if !identRe.MatchString(name) {
		return errs.Invalid("invalid identifier %q", name)
	}
	return nil
}

// Connect dials the warehouse and ensures the target database and schema
// exist, creating them when missing.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	conn, err := s.dialLocked(ctx)
	if err != nil {
		return err
	}
	s.conn = conn

	if err := s.bootstrapLocked(ctx); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		return err
	}

	log.Infow("store session connected",
		"account", s.cfg.Account, "database", s.cfg.Database, "schema", s.cfg.Schema)
	return nil
}

func (s *Session) dialLocked(ctx context.Context) (driver, error) {
	conn, err := s.dial(s.cfg)
	if err != nil {
		return nil, errs.Unavailable("failed to connect to warehouse", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errs.Unavailable("warehouse did not respond to ping", err)
	}
	return conn, nil
}

func (s *Session) bootstrapLocked(ctx context.Context) error {
	for _, name := range []string{s.cfg.Database, s.cfg.Schema} {
		if err := validIdentifier(name); err != nil {
			return err
		}
	}

	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.cfg.Database),
		fmt.Sprintf("USE DATABASE %s", s.cfg.Database),
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s.cfg.Schema),
		fmt.Sprintf("USE SCHEMA %s", s.cfg.Schema),
	}
	if s.cfg.Warehouse != "" {
		if err := validIdentifier(s.cfg.Warehouse); err != nil {
			return err
		}
		stmts = append(stmts, fmt.Sprintf("USE WAREHOUSE %s", s.cfg.Warehouse))
	}

	for _, stmt := range stmts {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return errs.Unavailable(fmt.Sprintf("bootstrap statement failed: %s", stmt), err)
		}
	}
	return nil
}

// Disconnect closes the connection. Safe to call when never connected.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return errs.Unavailable("failed to close warehouse connection", err)
	}
	return nil
}

// ValidateConnection runs a probe query and checks its result to
// confirm the session is live.
func (s *Session) ValidateConnection(ctx context.Context) error {
	rows, err := s.ExecuteQuery(ctx, "SELECT 1")
	if err != nil {
		return err
	}
	if len(rows) == 1 {
		for _, v := range rows[0] {
			if toInt64(v) == 1 {
				return nil
			}
		}
	}
	return errs.Unavailable("connection probe returned an unexpected result", nil)
}

func (s *Session) current() (driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, errs.Unavailable("store session is not connected", nil)
	}
	return s.conn, nil
}

// reconnect tears down the current connection and dials a fresh one.
func (s *Session) reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}

	conn, err := s.dialLocked(ctx)
	if err != nil {
		return err
	}
	s.conn = conn

	if err := s.bootstrapLocked(ctx); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// ExecuteQuery runs a SELECT and returns all rows. An expired auth token
// triggers exactly one reconnect followed by a single retry.
func (s *Session) ExecuteQuery(ctx context.Context, query string, args ...any) ([]Row, error) {
	conn, err := s.current()
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, query, args...)
	if err == nil {
		return rows, nil
	}
	if !isAuthExpired(err) {
		return nil, errs.Unavailable("query failed", err)
	}

	log.Warnw("auth token expired, reconnecting", "error", err)
	if rErr := s.reconnect(ctx); rErr != nil {
		return nil, rErr
	}
	conn, err = s.current()
	if err != nil {
		return nil, err
	}
	rows, err = conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Unavailable("query failed after reconnect", err)
	}
	return rows, nil
}

// ExecuteNonQuery runs DML or DDL and returns the affected row count.
// It never retries; a failed write must surface to the caller.
func (s *Session) ExecuteNonQuery(ctx context.Context, query string, args ...any) (int64, error) {
	conn, err := s.current()
	if err != nil {
		return 0, err
	}

	affected, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, errs.Unavailable("statement failed", err)
	}
	return affected, nil
}

const authTokenExpiredCode = 390114

func isAuthExpired(err error) bool {
	if err == nil {
		return false
	}
	var sfErr *gosnowflake.SnowflakeError
	if errors.As(err, &sfErr) {
		return sfErr.Number == authTokenExpiredCode
	}
	return strings.Contains(err.Error(), "Authentication token has expired")
}
