package store

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"encoding/pem"
	"os"
	"strings"
	"time"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/pkg/errors"
	"github.com/snowflakedb/gosnowflake"
	"github.com/youmark/pkcs8"
)

// sqlDriver adapts database/sql over gosnowflake to the driver interface.
type sqlDriver struct {
	db *sql.DB
}

func dialSnowflake(cfg Config) (driver, error) {
	sfCfg := &gosnowflake.Config{
		Account:      cfg.Account,
		User:         cfg.User,
		Warehouse:    cfg.Warehouse,
		Database:     cfg.Database,
		Schema:       cfg.Schema,
		Role:         cfg.Role,
		Application:  cfg.Application,
		LoginTimeout: time.Duration(cfg.LoginTimeout) * time.Second,
	}

	// Keypair auth wins over password when a key file is present.
	if cfg.PrivateKeyPath != "" {
		if _, err := os.Stat(cfg.PrivateKeyPath); err == nil {
			key, kErr := loadPrivateKey(cfg.PrivateKeyPath, cfg.PrivateKeyPassphrase)
			if kErr != nil {
				return nil, kErr
			}
			sfCfg.PrivateKey = key
			sfCfg.Authenticator = gosnowflake.AuthTypeJwt
		} else if cfg.Password != "" {
			sfCfg.Password = cfg.Password
		} else {
			return nil, errs.Invalid("private key file %q not found and no password configured", cfg.PrivateKeyPath)
		}
	} else if cfg.Password != "" {
		sfCfg.Password = cfg.Password
	} else {
		return nil, errs.Invalid("no warehouse credentials configured, set a password or a private key path")
	}

	dsn, err := gosnowflake.DSN(sfCfg)
	if err != nil {
		return nil, errors.Wrap(err, "build dsn")
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open connection")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return &sqlDriver{db: db}, nil
}

// loadPrivateKey reads a PKCS#8 RSA key, decrypting it when a passphrase
// is given.
func loadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read private key")
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.Errorf("no PEM block found in %s", path)
	}

	var key any
	if passphrase != "" {
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(passphrase))
	} else {
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes)
	}
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("private key in %s is not RSA", path)
	}
	return rsaKey, nil
}

func (d *sqlDriver) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[strings.ToUpper(col)] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *sqlDriver) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (d *sqlDriver) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *sqlDriver) Close() error {
	return d.db.Close()
}
