package store

import (
	"context"
	"fmt"

	"github.com/confhub/confhub/pkg/id"
	"github.com/confhub/confhub/pkg/log"
)

const (
	ddlSolutions = `CREATE TABLE IF NOT EXISTS SOLUTIONS (
		ID VARCHAR(36) PRIMARY KEY,
		NAME VARCHAR(255) NOT NULL UNIQUE,
		DESCRIPTION VARCHAR(1000),
		CREATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
		UPDATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
	)`

	ddlTags = `CREATE TABLE IF NOT EXISTS TAGS (
		ID VARCHAR(36) PRIMARY KEY,
		NAME VARCHAR(255) NOT NULL UNIQUE,
		CREATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
	)`

	ddlParameters = `CREATE TABLE IF NOT EXISTS PARAMETERS (
		ID VARCHAR(36) PRIMARY KEY,
		NAME VARCHAR(255),
		KEY VARCHAR(255) NOT NULL UNIQUE,
		VALUE VARCHAR,
		DESCRIPTION VARCHAR(1000),
		IS_SECRET BOOLEAN DEFAULT FALSE,
		CREATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
		UPDATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
	)`

	ddlSolutionParameters = `CREATE TABLE IF NOT EXISTS SOLUTION_PARAMETERS (
		SOLUTION_ID VARCHAR(36) NOT NULL,
		PARAMETER_ID VARCHAR(36) NOT NULL,
		PRIMARY KEY (SOLUTION_ID, PARAMETER_ID)
	)`

	ddlParameterTags = `CREATE TABLE IF NOT EXISTS PARAMETER_TAGS (
		PARAMETER_ID VARCHAR(36) NOT NULL,
		TAG_ID VARCHAR(36) NOT NULL,
		PRIMARY KEY (PARAMETER_ID, TAG_ID)
	)`

	ddlUsers = `CREATE TABLE IF NOT EXISTS USERS (
		ID VARCHAR(36) PRIMARY KEY,
		USERNAME VARCHAR(255) NOT NULL UNIQUE,
		EMAIL VARCHAR(255),
		FIRST_NAME VARCHAR(255),
		LAST_NAME VARCHAR(255),
		HASHED_PASSWORD VARCHAR(255),
		ROLE VARCHAR(50) DEFAULT 'user',
		IS_ACTIVE BOOLEAN DEFAULT TRUE,
		IS_SSO_USER BOOLEAN DEFAULT FALSE,
		SSO_PROVIDER VARCHAR(100),
		SSO_USER_ID VARCHAR(255),
		USE_SNOWFLAKE_AUTH BOOLEAN DEFAULT FALSE,
		LAST_LOGIN TIMESTAMP_NTZ,
		PASSWORD_RESET_TOKEN VARCHAR(255),
		PASSWORD_RESET_EXPIRES TIMESTAMP_NTZ,
		CREATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
		UPDATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
	)`

	ddlSolutionAPIKeys = `CREATE TABLE IF NOT EXISTS SOLUTION_API_KEYS (
		ID VARCHAR(36) PRIMARY KEY,
		SOLUTION_ID VARCHAR(36) NOT NULL,
		KEY_NAME VARCHAR(255) NOT NULL,
		API_KEY VARCHAR(255) UNIQUE NOT NULL,
		IS_ACTIVE BOOLEAN DEFAULT TRUE,
		CREATED_AT TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
		LAST_USED TIMESTAMP_NTZ,
		EXPIRES_AT TIMESTAMP_NTZ
	)`
)

// SchemaManager creates tables, migrates legacy layouts and seeds
// starter data on an empty store.
type SchemaManager struct {
	q Queryer
}

func NewSchemaManager(q Queryer) *SchemaManager {
	return &SchemaManager{q: q}
}

// Initialize brings the schema to the current layout and seeds defaults.
// A DDL failure aborts; a seeding failure is logged and tolerated.
func (m *SchemaManager) Initialize(ctx context.Context) error {
	if err := m.CreateTables(ctx); err != nil {
		return err
	}
	if err := m.SeedDefaults(ctx); err != nil {
		log.Warnw("seeding default data failed", "error", err)
	}
	return nil
}

// CreateTables issues the idempotent DDL and runs the USERS migration.
func (m *SchemaManager) CreateTables(ctx context.Context) error {
	for _, ddl := range []string{
		ddlSolutions,
		ddlTags,
		ddlParameters,
		ddlSolutionParameters,
		ddlParameterTags,
		ddlSolutionAPIKeys,
	} {
		if _, err := m.q.ExecuteNonQuery(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	if err := m.migrateUsers(ctx); err != nil {
		return err
	}

	log.Info("schema tables are in place")
	return nil
}

// migrateUsers rebuilds a legacy USERS table that predates role tracking.
// Existing rows are kept and promoted to active admins.
func (m *SchemaManager) migrateUsers(ctx context.Context) error {
	cols, err := m.q.ExecuteQuery(ctx, "DESCRIBE TABLE USERS")
	if err != nil {
		// No table yet, plain create.
		_, cErr := m.q.ExecuteNonQuery(ctx, ddlUsers)
		if cErr != nil {
			return fmt.Errorf("create users table: %w", cErr)
		}
		return nil
	}

	names := make(map[string]bool, len(cols))
	for _, col := range cols {
		if n, ok := col["NAME"].(string); ok {
			names[n] = true
		}
	}
	if names["LAST_LOGIN"] && names["ROLE"] {
		return nil
	}

	log.Info("updating USERS table layout")

	backup, err := m.q.ExecuteQuery(ctx, "SELECT * FROM USERS")
	if err != nil {
		return fmt.Errorf("back up users: %w", err)
	}

	if _, err := m.q.ExecuteNonQuery(ctx, "DROP TABLE IF EXISTS USERS"); err != nil {
		return fmt.Errorf("drop legacy users table: %w", err)
	}
	if _, err := m.q.ExecuteNonQuery(ctx, ddlUsers); err != nil {
		return fmt.Errorf("recreate users table: %w", err)
	}

	for _, user := range backup {
		_, err := m.q.ExecuteNonQuery(ctx,
			`INSERT INTO USERS (ID, USERNAME, HASHED_PASSWORD, ROLE, IS_ACTIVE, IS_SSO_USER, USE_SNOWFLAKE_AUTH, CREATED_AT)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			user["ID"], user["USERNAME"], user["HASHED_PASSWORD"],
			"admin", true, false, false, user["CREATED_AT"])
		if err != nil {
			return fmt.Errorf("restore user %v: %w", user["ID"], err)
		}
	}

	log.Infow("USERS table updated", "restored", len(backup))
	return nil
}

// SeedDefaults inserts the starter solution, tags and sample parameters.
// It is a no-op when any solution already exists.
func (m *SchemaManager) SeedDefaults(ctx context.Context) error {
	rows, err := m.q.ExecuteQuery(ctx, "SELECT COUNT(*) AS COUNT FROM SOLUTIONS")
	if err != nil {
		return err
	}
	if len(rows) > 0 && toInt64(rows[0]["COUNT"]) > 0 {
		return nil
	}

	solutionID := id.GetUUID()
	if _, err := m.q.ExecuteNonQuery(ctx,
		"INSERT INTO SOLUTIONS (ID, NAME, DESCRIPTION) VALUES (?, ?, ?)",
		solutionID, "Default Solution", "Default configuration solution for getting started"); err != nil {
		return err
	}

	tagIds := make(map[string]string)
	for _, name := range []string{"Environment", "Database", "API", "Security", "Feature"} {
		tagID := id.GetUUID()
		tagIds[name] = tagID
		if _, err := m.q.ExecuteNonQuery(ctx,
			"INSERT INTO TAGS (ID, NAME) VALUES (?, ?)", tagID, name); err != nil {
			return err
		}
	}

	samples := []struct {
		name, key, value, desc string
		isSecret               bool
		tag                    string
	}{
		{"Application Name", "app_name", "Configuration Manager", "Application name", false, "Environment"},
		{"Application Version", "app_version", "1.0.0", "Application version", false, "Environment"},
		{"Environment", "environment", "development", "Current environment", false, "Environment"},
		{"DB Connection Timeout", "db_connection_timeout", "30", "Database connection timeout in seconds", false, "Database"},
		{"API Rate Limit", "api_rate_limit", "1000", "API requests per minute limit", false, "API"},
		{"Secret Key", "secret_key", "your-secret-key-here", "Application secret key", true, "Environment"},
	}

	for _, s := range samples {
		paramID := id.GetUUID()
		if _, err := m.q.ExecuteNonQuery(ctx,
			"INSERT INTO PARAMETERS (ID, NAME, KEY, VALUE, DESCRIPTION, IS_SECRET) VALUES (?, ?, ?, ?, ?, ?)",
			paramID, s.name, s.key, s.value, s.desc, s.isSecret); err != nil {
			return err
		}
		if _, err := m.q.ExecuteNonQuery(ctx,
			"INSERT INTO PARAMETER_TAGS (PARAMETER_ID, TAG_ID) VALUES (?, ?)",
			paramID, tagIds[s.tag]); err != nil {
			return err
		}
		if _, err := m.q.ExecuteNonQuery(ctx,
			"INSERT INTO SOLUTION_PARAMETERS (SOLUTION_ID, PARAMETER_ID) VALUES (?, ?)",
			solutionID, paramID); err != nil {
			return err
		}
	}

	log.Info("default data seeded")
	return nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		var out int64
		_, _ = fmt.Sscan(n, &out)
		return out
	default:
		return 0
	}
}
