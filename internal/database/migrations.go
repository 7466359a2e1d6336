package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all database migrations
func GetMigrations(dbType string) []Migration {
	if dbType == "postgres" {
		return getPostgresMigrations()
	}
	return getSQLiteMigrations()
}

func getPostgresMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				first_name VARCHAR(100) NOT NULL,
				last_name VARCHAR(100) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				password VARCHAR(255) NOT NULL,
				role VARCHAR(20) NOT NULL DEFAULT 'user'
			)`,
		},
		{
			Version:     2,
			Description: "Create vacations table",
			SQL: `CREATE TABLE IF NOT EXISTS vacations (
				id BIGSERIAL PRIMARY KEY,
				destination VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				start_date DATE NOT NULL,
				end_date DATE NOT NULL,
				price DECIMAL(10,2) NOT NULL,
				image_file_name VARCHAR(255) NOT NULL DEFAULT 'default.jpg'
			)`,
		},
		{
			Version:     3,
			Description: "Create followers table",
			SQL: `CREATE TABLE IF NOT EXISTS followers (
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				vacation_id BIGINT NOT NULL REFERENCES vacations(id),
				PRIMARY KEY (user_id, vacation_id)
			)`,
		},
		{
			Version:     4,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
				CREATE INDEX IF NOT EXISTS idx_vacations_start_date ON vacations(start_date);
				CREATE INDEX IF NOT EXISTS idx_followers_vacation_id ON followers(vacation_id);`,
		},
	}
}

func getSQLiteMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'user'
			)`,
		},
		{
			Version:     2,
			Description: "Create vacations table",
			SQL: `CREATE TABLE IF NOT EXISTS vacations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				destination TEXT NOT NULL,
				description TEXT NOT NULL,
				start_date TEXT NOT NULL,
				end_date TEXT NOT NULL,
				price REAL NOT NULL,
				image_file_name TEXT NOT NULL DEFAULT 'default.jpg'
			)`,
		},
		{
			Version:     3,
			Description: "Create followers table",
			SQL: `CREATE TABLE IF NOT EXISTS followers (
				user_id INTEGER NOT NULL,
				vacation_id INTEGER NOT NULL,
				PRIMARY KEY (user_id, vacation_id),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (vacation_id) REFERENCES vacations(id)
			)`,
		},
		{
			Version:     4,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
				CREATE INDEX IF NOT EXISTS idx_vacations_start_date ON vacations(start_date);
				CREATE INDEX IF NOT EXISTS idx_followers_vacation_id ON followers(vacation_id);`,
		},
	}
}

// createMigrationsTable creates the migrations tracking table
func createMigrationsTable(db *sql.DB, dbType string) error {
	var query string
	if dbType == "postgres" {
		query = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`
	} else {
		query = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}

	_, err := db.Exec(query)
	return err
}

// getAppliedMigrations returns the list of applied migration versions
func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return applied, err
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return applied, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// recordMigration records that a migration has been applied
func recordMigration(db *sql.DB, dbType string, version int) error {
	var query string
	if dbType == "postgres" {
		query = "INSERT INTO schema_migrations (version) VALUES ($1)"
	} else {
		query = "INSERT INTO schema_migrations (version) VALUES (?)"
	}
	_, err := db.Exec(query, version)
	return err
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB, dbType string) error {
	if err := createMigrationsTable(db, dbType); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range GetMigrations(dbType) {
		if applied[m.Version] {
			continue
		}
		log.Printf("Applying migration %d: %s", m.Version, m.Description)
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
		if err := recordMigration(db, dbType, m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}
