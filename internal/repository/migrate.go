package repository

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies the JSON command migrations found in migrationsPath
// to the given database. The collections' indexes live there.
func RunMigrations(mongoURI, database, migrationsPath string) error {
	dbURL, err := migrationURL(mongoURI, database)
	if err != nil {
		return err
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// migrationURL points the connection string at database; the migrate mongodb
// driver reads the database name from the URL path.
func migrationURL(mongoURI, database string) (string, error) {
	u, err := url.Parse(mongoURI)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}
	if strings.TrimSpace(database) == "" {
		return "", errors.New("database name is required")
	}
	u.Path = "/" + database
	return u.String(), nil
}
