package database

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log"
	"sort"
	"time"

	"algoprep/internal/platform/config"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

//go:embed migrations/*.sql
var migrations embed.FS

var DB *sql.DB

func Connect() {
	var err error
	DB, err = Open(config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	log.Println("INFO: Connected to PostgreSQL database.")
}

// Open opens and pings a pgx-backed pool.
func Open(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

// Migrate applies the embedded schema files in name order. Every file is written to
// be idempotent, so the whole set runs on each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := MigrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		stmt, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return errors.Wrapf(err, "read migration %s", name)
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return errors.Wrapf(err, "apply migration %s", name)
		}
		log.Printf("INFO: Applied migration %s", name)
	}
	return nil
}

func MigrationNames() ([]string, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "list migrations")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func Close() {
	if DB != nil {
		DB.Close()
		log.Println("INFO: Database connection closed.")
	}
}
