package database

import (
	"database/sql"
	"time"

	"codeclash/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	log "github.com/sirupsen/logrus"
)

// Connect opens and verifies a pooled connection handle. The handle is owned
// by the caller (the composition root) and injected into repositories; there
// is no package-level connection state.
func Connect() *sql.DB {
	db, err := sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("error opening database: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}

	log.Info("connected to PostgreSQL database")
	return db
}

func Close(db *sql.DB) {
	if db != nil {
		db.Close()
		log.Info("database connection closed")
	}
}
