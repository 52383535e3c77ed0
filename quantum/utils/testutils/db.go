package testutils

import (
	"context"
	"os"

	pgsession "github.com/krew-solutions/quantum-go/quantum/session/pg"
)

// NewPgSessionPool connects to the database described by the DB_* environment
// variables. pgxpool connects lazily, so a missing server surfaces on the
// first Session call.
func NewPgSessionPool() (*pgsession.SessionPool, error) {
	var dbUsername string = getEnv("DB_USERNAME", "devel")
	var dbPassword string = getEnv("DB_PASSWORD", "devel")
	var dbHost string = getEnv("DB_HOST", "localhost")
	var dbPort string = getEnv("DB_PORT", "5432")
	var dbBasename string = getEnv("DB_DATABASE", "devel_quantum")

	connString := "postgres://" + dbUsername + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbBasename

	return pgsession.Connect(context.Background(), connString)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
