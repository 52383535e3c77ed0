package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAutoincrementInsertQuery(t *testing.T) {
	tests := []struct {
		query    string
		expected bool
	}{
		{`INSERT INTO "users" ("name") VALUES ($1) RETURNING "id"`, true},
		{"insert into users (name)\nvalues ($1)\nreturning id;", true},
		{`INSERT INTO "users" ("name") VALUES (?)`, false},
		{`UPDATE "users" SET "name" = $1 WHERE "id" = $2 RETURNING "id"`, false},
		{`SELECT 1`, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAutoincrementInsertQuery(tt.query))
		})
	}
}
