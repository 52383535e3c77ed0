package sqlengine

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Dialect covers the differences between the supported SQL databases.
type Dialect interface {
	Name() string
	// Rebind rewrites ? markers into the native placeholder syntax.
	Rebind(query string) string
	QuoteIdentifier(name string) string
	// LimitOffset renders the pagination tail; limit < 0 means no limit.
	LimitOffset(limit, offset int) string
}

var (
	SQLite   Dialect = sqliteDialect{}
	Postgres Dialect = postgresDialect{}
)

func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return nil, errors.Errorf("unknown sql dialect %q", name)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string {
	return "sqlite"
}

func (sqliteDialect) Rebind(query string) string {
	return query
}

func (sqliteDialect) QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

func (sqliteDialect) LimitOffset(limit, offset int) string {
	switch {
	case limit >= 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	case limit >= 0:
		return fmt.Sprintf(" LIMIT %d", limit)
	case offset > 0:
		// SQLite accepts OFFSET only after LIMIT.
		return fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
	}
	return ""
}

type postgresDialect struct{}

func (postgresDialect) Name() string {
	return "postgres"
}

func (postgresDialect) Rebind(query string) string {
	return replaceParamMarkers(query)
}

func (postgresDialect) QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

func (postgresDialect) LimitOffset(limit, offset int) string {
	var b strings.Builder
	if limit >= 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	if offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", offset)
	}
	return b.String()
}

// replaceParamMarkers numbers ? markers as $1, $2... Markers inside quoted
// literals are left alone.
func replaceParamMarkers(sql string) string {
	var b strings.Builder
	idx := 1
	inLiteral := false
	for i := 0; i < len(sql); i++ {
		switch {
		case sql[i] == '\'':
			inLiteral = !inLiteral
			b.WriteByte(sql[i])
		case sql[i] == '?' && !inLiteral:
			b.WriteString(fmt.Sprintf("$%d", idx))
			idx++
		default:
			b.WriteByte(sql[i])
		}
	}
	return b.String()
}

// quoteIdentifier quotes plain and dotted names. The star and expressions such
// as COUNT(*) AS total are kept verbatim.
func quoteIdentifier(name string) string {
	if name == "*" || strings.ContainsAny(name, "() \"") {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}
