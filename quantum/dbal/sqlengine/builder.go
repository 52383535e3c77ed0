package sqlengine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
	"github.com/krew-solutions/quantum-go/quantum/option"
	"github.com/krew-solutions/quantum-go/quantum/session/identitymap"
)

var ErrEmptyRow = errors.New("row has no columns")

// Builder compiles the accumulated state into one SELECT statement.
type Builder struct {
	engine   *Engine
	table    string
	idColumn string
	columns  []string
	where    clauseList
	having   clauseList
	groupBy  []string
	orderBy  []string
	limit    int
	offset   int
}

func newBuilder(e *Engine, table, idColumn string) *Builder {
	quote := e.dialect.QuoteIdentifier
	return &Builder{
		engine:   e,
		table:    table,
		idColumn: idColumn,
		where:    clauseList{quote: quote},
		having:   clauseList{quote: quote},
		limit:    -1,
	}
}

func (b *Builder) QuoteIdentifier(name string) string {
	return b.engine.dialect.QuoteIdentifier(name)
}

func (b *Builder) Where() operators.Filter {
	return &b.where
}

func (b *Builder) Having() operators.Filter {
	return &b.having
}

func (b *Builder) WhereRaw(clause dbal.Raw, params ...any) {
	b.where.raw(string(clause), params)
}

func (b *Builder) Select(columns ...string) {
	b.columns = append(b.columns, columns...)
}

func (b *Builder) OrderBy(column string, direction dbal.Direction) {
	dir := dbal.Asc
	if strings.EqualFold(string(direction), string(dbal.Desc)) {
		dir = dbal.Desc
	}
	b.orderBy = append(b.orderBy, b.QuoteIdentifier(column)+" "+string(dir))
}

func (b *Builder) GroupBy(columns ...string) {
	b.groupBy = append(b.groupBy, columns...)
}

func (b *Builder) Limit(n int) {
	b.limit = n
}

func (b *Builder) Offset(n int) {
	b.offset = n
}

func (b *Builder) Clone() dbal.QueryBuilder {
	return b.clone()
}

func (b *Builder) clone() *Builder {
	c := *b
	c.columns = append([]string(nil), b.columns...)
	c.where = b.where.clone()
	c.having = b.having.clone()
	c.groupBy = append([]string(nil), b.groupBy...)
	c.orderBy = append([]string(nil), b.orderBy...)
	return &c
}

// ToSQL returns the statement in native placeholder syntax and its params.
func (b *Builder) ToSQL() (string, []any) {
	var sql strings.Builder
	sql.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(b.quoteAll(b.columns))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(b.QuoteIdentifier(b.table))

	params := make([]any, 0, len(b.where.params)+len(b.having.params))
	if !b.where.empty() {
		sql.WriteString(" WHERE ")
		sql.WriteString(b.where.sql())
		params = append(params, b.where.params...)
	}
	if len(b.groupBy) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(b.quoteAll(b.groupBy))
	}
	if !b.having.empty() {
		sql.WriteString(" HAVING ")
		sql.WriteString(b.having.sql())
		params = append(params, b.having.params...)
	}
	if len(b.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(b.orderBy, ", "))
	}
	sql.WriteString(b.engine.dialect.LimitOffset(b.limit, b.offset))

	return b.engine.dialect.Rebind(sql.String()), params
}

func (b *Builder) quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = b.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

func (b *Builder) FetchAll() ([]dbal.Row, error) {
	query, params := b.ToSQL()
	return b.query(query, params...)
}

func (b *Builder) FetchFirst() (option.Option[dbal.Row], error) {
	c := b.clone()
	c.limit = 1
	rows, err := c.FetchAll()
	if err != nil || len(rows) == 0 {
		return option.Nothing[dbal.Row](), err
	}
	return option.Some(rows[0]), nil
}

// FindByID looks the row up by primary key, ignoring accumulated conditions.
// The session identity map is consulted first. A projected lookup bypasses the
// map, which only holds whole rows.
func (b *Builder) FindByID(id any) (option.Option[dbal.Row], error) {
	im := b.engine.identityMap()
	if len(b.columns) > 0 {
		im = nil
	}
	key := identitymap.NewKey(b.table, id)
	if im != nil {
		row, err := im.Get(key)
		if err == nil {
			return option.Some(dbal.Row(row)), nil
		}
		if errors.Is(err, identitymap.ErrObjectNotFound) {
			return option.Nothing[dbal.Row](), nil
		}
	}

	res, err := b.findOneBy(b.idColumn, id)
	if err != nil {
		return res, err
	}
	if im != nil {
		if row, ok := res.Get(); ok {
			im.Add(key, row)
		} else {
			im.AddAbsent(key)
		}
	}
	return res, nil
}

func (b *Builder) FindOneBy(column string, value any) (option.Option[dbal.Row], error) {
	return b.findOneBy(column, value)
}

func (b *Builder) findOneBy(column string, value any) (option.Option[dbal.Row], error) {
	c := newBuilder(b.engine, b.table, b.idColumn)
	c.columns = append(c.columns, b.columns...)
	c.where.Equal(column, value)
	return c.FetchFirst()
}

func (b *Builder) Insert(row dbal.Row) (any, error) {
	var query string
	columns := sortedColumns(row)
	if len(columns) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
			b.QuoteIdentifier(b.table), b.QuoteIdentifier(b.idColumn))
	} else {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			b.QuoteIdentifier(b.table), b.quoteAll(columns), marks, b.QuoteIdentifier(b.idColumn))
	}

	res, err := b.engine.connection().Exec(b.engine.dialect.Rebind(query), values(row, columns)...)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read inserted id")
	}
	b.evict(id)
	return id, nil
}

func (b *Builder) Update(id any, row dbal.Row) error {
	columns := sortedColumns(row)
	if len(columns) == 0 {
		return ErrEmptyRow
	}
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = b.QuoteIdentifier(col) + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		b.QuoteIdentifier(b.table), strings.Join(sets, ", "), b.QuoteIdentifier(b.idColumn))

	params := append(values(row, columns), id)
	if _, err := b.engine.connection().Exec(b.engine.dialect.Rebind(query), params...); err != nil {
		return err
	}
	b.evict(id)
	return nil
}

func (b *Builder) Delete(id any) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		b.QuoteIdentifier(b.table), b.QuoteIdentifier(b.idColumn))
	if _, err := b.engine.connection().Exec(b.engine.dialect.Rebind(query), id); err != nil {
		return err
	}
	b.evict(id)
	return nil
}

func (b *Builder) evict(id any) {
	if im := b.engine.identityMap(); im != nil {
		im.Remove(identitymap.NewKey(b.table, id))
	}
}

func (b *Builder) query(query string, params ...any) ([]dbal.Row, error) {
	rows, err := b.engine.connection().Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []dbal.Row{}
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(dbal.Row, len(columns))
		for i, col := range columns {
			if raw, ok := vals[i].([]byte); ok {
				row[col] = string(raw)
			} else {
				row[col] = vals[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func sortedColumns(row dbal.Row) []string {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func values(row dbal.Row, columns []string) []any {
	vals := make([]any, len(columns))
	for i, col := range columns {
		vals[i] = row[col]
	}
	return vals
}
