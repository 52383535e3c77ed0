package dbal

import (
	"fmt"

	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
	"github.com/krew-solutions/quantum-go/quantum/option"
)

type recordedFilter struct {
	calls *[]string
	kind  string
}

func (f recordedFilter) add(method, column string, value any) {
	*f.calls = append(*f.calls, fmt.Sprintf("%s.%s(%s,%v)", f.kind, method, column, value))
}

func (f recordedFilter) Equal(c string, v any)    { f.add("Equal", c, v) }
func (f recordedFilter) NotEqual(c string, v any) { f.add("NotEqual", c, v) }
func (f recordedFilter) Gt(c string, v any)       { f.add("Gt", c, v) }
func (f recordedFilter) Gte(c string, v any)      { f.add("Gte", c, v) }
func (f recordedFilter) Lt(c string, v any)       { f.add("Lt", c, v) }
func (f recordedFilter) Lte(c string, v any)      { f.add("Lte", c, v) }
func (f recordedFilter) In(c string, v any)       { f.add("In", c, v) }
func (f recordedFilter) NotIn(c string, v any)    { f.add("NotIn", c, v) }
func (f recordedFilter) Like(c string, v any)     { f.add("Like", c, v) }
func (f recordedFilter) NotLike(c string, v any)  { f.add("NotLike", c, v) }
func (f recordedFilter) Null(c string)            { f.add("Null", c, nil) }
func (f recordedFilter) NotNull(c string)         { f.add("NotNull", c, nil) }

type rawCall struct {
	clause Raw
	params []any
}

type fakeEngine struct {
	rows     []Row
	err      error
	builders []*fakeBuilder
	inserted []Row
	updated  map[any]Row
	deleted  []any
	nextID   int
}

func newFakeEngine(rows ...Row) *fakeEngine {
	return &fakeEngine{rows: rows, updated: map[any]Row{}, nextID: 100}
}

func (e *fakeEngine) Builder(table, idColumn string) QueryBuilder {
	b := &fakeBuilder{engine: e, table: table, idColumn: idColumn, limit: -1}
	e.builders = append(e.builders, b)
	return b
}

type fakeBuilder struct {
	engine   *fakeEngine
	table    string
	idColumn string
	calls    []string
	raws     []rawCall
	limit    int
	offset   int
	fetches  int
}

func (b *fakeBuilder) Where() operators.Filter {
	return recordedFilter{calls: &b.calls, kind: "where"}
}

func (b *fakeBuilder) Having() operators.Filter {
	return recordedFilter{calls: &b.calls, kind: "having"}
}

func (b *fakeBuilder) WhereRaw(clause Raw, params ...any) {
	b.raws = append(b.raws, rawCall{clause: clause, params: params})
}

func (b *fakeBuilder) Select(columns ...string) {
	b.calls = append(b.calls, fmt.Sprintf("select(%v)", columns))
}

func (b *fakeBuilder) OrderBy(column string, direction Direction) {
	b.calls = append(b.calls, fmt.Sprintf("order(%s,%s)", column, direction))
}

func (b *fakeBuilder) GroupBy(columns ...string) {
	b.calls = append(b.calls, fmt.Sprintf("group(%v)", columns))
}

func (b *fakeBuilder) Limit(n int)  { b.limit = n }
func (b *fakeBuilder) Offset(n int) { b.offset = n }

func (b *fakeBuilder) Clone() QueryBuilder {
	c := *b
	c.calls = append([]string(nil), b.calls...)
	c.raws = append([]rawCall(nil), b.raws...)
	b.engine.builders = append(b.engine.builders, &c)
	return &c
}

func (b *fakeBuilder) FetchAll() ([]Row, error) {
	b.fetches++
	if b.engine.err != nil {
		return nil, b.engine.err
	}
	rows := b.engine.rows
	if b.offset >= len(rows) {
		return []Row{}, nil
	}
	rows = rows[b.offset:]
	if b.limit >= 0 && b.limit < len(rows) {
		rows = rows[:b.limit]
	}
	result := make([]Row, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.Copy())
	}
	return result, nil
}

func (b *fakeBuilder) FetchFirst() (option.Option[Row], error) {
	rows, err := b.FetchAll()
	if err != nil || len(rows) == 0 {
		return option.Nothing[Row](), err
	}
	return option.Some(rows[0]), nil
}

func (b *fakeBuilder) FindByID(id any) (option.Option[Row], error) {
	return b.FindOneBy(b.idColumn, id)
}

func (b *fakeBuilder) FindOneBy(column string, value any) (option.Option[Row], error) {
	if b.engine.err != nil {
		return option.Nothing[Row](), b.engine.err
	}
	for _, r := range b.engine.rows {
		if r[column] == value {
			return option.Some(r.Copy()), nil
		}
	}
	return option.Nothing[Row](), nil
}

func (b *fakeBuilder) Insert(row Row) (any, error) {
	if b.engine.err != nil {
		return nil, b.engine.err
	}
	b.engine.nextID++
	b.engine.inserted = append(b.engine.inserted, row.Copy())
	return b.engine.nextID, nil
}

func (b *fakeBuilder) Update(id any, row Row) error {
	if b.engine.err != nil {
		return b.engine.err
	}
	b.engine.updated[id] = row.Copy()
	return nil
}

func (b *fakeBuilder) Delete(id any) error {
	if b.engine.err != nil {
		return b.engine.err
	}
	b.engine.deleted = append(b.engine.deleted, id)
	return nil
}

// anyOfBuilder evaluates OR groups natively.
type anyOfBuilder struct {
	*fakeBuilder
	branches [][]Branch
}

func (b *anyOfBuilder) WhereAnyOf(branches []Branch) {
	b.branches = append(b.branches, branches)
}

type quotingBuilder struct {
	*fakeBuilder
}

func (b quotingBuilder) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}
