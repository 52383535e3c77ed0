package docengine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
	"github.com/krew-solutions/quantum-go/quantum/option"
)

// CountColumn holds the group size in grouped results.
const CountColumn = "count"

type ordering struct {
	column string
	desc   bool
}

// Builder evaluates a query against a snapshot of one collection.
type Builder struct {
	db         *Database
	collection string
	idColumn   string
	columns    []string
	where      predicateList
	having     predicateList
	groupBy    []string
	orderBy    []ordering
	limit      int
	offset     int
	rawErr     error
}

func newBuilder(db *Database, name, idColumn string) *Builder {
	return &Builder{
		db:         db,
		collection: name,
		idColumn:   idColumn,
		where:      predicateList{cmp: db.cmp},
		having:     predicateList{cmp: db.cmp},
		limit:      -1,
	}
}

func (b *Builder) Where() operators.Filter {
	return &b.where
}

func (b *Builder) Having() operators.Filter {
	return &b.having
}

// WhereRaw is recorded and reported by the next fetch.
func (b *Builder) WhereRaw(clause dbal.Raw, params ...any) {
	if b.rawErr == nil {
		b.rawErr = errors.Wrapf(ErrRawUnsupported, "clause %q", string(clause))
	}
}

func (b *Builder) WhereAnyOf(branches []dbal.Branch) {
	b.where.anyOf(branches)
}

func (b *Builder) Select(columns ...string) {
	b.columns = append(b.columns, columns...)
}

func (b *Builder) OrderBy(column string, direction dbal.Direction) {
	b.orderBy = append(b.orderBy, ordering{
		column: column,
		desc:   strings.EqualFold(string(direction), string(dbal.Desc)),
	})
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
	c.orderBy = append([]ordering(nil), b.orderBy...)
	return &c
}

func (b *Builder) FetchAll() ([]dbal.Row, error) {
	if b.rawErr != nil {
		return nil, b.rawErr
	}

	docs := make([]dbal.Row, 0)
	for _, doc := range b.db.snapshot(b.collection) {
		if b.where.match(doc) {
			docs = append(docs, doc)
		}
	}

	if len(b.groupBy) > 0 {
		docs = b.group(docs)
	}

	b.sort(docs)
	docs = b.page(docs)

	if len(b.columns) > 0 {
		for i, doc := range docs {
			docs[i] = b.project(doc)
		}
	}
	return docs, nil
}

// group folds documents into one row per distinct combination of the group
// columns, with the group size under CountColumn, then applies HAVING.
func (b *Builder) group(docs []dbal.Row) []dbal.Row {
	index := map[string]int{}
	groups := make([]dbal.Row, 0)
	for _, doc := range docs {
		key := make([]string, len(b.groupBy))
		for i, col := range b.groupBy {
			key[i] = fmt.Sprintf("%T:%v", normalize(doc[col]), normalize(doc[col]))
		}
		k := strings.Join(key, "\x00")
		if i, ok := index[k]; ok {
			groups[i][CountColumn] = groups[i][CountColumn].(int64) + 1
			continue
		}
		row := dbal.Row{CountColumn: int64(1)}
		for _, col := range b.groupBy {
			row[col] = doc[col]
		}
		index[k] = len(groups)
		groups = append(groups, row)
	}

	result := groups[:0]
	for _, g := range groups {
		if b.having.match(g) {
			result = append(result, g)
		}
	}
	return result
}

func (b *Builder) sort(docs []dbal.Row) {
	if len(b.orderBy) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range b.orderBy {
			c := b.db.cmp.Order(docs[i][o.column], docs[j][o.column])
			if c == 0 {
				continue
			}
			if o.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func (b *Builder) page(docs []dbal.Row) []dbal.Row {
	if b.offset > 0 {
		if b.offset >= len(docs) {
			return docs[:0]
		}
		docs = docs[b.offset:]
	}
	if b.limit >= 0 && b.limit < len(docs) {
		docs = docs[:b.limit]
	}
	return docs
}

func (b *Builder) project(doc dbal.Row) dbal.Row {
	row := make(dbal.Row, len(b.columns))
	for _, col := range b.columns {
		if v, ok := doc[col]; ok {
			row[col] = v
		}
	}
	return row
}

func (b *Builder) FetchFirst() (option.Option[dbal.Row], error) {
	c := b.clone()
	c.limit = 1
	docs, err := c.FetchAll()
	if err != nil || len(docs) == 0 {
		return option.Nothing[dbal.Row](), err
	}
	return option.Some(docs[0]), nil
}

// FindByID ignores accumulated conditions.
func (b *Builder) FindByID(id any) (option.Option[dbal.Row], error) {
	docID, ok := documentID(id)
	if !ok {
		return option.Nothing[dbal.Row](), nil
	}
	doc, found := b.db.get(b.collection, docID)
	if !found {
		return option.Nothing[dbal.Row](), nil
	}
	if len(b.columns) > 0 {
		doc = b.project(doc)
	}
	return option.Some(doc), nil
}

func (b *Builder) FindOneBy(column string, value any) (option.Option[dbal.Row], error) {
	c := newBuilder(b.db, b.collection, b.idColumn)
	c.columns = append(c.columns, b.columns...)
	c.where.Equal(column, value)
	return c.FetchFirst()
}

func (b *Builder) Insert(row dbal.Row) (any, error) {
	fields := row.Copy()
	delete(fields, b.idColumn)
	return b.db.insert(b.collection, b.idColumn, fields)
}

func (b *Builder) Update(id any, row dbal.Row) error {
	docID, ok := documentID(id)
	if !ok {
		return errors.Errorf("invalid document id %v", id)
	}
	fields := row.Copy()
	delete(fields, b.idColumn)
	return b.db.update(b.collection, docID, fields)
}

func (b *Builder) Delete(id any) error {
	docID, ok := documentID(id)
	if !ok {
		return errors.Errorf("invalid document id %v", id)
	}
	return b.db.delete(b.collection, docID)
}
