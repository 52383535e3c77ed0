package dbal

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

const DefaultIDColumn = "id"

type Row map[string]any

func (r Row) Copy() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Model is a query under construction and, once hydrated, one record of its
// table. A Model is request scoped.
type Model struct {
	table          string
	idColumn       string
	hidden         []string
	operators      *operators.Table
	engine         Engine
	builder        QueryBuilder
	data           Row
	modifiedFields Row
	isNew          bool
}

type ModelOption func(*Model)

func WithIDColumn(column string) ModelOption {
	return func(m *Model) {
		m.idColumn = column
	}
}

// WithHidden lists keys that AsArray never exposes.
func WithHidden(keys ...string) ModelOption {
	return func(m *Model) {
		m.hidden = append(m.hidden, keys...)
	}
}

func WithOperators(table *operators.Table) ModelOption {
	return func(m *Model) {
		m.operators = table
	}
}

var defaultOperators = operators.NewDefaultTable()

func NewModel(engine Engine, table string, opts ...ModelOption) *Model {
	m := &Model{
		table:          table,
		idColumn:       DefaultIDColumn,
		operators:      defaultOperators,
		engine:         engine,
		data:           Row{},
		modifiedFields: Row{},
		isNew:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.builder = engine.Builder(m.table, m.idColumn)
	return m
}

// NewModelFor derives the table from a model name: "BlogPost" maps to
// "blog_posts".
func NewModelFor(engine Engine, name string, opts ...ModelOption) *Model {
	return NewModel(engine, TableName(name), opts...)
}

func TableName(name string) string {
	return inflection.Plural(snakeCase(name))
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (m *Model) Table() string {
	return m.table
}

func (m *Model) IDColumn() string {
	return m.idColumn
}

func (m *Model) IsNew() bool {
	return m.isNew
}

// Builder exposes the underlying query state, mostly for engines and tests.
func (m *Model) Builder() QueryBuilder {
	return m.builder
}

func (m *Model) hydrate(row Row) *Model {
	item := *m
	item.hidden = append([]string(nil), m.hidden...)
	item.builder = m.engine.Builder(m.table, m.idColumn)
	item.data = row
	item.modifiedFields = row.Copy()
	item.isNew = false
	return &item
}

func (m *Model) load(row Row) {
	m.data = row
	m.modifiedFields = row.Copy()
	m.isNew = false
}

func (m *Model) reset() {
	m.data = Row{}
	m.modifiedFields = Row{}
	m.isNew = true
}

// Create returns an empty new record of the same table.
func (m *Model) Create() *Model {
	item := m.hydrate(Row{})
	item.isNew = true
	return item
}

// Prop reads a field, including values set but not saved yet.
func (m *Model) Prop(key string) any {
	if v, ok := m.modifiedFields[key]; ok {
		return v
	}
	return m.data[key]
}

func (m *Model) SetProp(key string, value any) *Model {
	m.modifiedFields[key] = value
	return m
}

// Save inserts a new record or updates the changed fields of a loaded one.
func (m *Model) Save() error {
	b := m.engine.Builder(m.table, m.idColumn)

	if m.isNew {
		fields := m.modifiedFields.Copy()
		id, err := b.Insert(fields)
		if err != nil {
			return &DataAccessError{Op: "insert", Table: m.table, Err: err}
		}
		if id != nil {
			fields[m.idColumn] = id
		}
		m.load(fields)
		return nil
	}

	id, ok := m.data[m.idColumn]
	if !ok || id == nil {
		return ErrNotLoaded
	}

	changed := Row{}
	for k, v := range m.modifiedFields {
		if old, ok := m.data[k]; !ok || !reflect.DeepEqual(old, v) {
			changed[k] = v
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if err := b.Update(id, changed); err != nil {
		return &DataAccessError{Op: "update", Table: m.table, Err: err}
	}
	m.load(m.modifiedFields.Copy())
	return nil
}

func (m *Model) Delete() error {
	id, ok := m.data[m.idColumn]
	if m.isNew || !ok || id == nil {
		return ErrNotLoaded
	}
	if err := m.engine.Builder(m.table, m.idColumn).Delete(id); err != nil {
		return &DataAccessError{Op: "delete", Table: m.table, Err: err}
	}
	m.reset()
	return nil
}
