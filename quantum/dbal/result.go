package dbal

import (
	"github.com/krew-solutions/quantum-go/quantum/option"
)

// Get runs the accumulated query. Every record is an independent Model with
// its own builder.
func (m *Model) Get() ([]*Model, error) {
	rows, err := m.builder.FetchAll()
	if err != nil {
		return nil, &DataAccessError{Op: "get", Table: m.table, Err: err}
	}
	return m.hydrateAll(rows), nil
}

func (m *Model) hydrateAll(rows []Row) []*Model {
	items := make([]*Model, 0, len(rows))
	for _, row := range rows {
		items = append(items, m.hydrate(row))
	}
	return items
}

// Paginate returns a view over the accumulated query. Nothing is fetched until
// the paginator is read.
func (m *Model) Paginate(perPage, currentPage int) *Paginator {
	return newPaginator(m, perPage, currentPage)
}

// FindOne loads the record with the given primary key into m. When there is
// none, m becomes an empty new record and Nothing is returned.
func (m *Model) FindOne(id any) (option.Option[Row], error) {
	res, err := m.builder.FindByID(id)
	if err != nil {
		return option.Nothing[Row](), &DataAccessError{Op: "find one", Table: m.table, Err: err}
	}
	return m.update(res), nil
}

func (m *Model) FindOneBy(column string, value any) (option.Option[Row], error) {
	res, err := m.builder.FindOneBy(column, value)
	if err != nil {
		return option.Nothing[Row](), &DataAccessError{Op: "find one by", Table: m.table, Err: err}
	}
	return m.update(res), nil
}

// First loads the first record of the accumulated query, in engine order.
func (m *Model) First() (option.Option[Row], error) {
	res, err := m.builder.FetchFirst()
	if err != nil {
		return option.Nothing[Row](), &DataAccessError{Op: "first", Table: m.table, Err: err}
	}
	return m.update(res), nil
}

func (m *Model) update(res option.Option[Row]) option.Option[Row] {
	row, ok := res.Get()
	if !ok {
		m.reset()
		return res
	}
	m.load(row)
	return option.Some(m.AsArray())
}

// Count fetches every matching row and counts them. Limit and offset of the
// query apply.
func (m *Model) Count() (int, error) {
	rows, err := m.builder.FetchAll()
	if err != nil {
		return 0, &DataAccessError{Op: "count", Table: m.table, Err: err}
	}
	return len(rows), nil
}

// AsArray returns the record without hidden fields.
func (m *Model) AsArray() Row {
	if len(m.data) == 0 {
		return Row{}
	}
	if len(m.hidden) > 0 {
		return m.SetHidden(m.data)
	}
	return m.data.Copy()
}

// SetHidden returns a copy of row without the hidden keys.
func (m *Model) SetHidden(row Row) Row {
	result := row.Copy()
	for _, key := range m.hidden {
		delete(result, key)
	}
	return result
}
