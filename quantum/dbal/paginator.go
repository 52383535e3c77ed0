package dbal

import (
	"github.com/krew-solutions/quantum-go/quantum/option"
)

type Paginator struct {
	model       *Model
	perPage     int
	currentPage int
	total       option.Option[int]
}

func newPaginator(m *Model, perPage, currentPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	return &Paginator{model: m, perPage: perPage, currentPage: currentPage}
}

func (p *Paginator) PerPage() int {
	return p.perPage
}

func (p *Paginator) CurrentPage() int {
	return p.currentPage
}

// Data fetches the records of the current page.
func (p *Paginator) Data() ([]*Model, error) {
	b := p.model.builder.Clone()
	b.Limit(p.perPage)
	b.Offset((p.currentPage - 1) * p.perPage)
	rows, err := b.FetchAll()
	if err != nil {
		return nil, &DataAccessError{Op: "paginate", Table: p.model.table, Err: err}
	}
	return p.model.hydrateAll(rows), nil
}

// Total is the number of records of the whole query. It is computed once.
func (p *Paginator) Total() (int, error) {
	if total, ok := p.total.Get(); ok {
		return total, nil
	}
	total, err := p.model.Count()
	if err != nil {
		return 0, err
	}
	p.total = option.Some(total)
	return total, nil
}

func (p *Paginator) LastPage() (int, error) {
	total, err := p.Total()
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 1, nil
	}
	return (total + p.perPage - 1) / p.perPage, nil
}

func (p *Paginator) PreviousPage() option.Option[int] {
	if p.currentPage > 1 {
		return option.Some(p.currentPage - 1)
	}
	return option.Nothing[int]()
}

func (p *Paginator) NextPage() (option.Option[int], error) {
	last, err := p.LastPage()
	if err != nil {
		return option.Nothing[int](), err
	}
	if p.currentPage < last {
		return option.Some(p.currentPage + 1), nil
	}
	return option.Nothing[int](), nil
}

// FirstItem returns the first record of the current page.
func (p *Paginator) FirstItem() (option.Option[Row], error) {
	items, err := p.Data()
	if err != nil || len(items) == 0 {
		return option.Nothing[Row](), err
	}
	return option.Some(items[0].AsArray()), nil
}

// LastItem returns the last record of the current page.
func (p *Paginator) LastItem() (option.Option[Row], error) {
	items, err := p.Data()
	if err != nil || len(items) == 0 {
		return option.Nothing[Row](), err
	}
	return option.Some(items[len(items)-1].AsArray()), nil
}
