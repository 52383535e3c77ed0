package commands

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/quantum-go/quantum/dbal"
	"github.com/krew-solutions/quantum-go/quantum/dbal/operators"
)

type queryOptions struct {
	where    []string
	or       []string
	having   []string
	columns  []string
	groupBy  []string
	order    string
	hidden   []string
	idColumn string
	limit    int
	page     int
	perPage  int
	count    bool
}

func newQueryCommand(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Print rows of a table as JSON",
		Example: `  qt query users --where age:>:30 --order name:desc
  qt query users --or name:=:John --or name:=:Jane --page 2 --per-page 10
  qt query users --where id:IN:1,2,3 --hidden password`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), root.cfg, func(engine dbal.Engine) error {
				m := dbal.NewModel(engine, args[0], dbal.WithIDColumn(opts.idColumn), dbal.WithHidden(opts.hidden...))
				if err := opts.apply(m); err != nil {
					return err
				}
				return opts.run(cmd.OutOrStdout(), m)
			})
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&opts.where, "where", "w", nil, "criterion column:operator[:value], repeatable")
	f.StringArrayVar(&opts.or, "or", nil, "criterion joined into one OR group, repeatable")
	f.StringArrayVar(&opts.having, "having", nil, "criterion on grouped rows, repeatable")
	f.StringSliceVar(&opts.columns, "select", nil, "columns to return")
	f.StringSliceVar(&opts.groupBy, "group-by", nil, "columns to group by")
	f.StringVar(&opts.order, "order", "", "order column[:asc|desc]")
	f.StringSliceVar(&opts.hidden, "hidden", nil, "columns left out of the output")
	f.StringVar(&opts.idColumn, "id-column", "id", "primary key column")
	f.IntVarP(&opts.limit, "limit", "l", 0, "maximum number of rows")
	f.IntVarP(&opts.page, "page", "p", 0, "page number, enables pagination")
	f.IntVar(&opts.perPage, "per-page", 10, "rows per page")
	f.BoolVar(&opts.count, "count", false, "print the number of matching rows")
	return cmd
}

func (o *queryOptions) apply(m *dbal.Model) error {
	for _, w := range o.where {
		c, err := parseCriterion(w)
		if err != nil {
			return err
		}
		if _, err := m.Criteria(c.Column, c.Operator, c.Value); err != nil {
			return err
		}
	}
	if len(o.or) > 0 {
		group := make([]dbal.Criterion, 0, len(o.or))
		for _, w := range o.or {
			c, err := parseCriterion(w)
			if err != nil {
				return err
			}
			group = append(group, c)
		}
		if _, err := m.OrCriteria(group...); err != nil {
			return err
		}
	}
	if len(o.columns) > 0 {
		m.Select(o.columns...)
	}
	if len(o.groupBy) > 0 {
		m.GroupBy(o.groupBy...)
	}
	for _, h := range o.having {
		c, err := parseCriterion(h)
		if err != nil {
			return err
		}
		if _, err := m.Having(c.Column, c.Operator, c.Value); err != nil {
			return err
		}
	}
	if o.order != "" {
		column, dir, _ := strings.Cut(o.order, ":")
		direction := dbal.Asc
		if strings.EqualFold(dir, "desc") {
			direction = dbal.Desc
		}
		m.OrderBy(column, direction)
	}
	if o.limit > 0 {
		m.Limit(o.limit)
	}
	return nil
}

type page struct {
	Data        []dbal.Row `json:"data"`
	Total       int        `json:"total"`
	PerPage     int        `json:"per_page"`
	CurrentPage int        `json:"current_page"`
	LastPage    int        `json:"last_page"`
}

func (o *queryOptions) run(w io.Writer, m *dbal.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if o.count {
		n, err := m.Count()
		if err != nil {
			return err
		}
		return enc.Encode(map[string]int{"count": n})
	}

	if o.page > 0 {
		p := m.Paginate(o.perPage, o.page)
		models, err := p.Data()
		if err != nil {
			return err
		}
		total, err := p.Total()
		if err != nil {
			return err
		}
		last, err := p.LastPage()
		if err != nil {
			return err
		}
		return enc.Encode(page{
			Data:        rows(models),
			Total:       total,
			PerPage:     p.PerPage(),
			CurrentPage: p.CurrentPage(),
			LastPage:    last,
		})
	}

	models, err := m.Get()
	if err != nil {
		return err
	}
	return enc.Encode(rows(models))
}

func rows(models []*dbal.Model) []dbal.Row {
	out := make([]dbal.Row, len(models))
	for i, m := range models {
		out[i] = m.AsArray()
	}
	return out
}

// parseCriterion reads "column:operator[:value]". Values of IN and NOT IN
// are comma separated lists.
func parseCriterion(s string) (dbal.Criterion, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return dbal.Criterion{}, errors.Errorf("criterion %q is not column:operator[:value]", s)
	}
	op := operators.Operator(strings.ToUpper(parts[1]))
	c := dbal.Criterion{Column: parts[0], Operator: op}
	if len(parts) == 2 {
		return c, nil
	}
	switch op {
	case operators.OperatorIn, operators.OperatorNotIn:
		items := strings.Split(parts[2], ",")
		values := make([]any, len(items))
		for i, item := range items {
			values[i] = parseValue(item)
		}
		c.Value = values
	default:
		c.Value = parseValue(parts[2])
	}
	return c, nil
}

func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
