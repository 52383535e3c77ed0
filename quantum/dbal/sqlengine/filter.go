package sqlengine

import (
	"reflect"
	"strings"
)

// clauseList collects the conditions of a WHERE or HAVING clause. Conditions
// are joined with AND.
type clauseList struct {
	quote  func(string) string
	parts  []string
	params []any
}

func (c *clauseList) clone() clauseList {
	return clauseList{
		quote:  c.quote,
		parts:  append([]string(nil), c.parts...),
		params: append([]any(nil), c.params...),
	}
}

func (c *clauseList) empty() bool {
	return len(c.parts) == 0
}

func (c *clauseList) sql() string {
	return strings.Join(c.parts, " AND ")
}

func (c *clauseList) compare(column, symbol string, value any) {
	c.parts = append(c.parts, c.quote(column)+" "+symbol+" ?")
	c.params = append(c.params, value)
}

func (c *clauseList) raw(clause string, params []any) {
	c.parts = append(c.parts, clause)
	c.params = append(c.params, params...)
}

func (c *clauseList) list(column, symbol string, values any, whenEmpty string) {
	items := expand(values)
	if len(items) == 0 {
		c.parts = append(c.parts, whenEmpty)
		return
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")
	c.parts = append(c.parts, c.quote(column)+" "+symbol+" ("+marks+")")
	c.params = append(c.params, items...)
}

func (c *clauseList) Equal(column string, value any)    { c.compare(column, "=", value) }
func (c *clauseList) NotEqual(column string, value any) { c.compare(column, "!=", value) }
func (c *clauseList) Gt(column string, value any)       { c.compare(column, ">", value) }
func (c *clauseList) Gte(column string, value any)      { c.compare(column, ">=", value) }
func (c *clauseList) Lt(column string, value any)       { c.compare(column, "<", value) }
func (c *clauseList) Lte(column string, value any)      { c.compare(column, "<=", value) }
func (c *clauseList) Like(column string, value any)     { c.compare(column, "LIKE", value) }
func (c *clauseList) NotLike(column string, value any)  { c.compare(column, "NOT LIKE", value) }

func (c *clauseList) In(column string, values any) {
	c.list(column, "IN", values, "1 = 0")
}

func (c *clauseList) NotIn(column string, values any) {
	c.list(column, "NOT IN", values, "1 = 1")
}

func (c *clauseList) Null(column string) {
	c.parts = append(c.parts, c.quote(column)+" IS NULL")
}

func (c *clauseList) NotNull(column string) {
	c.parts = append(c.parts, c.quote(column)+" IS NOT NULL")
}

// expand turns a slice or array into its elements; any other value is a
// single element. []byte is a value, not a list.
func expand(values any) []any {
	if values == nil {
		return nil
	}
	if b, ok := values.([]byte); ok {
		return []any{b}
	}
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []any{values}
	}
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items
}
