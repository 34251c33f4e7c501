package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// sortDirection is an ORDER BY direction
type sortDirection string

const (
	sortAsc  sortDirection = "ASC"
	sortDesc sortDirection = "DESC"
)

// ErrUnknownField is returned by selectQuery.Build when a caller orders or
// groups by a field outside the query's whitelist
var ErrUnknownField = errors.New("unknown query field")

// jobFields are the job fields that may appear in ORDER BY and GROUP BY.
// year and month are projections used by the monthly stats query.
var jobFields = map[string]bool{
	"id":           true,
	"company":      true,
	"position":     true,
	"status":       true,
	"job_type":     true,
	"job_location": true,
	"created_by":   true,
	"created_at":   true,
	"updated_at":   true,
	"year":         true,
	"month":        true,
}

// selectQuery assembles a SurrealQL SELECT. Conditions are fixed clause
// text with values always bound as variables; field names used for ordering
// and grouping are checked against a whitelist.
type selectQuery struct {
	table      string
	projection string
	allowed    map[string]bool

	where []string
	vars  map[string]interface{}
	group []string
	order []string
	limit int
	start int

	err error
}

func newSelect(table, projection string, allowed map[string]bool) *selectQuery {
	if projection == "" {
		projection = "*"
	}
	return &selectQuery{
		table:      table,
		projection: projection,
		allowed:    allowed,
		vars:       make(map[string]interface{}),
	}
}

// Where adds a condition. The clause references the bound variable as $name.
func (q *selectQuery) Where(clause, name string, value interface{}) *selectQuery {
	if !strings.Contains(clause, "$"+name) {
		q.fail(fmt.Errorf("clause %q does not reference $%s", clause, name))
		return q
	}
	q.where = append(q.where, clause)
	q.vars[name] = value
	return q
}

// OrderBy appends an ordering on a whitelisted field
func (q *selectQuery) OrderBy(field string, dir sortDirection) *selectQuery {
	if !q.allowed[field] {
		q.fail(fmt.Errorf("%w: %s", ErrUnknownField, field))
		return q
	}
	if dir != sortAsc && dir != sortDesc {
		q.fail(fmt.Errorf("invalid sort direction %q", dir))
		return q
	}
	q.order = append(q.order, field+" "+string(dir))
	return q
}

// GroupBy groups by whitelisted fields
func (q *selectQuery) GroupBy(fields ...string) *selectQuery {
	for _, f := range fields {
		if !q.allowed[f] {
			q.fail(fmt.Errorf("%w: %s", ErrUnknownField, f))
			return q
		}
	}
	q.group = append(q.group, fields...)
	return q
}

// Limit caps the number of rows; zero means no limit
func (q *selectQuery) Limit(n int) *selectQuery {
	if n > 0 {
		q.limit = n
	}
	return q
}

// Start skips the first n rows
func (q *selectQuery) Start(n int) *selectQuery {
	if n > 0 {
		q.start = n
	}
	return q
}

func (q *selectQuery) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// Build renders the statement and its variables
func (q *selectQuery) Build() (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(q.projection)
	sb.WriteString(" FROM ")
	sb.WriteString(q.table)
	q.writeWhere(&sb)

	if len(q.group) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(q.group, ", "))
	}
	if len(q.order) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(q.order, ", "))
	}
	if q.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(q.limit))
	}
	if q.start > 0 {
		sb.WriteString(" START ")
		sb.WriteString(strconv.Itoa(q.start))
	}

	return sb.String(), q.vars, nil
}

// BuildCount renders a count over the same conditions, ignoring ordering,
// grouping and paging
func (q *selectQuery) BuildCount() (string, map[string]interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	var sb strings.Builder
	sb.WriteString("SELECT count() AS count FROM ")
	sb.WriteString(q.table)
	q.writeWhere(&sb)
	sb.WriteString(" GROUP ALL")

	return sb.String(), q.vars, nil
}

func (q *selectQuery) writeWhere(sb *strings.Builder) {
	if len(q.where) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(q.where, " AND "))
}
