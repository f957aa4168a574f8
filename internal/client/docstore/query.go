package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/amanotes/internal/common"
)

type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

var fieldRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type filter struct {
	field string
	op    Op
	value any
}

type order struct {
	field string
	dir   Direction
}

// Query accumulates filters and ordering. Builder methods return the
// receiver for chaining.
type Query struct {
	coll    *Collection
	ownerID string
	filters []filter
	orders  []order
	limit   int
}

func (q *Query) Where(field string, op Op, value any) *Query {
	q.filters = append(q.filters, filter{field: field, op: op, value: value})
	return q
}

func (q *Query) OrderBy(field string, dir Direction) *Query {
	q.orders = append(q.orders, order{field: field, dir: dir})
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// SQL renders the statement and its arguments.
func (q *Query) SQL() (string, []any, error) {
	var (
		b    strings.Builder
		args = []any{q.coll.name, q.ownerID}
	)
	b.WriteString(`SELECT id, owner_id, data, created_at, updated_at FROM documents WHERE collection = $1 AND owner_id = $2`)

	for _, f := range q.filters {
		if !fieldRe.MatchString(f.field) {
			return "", nil, fmt.Errorf("invalid field name %q", f.field)
		}
		raw, err := json.Marshal(f.value)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter value for %s: %w", f.field, err)
		}
		args = append(args, string(raw))
		n := len(args)
		path := fmt.Sprintf("data->'%s'", f.field)

		switch f.op {
		case OpEq:
			fmt.Fprintf(&b, " AND %s = $%d::jsonb", path, n)
		case OpNe:
			fmt.Fprintf(&b, " AND %s IS DISTINCT FROM $%d::jsonb", path, n)
		case OpLt, OpLe, OpGt, OpGe:
			fmt.Fprintf(&b, " AND jsonb_typeof(%s) = jsonb_typeof($%d::jsonb) AND %s %s $%d::jsonb", path, n, path, f.op, n)
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", f.op)
		}
	}

	if len(q.orders) > 0 {
		parts := make([]string, 0, len(q.orders)+1)
		for _, o := range q.orders {
			if !fieldRe.MatchString(o.field) {
				return "", nil, fmt.Errorf("invalid field name %q", o.field)
			}
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			parts = append(parts, fmt.Sprintf("data->'%s' %s NULLS LAST", o.field, dir))
		}
		parts = append(parts, "id")
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.limit)
	}
	return b.String(), args, nil
}

// Get runs the query once.
func (q *Query) Get(ctx context.Context) ([]Document, error) {
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.coll.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", common.ErrTransport, q.coll.name, err)
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", common.ErrTransport, q.coll.name, err)
	}
	return result, nil
}

// DeleteAll fetches the matching documents and deletes each one. A document
// removed by someone else in between counts as already deleted. It returns
// the number of documents this call deleted.
func (q *Query) DeleteAll(ctx context.Context) (int, error) {
	docs, err := q.Get(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range docs {
		err := q.coll.Delete(ctx, d.ID, q.ownerID)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
