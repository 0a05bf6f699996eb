package repository

import (
	"regexp"

	"gorm.io/gorm"

	apperrors "socialdash/internal/errors"
)

// Op is a comparison operator usable in a Cond.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
	OpIn  Op = "IN"
)

// Cond is one column comparison.
type Cond struct {
	Column string
	Op     Op
	Value  interface{}
}

// Eq matches rows whose column equals v.
func Eq(column string, v interface{}) Cond { return Cond{Column: column, Op: OpEq, Value: v} }

// Gte matches rows whose column is >= v.
func Gte(column string, v interface{}) Cond { return Cond{Column: column, Op: OpGte, Value: v} }

// Lte matches rows whose column is <= v.
func Lte(column string, v interface{}) Cond { return Cond{Column: column, Op: OpLte, Value: v} }

// In matches rows whose column is one of vs.
func In(column string, vs interface{}) Cond { return Cond{Column: column, Op: OpIn, Value: vs} }

// Query is an equality/range filter with optional ordering and limit.
type Query struct {
	Conds   []Cond
	OrderBy string
	Desc    bool
	Limit   int
}

// Where builds a Query from conditions.
func Where(conds ...Cond) Query {
	return Query{Conds: conds}
}

// And returns a copy of q with an additional condition.
func (q Query) And(c Cond) Query {
	conds := make([]Cond, 0, len(q.Conds)+1)
	conds = append(conds, q.Conds...)
	q.Conds = append(conds, c)
	return q
}

// Order returns a copy of q sorted by column.
func (q Query) Order(column string, desc bool) Query {
	q.OrderBy = column
	q.Desc = desc
	return q
}

// Take returns a copy of q limited to n rows.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

var columnPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (q Query) apply(tx *gorm.DB) (*gorm.DB, error) {
	for _, c := range q.Conds {
		if !columnPattern.MatchString(c.Column) {
			return nil, apperrors.Validation("invalid column %q", c.Column)
		}
		switch c.Op {
		case OpEq, OpGte, OpLte:
			tx = tx.Where(c.Column+" "+string(c.Op)+" ?", c.Value)
		case OpIn:
			tx = tx.Where(c.Column+" IN ?", c.Value)
		default:
			return nil, apperrors.Validation("unsupported operator %q", c.Op)
		}
	}
	if q.OrderBy != "" {
		if !columnPattern.MatchString(q.OrderBy) {
			return nil, apperrors.Validation("invalid order column %q", q.OrderBy)
		}
		order := q.OrderBy
		if q.Desc {
			order += " DESC"
		}
		tx = tx.Order(order)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx, nil
}
