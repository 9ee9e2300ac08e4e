package query

import (
	"strings"
	"time"
)

// Builder accumulates typed filter conditions and renders them once, so the
// count query and the paged query of a listing are guaranteed to share the
// exact same predicate and bind arguments.
//
// Absent filter fields simply contribute no condition. All values are bound as
// parameters, never interpolated into the SQL text.
type Builder struct {
	exprs []string
	args  []any
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Where adds a raw condition with its bind arguments.
func (b *Builder) Where(expr string, args ...any) *Builder {
	b.exprs = append(b.exprs, expr)
	b.args = append(b.args, args...)
	return b
}

// WhereNotDeleted adds the soft-delete exclusion for the given table alias.
func (b *Builder) WhereNotDeleted(alias string) *Builder {
	if alias != "" {
		return b.Where(alias + ".deleted_at IS NULL")
	}
	return b.Where("deleted_at IS NULL")
}

// WhereContains adds a case-insensitive substring match. Blank values add
// nothing.
func (b *Builder) WhereContains(col, value string) *Builder {
	if strings.TrimSpace(value) == "" {
		return b
	}
	return b.Where("LOWER("+col+") LIKE LOWER(?)", "%"+value+"%")
}

// WhereDateFrom adds an inclusive lower bound. Nil adds nothing.
func (b *Builder) WhereDateFrom(col string, t *time.Time) *Builder {
	if t == nil {
		return b
	}
	return b.Where(col+" >= ?", *t)
}

// WhereDateTo adds an inclusive upper bound. Nil adds nothing.
func (b *Builder) WhereDateTo(col string, t *time.Time) *Builder {
	if t == nil {
		return b
	}
	return b.Where(col+" <= ?", *t)
}

// WhereID adds an equality condition. Nil adds nothing.
func (b *Builder) WhereID(col string, id *uint64) *Builder {
	if id == nil {
		return b
	}
	return b.Where(col+" = ?", *id)
}

// Clause renders the full WHERE clause, or an empty string when no condition
// was added. Both queries of a listing must be built from this one rendering.
func (b *Builder) Clause() string {
	if len(b.exprs) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.exprs, " AND ")
}

// Args returns the bind arguments in the order their conditions were added.
func (b *Builder) Args() []any {
	return b.args
}

// Page is a 1-based page request. Callers normalize out-of-range values before
// building queries; see utils.GetPaginationParams.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}
