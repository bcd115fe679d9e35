package phapi

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Handler serves the PhaserAI API routes over a shared database connection.
type Handler struct {
	db  *sql.DB
	log *zap.Logger
}

// New creates a Handler.
func New(db *sql.DB, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{db: db, log: log}
}

// updateBuilder collects SET clauses for a dynamic UPDATE statement, the way
// the handlers apply partial updates: only fields present in the request
// body become clauses.
type updateBuilder struct {
	clauses []string
	args    []any
}

// set adds a column assignment with its value.
func (b *updateBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// empty reports whether no assignments were added.
func (b *updateBuilder) empty() bool {
	return len(b.clauses) == 0
}

// query renders the full UPDATE statement. The WHERE argument is appended
// after the SET arguments.
func (b *updateBuilder) query(table, where string, whereArg any, returning string) (string, []any) {
	args := append(b.args, whereArg)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		table, strings.Join(b.clauses, ", "), where, len(args), returning)
	return q, args
}

// textArrayLiteral renders a Postgres text[] literal, e.g. {"noun","verb"}.
// Elements are quoted and escaped so values with special characters stay
// intact.
func textArrayLiteral(elems []string) string {
	if len(elems) == 0 {
		return "{}"
	}
	quoted := make([]string, len(elems))
	for i, e := range elems {
		e = strings.ReplaceAll(e, `\`, `\\`)
		e = strings.ReplaceAll(e, `"`, `\"`)
		quoted[i] = `"` + e + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// floatArrayLiteral renders a Postgres float8[] literal. Returns sql NULL
// semantics via the nil interface when the slice is nil.
func floatArrayLiteral(elems []float64) any {
	if elems == nil {
		return nil
	}
	parts := make([]string, len(elems))
	for i, f := range elems {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
