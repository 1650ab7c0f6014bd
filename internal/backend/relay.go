package backend

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/model"
)

// DefaultLimit applies when a list request carries neither first nor last.
const DefaultLimit = 10

var (
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidCursor = errors.New("invalid cursor format")
)

// EncodeID renders a row id as an opaque string: base64url of its 8 big-endian bytes.
func EncodeID(id int64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// DecodeID reverses EncodeID.
func DecodeID(s string) (int64, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil || len(b) != 8 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// Cursor marks a position in the id-ordered list.
type Cursor struct {
	ID        int64
	CreatedAt int64
}

func (c Cursor) String() string {
	return base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf("%d:%d", c.CreatedAt, c.ID)))
}

// ParseCursor reverses Cursor.String.
func ParseCursor(s string) (Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	created, id, ok := strings.Cut(string(b), ":")
	if !ok {
		return Cursor{}, ErrInvalidCursor
	}
	c, err1 := strconv.ParseInt(created, 10, 64)
	i, err2 := strconv.ParseInt(id, 10, 64)
	if err1 != nil || err2 != nil {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{ID: i, CreatedAt: c}, nil
}

// PaginationError carries one of the machine-readable codes
// VALUE_OUT_OF_RANGE, INVALID_PARAM_COMBINATION or DIRECTION_CONFLICT.
type PaginationError struct {
	Code    string
	Message string
}

func (e *PaginationError) Error() string { return e.Message }

// Pagination is a decoded list request.
type Pagination struct {
	First  *int
	After  *Cursor
	Last   *int
	Before *Cursor
}

// Validate rejects negative sizes and mixed directions.
func (p Pagination) Validate() error {
	switch {
	case p.First != nil && *p.First < 0:
		return &PaginationError{Code: "VALUE_OUT_OF_RANGE", Message: "'first' argument must be positive number"}
	case p.Last != nil && *p.Last < 0:
		return &PaginationError{Code: "VALUE_OUT_OF_RANGE", Message: "'last' argument must be positive number"}
	case p.First != nil && p.Last != nil:
		return &PaginationError{Code: "INVALID_PARAM_COMBINATION", Message: "Cannot use both 'first' and 'last'"}
	case p.First != nil && p.Before != nil:
		return &PaginationError{Code: "DIRECTION_CONFLICT", Message: "'first' cannot be used with 'before'"}
	case p.Last != nil && p.After != nil:
		return &PaginationError{Code: "DIRECTION_CONFLICT", Message: "'last' cannot be used with 'after'"}
	}
	return nil
}

// Limit is the page size asked for.
func (p Pagination) Limit() int {
	switch {
	case p.First != nil:
		return *p.First
	case p.Last != nil:
		return *p.Last
	}
	return DefaultLimit
}

// Backward reports whether the page is taken from the end of the range (last).
func (p Pagination) Backward() bool {
	return p.Last != nil
}

// Record is a stored todo.
type Record struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
	CreatedAt   int64  `json:"created_at"`
}

func (r Record) cursor() Cursor {
	return Cursor{ID: r.ID, CreatedAt: r.CreatedAt}
}

// Todo is the wire form of r.
func (r Record) Todo() model.Todo {
	return model.Todo{
		ID:          EncodeID(r.ID),
		Description: r.Description,
		Done:        r.Done,
		CreatedAt:   time.Unix(r.CreatedAt, 0).UTC(),
	}
}

// after reports whether r sorts after c in (id, created_at) order.
func (r Record) after(c Cursor) bool {
	return r.ID > c.ID || (r.ID == c.ID && r.CreatedAt > c.CreatedAt)
}

func (r Record) before(c Cursor) bool {
	return r.ID < c.ID || (r.ID == c.ID && r.CreatedAt < c.CreatedAt)
}

// Connection is the wire form of a list page. TotalCount is only set when selected.
type Connection struct {
	Edges      []model.Edge[model.Todo] `json:"edges"`
	PageInfo   model.PageInfo           `json:"pageInfo"`
	TotalCount *int                     `json:"totalCount,omitempty"`
}

// BuildConnection turns the rows a store returned for p into a page. Stores
// return up to Limit()+1 rows in fetch order (descending for backward pages)
// so the extra row tells whether more exist. Edges are always ascending.
func BuildConnection(p Pagination, rows []Record) Connection {
	limit := p.Limit()
	more := len(rows) > limit
	if more {
		rows = rows[:limit]
	}
	if p.Backward() {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	conn := Connection{Edges: make([]model.Edge[model.Todo], 0, len(rows))}
	for _, r := range rows {
		conn.Edges = append(conn.Edges, model.Edge[model.Todo]{Node: r.Todo(), Cursor: r.cursor().String()})
	}
	if p.Backward() {
		conn.PageInfo.HasPreviousPage = more
	} else {
		conn.PageInfo.HasNextPage = more
	}
	if n := len(conn.Edges); n > 0 {
		start, end := conn.Edges[0].Cursor, conn.Edges[n-1].Cursor
		conn.PageInfo.StartCursor = &start
		conn.PageInfo.EndCursor = &end
	}
	return conn
}
