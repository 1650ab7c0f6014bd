package model

// PageInfo is the paging metadata returned next to a page of edges.
// The client carries it but does not page with it.
type PageInfo struct {
	HasPreviousPage bool    `json:"hasPreviousPage"`
	HasNextPage     bool    `json:"hasNextPage"`
	StartCursor     *string `json:"startCursor,omitempty"`
	EndCursor       *string `json:"endCursor,omitempty"`
}

// Edge pairs a node with its opaque cursor.
type Edge[N any] struct {
	Node   N      `json:"node"`
	Cursor string `json:"cursor"`
}

// Connection is a cursor-paginated list envelope. Edge order is the server's order.
type Connection[N any] struct {
	Edges    []Edge[N] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// Nodes returns the nodes in edge order.
func (c Connection[N]) Nodes() []N {
	out := make([]N, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

// Page holds the optional forward (First/After) and backward (Last/Before)
// paging arguments of a list request. Nil fields are not sent.
type Page struct {
	First  *int
	After  *string
	Last   *int
	Before *string
}

// FirstN is a forward page of n records from the start of the list.
func FirstN(n int) Page {
	return Page{First: &n}
}
