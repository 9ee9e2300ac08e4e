// Package query contains the relational plumbing shared by the repositories:
// folding flat join rows back into parent/child object graphs, and building
// congruent filter/pagination query pairs.
package query

// Graph folds an ordered stream of flat join rows (one parent plus at most one
// child per row) into parent objects owning de-duplicated, insertion-ordered
// child collections.
//
// The first row seen for a parent wins its scalar fields; later rows for the
// same parent only contribute children. A child identity is recorded at most
// once per parent no matter how many rows repeat it. Parents visited with no
// child rows still appear in Parents with an empty child collection.
type Graph[PK comparable, P any, CK comparable, C any] struct {
	attach  func(parent *P, child C)
	order   []PK
	parents map[PK]*P
	seen    map[PK]map[CK]struct{}
}

// NewGraph creates a Graph. attach appends a child to a parent's collection.
func NewGraph[PK comparable, P any, CK comparable, C any](attach func(parent *P, child C)) *Graph[PK, P, CK, C] {
	return &Graph[PK, P, CK, C]{
		attach:  attach,
		parents: make(map[PK]*P),
		seen:    make(map[PK]map[CK]struct{}),
	}
}

// Visit records one row's parent. makeParent is invoked only the first time pk
// is seen, so duplicate parent rows never overwrite already-set fields.
func (g *Graph[PK, P, CK, C]) Visit(pk PK, makeParent func() *P) *P {
	if p, ok := g.parents[pk]; ok {
		return p
	}
	p := makeParent()
	g.parents[pk] = p
	g.seen[pk] = make(map[CK]struct{})
	g.order = append(g.order, pk)
	return p
}

// VisitChild attaches child to the parent identified by pk unless that child
// identity was already attached. The parent must have been visited first.
func (g *Graph[PK, P, CK, C]) VisitChild(pk PK, ck CK, child C) {
	p, ok := g.parents[pk]
	if !ok {
		return
	}
	if _, dup := g.seen[pk][ck]; dup {
		return
	}
	g.seen[pk][ck] = struct{}{}
	g.attach(p, child)
}

// Parents returns the folded parents in first-seen order.
func (g *Graph[PK, P, CK, C]) Parents() []*P {
	out := make([]*P, 0, len(g.order))
	for _, pk := range g.order {
		out = append(out, g.parents[pk])
	}
	return out
}

// Len reports how many distinct parents have been visited.
func (g *Graph[PK, P, CK, C]) Len() int {
	return len(g.order)
}
