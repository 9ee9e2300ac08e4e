package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type parent struct {
	ID       uint64
	Name     string
	Children []child
}

type child struct {
	ID   uint64
	Name string
}

func newParentGraph() *Graph[uint64, parent, uint64, child] {
	return NewGraph[uint64, parent, uint64](func(p *parent, c child) {
		p.Children = append(p.Children, c)
	})
}

func TestGraph_DeduplicatesChildren(t *testing.T) {
	g := newParentGraph()

	// Same parent across three rows, same child repeated twice.
	rows := []struct {
		pid, cid uint64
		cname    string
	}{
		{1, 10, "alice"},
		{1, 10, "alice"},
		{1, 20, "bob"},
	}
	for _, row := range rows {
		row := row
		g.Visit(row.pid, func() *parent { return &parent{ID: row.pid, Name: "proj"} })
		g.VisitChild(row.pid, row.cid, child{ID: row.cid, Name: row.cname})
	}

	parents := g.Parents()
	assert.Len(t, parents, 1)
	assert.Len(t, parents[0].Children, 2)
	assert.Equal(t, uint64(10), parents[0].Children[0].ID)
	assert.Equal(t, uint64(20), parents[0].Children[1].ID)
}

func TestGraph_FirstParentRowWins(t *testing.T) {
	g := newParentGraph()

	g.Visit(1, func() *parent { return &parent{ID: 1, Name: "first"} })
	g.Visit(1, func() *parent { return &parent{ID: 1, Name: "second"} })

	parents := g.Parents()
	assert.Len(t, parents, 1)
	assert.Equal(t, "first", parents[0].Name)
}

func TestGraph_ParentWithoutChildrenSurvives(t *testing.T) {
	g := newParentGraph()

	// One row produced by an outer join with a NULL child block.
	g.Visit(7, func() *parent { return &parent{ID: 7, Name: "empty"} })

	parents := g.Parents()
	assert.Len(t, parents, 1)
	assert.Empty(t, parents[0].Children)
}

func TestGraph_EmptyInput(t *testing.T) {
	g := newParentGraph()
	assert.Empty(t, g.Parents())
	assert.Zero(t, g.Len())
}

func TestGraph_OrderIsFirstSeen(t *testing.T) {
	g := newParentGraph()

	for _, pid := range []uint64{3, 1, 2, 1, 3} {
		pid := pid
		g.Visit(pid, func() *parent { return &parent{ID: pid} })
	}

	parents := g.Parents()
	ids := make([]uint64, 0, len(parents))
	for _, p := range parents {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uint64{3, 1, 2}, ids)
}

func TestGraph_ChildWithoutParentIgnored(t *testing.T) {
	g := newParentGraph()
	g.VisitChild(99, 1, child{ID: 1})
	assert.Zero(t, g.Len())
}
