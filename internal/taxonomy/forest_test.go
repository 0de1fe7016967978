package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcents/internal/core"
)

func cat(id, name string, parent string) core.Category {
	c := core.Category{ID: id, Name: name, Type: core.Expense, Color: "red"}
	if parent != "" {
		c.ParentID = &parent
	}
	return c
}

func names(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Category.Name)
	}
	return out
}

func TestBuildForestOrdersAndNests(t *testing.T) {
	forest := BuildForest([]core.Category{
		cat("3", "Rent", ""),
		cat("1", "Food", ""),
		cat("4", "Restaurants", "1"),
		cat("2", "Groceries", "1"),
		cat("5", "Sushi", "4"),
	})

	require.Equal(t, []string{"Food", "Rent"}, names(forest))
	food := forest[0]
	assert.Equal(t, []string{"Groceries", "Restaurants"}, names(food.Children))
	assert.Equal(t, 2, food.Children[1].Children[0].Depth)

	var visited []string
	require.NoError(t, Walk(forest, func(n *Node) error {
		visited = append(visited, n.Category.Name)
		return nil
	}))
	assert.Equal(t, []string{"Food", "Groceries", "Restaurants", "Sushi", "Rent"}, visited)
}

func TestBuildForestPromotesOrphansAndCycles(t *testing.T) {
	forest := BuildForest([]core.Category{
		cat("a", "Alpha", "b"),
		cat("b", "Beta", "a"),
		cat("c", "Child", "a"),
		cat("o", "Orphan", "gone"),
	})

	all := Flatten(forest)
	require.Len(t, all, 4, "every category appears exactly once")
	assert.Equal(t, []string{"Orphan", "Alpha"}, names(forest))
	assert.ElementsMatch(t, []string{"Beta", "Child"}, names(forest[1].Children))
}

func TestWalkSkipAndStop(t *testing.T) {
	forest := BuildForest([]core.Category{
		cat("1", "A", ""),
		cat("2", "A1", "1"),
		cat("3", "B", ""),
	})

	var seen []string
	require.NoError(t, Walk(forest, func(n *Node) error {
		seen = append(seen, n.Category.Name)
		if n.Category.Name == "A" {
			return ErrSkipChildren
		}
		return nil
	}))
	assert.Equal(t, []string{"A", "B"}, seen)

	stop := errors.New("stop")
	err := Walk(forest, func(n *Node) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestIsAncestorTerminatesOnCorruptChain(t *testing.T) {
	byID := index([]core.Category{cat("a", "A", "b"), cat("b", "B", "a")})
	assert.False(t, isAncestor("x", "a", byID))
	assert.True(t, isAncestor("b", "a", byID))
}
