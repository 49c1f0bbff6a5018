package services

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"resepi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

func mk(id string, parent *string, minute int) models.Comment {
	return models.Comment{
		ID:        id,
		ParentID:  parent,
		Content:   "komen " + id,
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
		User:      models.User{ID: 1, Name: "Aminah"},
	}
}

// checkForest asserts every input id appears exactly once in the forest.
func checkForest(t *testing.T, roots []*CommentNode, comments []models.Comment) {
	t.Helper()
	seen := make(map[string]int)
	var walk func(n *CommentNode, depth int)
	walk = func(n *CommentNode, depth int) {
		require.Less(t, depth, len(comments)+1, "tree deeper than input, cycle suspected")
		seen[n.ID]++
		for _, r := range n.Replies {
			walk(r, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	assert.Len(t, seen, len(comments))
	for id, n := range seen {
		assert.Equal(t, 1, n, "comment %s reachable %d times", id, n)
	}
}

func TestBuildCommentTreeExample(t *testing.T) {
	first := mk("a", nil, 0)
	first.Content = "Sedap!"
	reply := mk("b", ptr("a"), 1)
	reply.Content = "Setuju"

	roots := BuildCommentTree([]models.Comment{reply, first})

	require.Len(t, roots, 1)
	assert.Equal(t, "Sedap!", roots[0].Content)
	require.Len(t, roots[0].Replies, 1)
	assert.Equal(t, "Setuju", roots[0].Replies[0].Content)
	assert.Empty(t, roots[0].Replies[0].Replies)
}

func TestBuildCommentTreeNested(t *testing.T) {
	comments := []models.Comment{
		mk("r1", nil, 0),
		mk("r2", nil, 1),
		mk("c1", ptr("r1"), 2),
		mk("c2", ptr("c1"), 3),
		mk("c3", ptr("r1"), 4),
		mk("c4", ptr("r2"), 5),
	}
	roots := BuildCommentTree(comments)

	require.Len(t, roots, 2)
	assert.Equal(t, "r1", roots[0].ID)
	assert.Equal(t, "r2", roots[1].ID)
	require.Len(t, roots[0].Replies, 2)
	assert.Equal(t, "c1", roots[0].Replies[0].ID)
	assert.Equal(t, "c3", roots[0].Replies[1].ID)
	require.Len(t, roots[0].Replies[0].Replies, 1)
	assert.Equal(t, "c2", roots[0].Replies[0].Replies[0].ID)
	assert.Equal(t, 6, CountComments(roots))
	checkForest(t, roots, comments)
}

func TestBuildCommentTreeOrphanPromoted(t *testing.T) {
	comments := []models.Comment{
		mk("r1", nil, 0),
		mk("orphan", ptr("deleted"), 1),
		mk("child", ptr("orphan"), 2),
	}
	roots := BuildCommentTree(comments)

	require.Len(t, roots, 2)
	assert.Equal(t, "orphan", roots[1].ID)
	require.Len(t, roots[1].Replies, 1)
	assert.Equal(t, "child", roots[1].Replies[0].ID)
	checkForest(t, roots, comments)
}

func TestBuildCommentTreeSelfParent(t *testing.T) {
	comments := []models.Comment{mk("x", ptr("x"), 0)}
	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	assert.Equal(t, "x", roots[0].ID)
	assert.Empty(t, roots[0].Replies)
}

func TestBuildCommentTreeBreaksCycle(t *testing.T) {
	comments := []models.Comment{
		mk("a", ptr("c"), 0),
		mk("b", ptr("a"), 1),
		mk("c", ptr("b"), 2),
		mk("d", ptr("b"), 3),
	}
	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID, "earliest comment on the cycle becomes the root")
	checkForest(t, roots, comments)
}

func TestBuildCommentTreeStableOrderForEqualTimes(t *testing.T) {
	comments := []models.Comment{
		mk("p", nil, 0),
		mk("r3", ptr("p"), 1),
		mk("r1", ptr("p"), 1),
		mk("r2", ptr("p"), 1),
	}
	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	ids := []string{}
	for _, r := range roots[0].Replies {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r3", "r1", "r2"}, ids)
}

func TestBuildCommentTreeEmpty(t *testing.T) {
	roots := BuildCommentTree(nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}

func TestBuildCommentTreeRandomForests(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		n := rng.Intn(40) + 1
		comments := make([]models.Comment, n)
		for i := range comments {
			var parent *string
			switch rng.Intn(4) {
			case 0:
				// root
			case 1:
				parent = ptr("missing-" + fmt.Sprint(i))
			default:
				parent = ptr(fmt.Sprintf("c%d", rng.Intn(n)))
			}
			comments[i] = mk(fmt.Sprintf("c%d", i), parent, rng.Intn(10))
		}
		rng.Shuffle(len(comments), func(i, j int) { comments[i], comments[j] = comments[j], comments[i] })

		roots := BuildCommentTree(comments)
		checkForest(t, roots, comments)
		assertOrdered(t, roots)
	}
}

func assertOrdered(t *testing.T, nodes []*CommentNode) {
	t.Helper()
	for i := 1; i < len(nodes); i++ {
		assert.False(t, nodes[i].CreatedAt.Before(nodes[i-1].CreatedAt))
	}
	for _, n := range nodes {
		assertOrdered(t, n.Replies)
	}
}
