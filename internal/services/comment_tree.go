package services

import (
	"html/template"
	"sort"
	"time"

	"resepi/internal/models"
	"resepi/internal/utils"
)

// CommentNode 评论树节点
type CommentNode struct {
	ID          string               `json:"id"`
	Content     string               `json:"content"`
	ContentHTML template.HTML        `json:"-"`
	ParentID    *string              `json:"parentId"`
	User        models.CommentAuthor `json:"user"`
	CreatedAt   time.Time            `json:"createdAt"`
	Replies     []*CommentNode       `json:"replies"`
}

// BuildCommentTree assembles a reply forest from a flat comment list.
//
// Comments are indexed by id and linked through their parent reference. A
// comment whose parent is missing, is itself, or closes a reference cycle is
// promoted to a root so that nothing is dropped. Roots and every replies
// slice are ordered by creation time, ties keeping input order.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	ordered := make([]models.Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	index := make(map[string]int, len(ordered))
	for i, c := range ordered {
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}

	// parent[i] is the arena index of i's parent, -1 for roots.
	parent := make([]int, len(ordered))
	for i, c := range ordered {
		parent[i] = -1
		if index[c.ID] != i {
			// duplicate id: keep as a root rather than merging
			continue
		}
		if c.ParentID == nil {
			continue
		}
		if p, ok := index[*c.ParentID]; ok && p != i {
			parent[i] = p
		}
	}

	for i := range ordered {
		if onCycle(parent, i) {
			parent[i] = -1
		}
	}

	nodes := make([]*CommentNode, len(ordered))
	for i, c := range ordered {
		nodes[i] = &CommentNode{
			ID:          c.ID,
			Content:     c.Content,
			ContentHTML: utils.RenderComment(c.Content),
			ParentID:    c.ParentID,
			User:        c.Author(),
			CreatedAt:   c.CreatedAt,
			Replies:     []*CommentNode{},
		}
	}

	roots := make([]*CommentNode, 0)
	for i, node := range nodes {
		if parent[i] < 0 {
			roots = append(roots, node)
			continue
		}
		p := nodes[parent[i]]
		p.Replies = append(p.Replies, node)
	}
	return roots
}

// onCycle walks the ancestor chain of start and reports whether it leads
// back to start.
func onCycle(parent []int, start int) bool {
	seen := make(map[int]bool)
	for cur := parent[start]; cur >= 0; cur = parent[cur] {
		if cur == start {
			return true
		}
		if seen[cur] {
			// entered a cycle that does not contain start
			return false
		}
		seen[cur] = true
	}
	return false
}

// CountComments returns the total number of nodes in a forest.
func CountComments(roots []*CommentNode) int {
	n := 0
	for _, r := range roots {
		n += 1 + CountComments(r.Replies)
	}
	return n
}
