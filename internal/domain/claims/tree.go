package claims

import "sort"

// DependencyTree is the claim hierarchy: roots are claims that depend on
// nothing attached, children maps a claim to the claims that depend on it.
type DependencyTree struct {
	Roots       []int         `json:"roots"`
	Children    map[int][]int `json:"children"`
	Depth       int           `json:"depth"`
	Independent []int         `json:"independent_claims"`
}

// BuildDependencyTree links claims through their DependsOn numbers.
func BuildDependencyTree(claims []Claim) *DependencyTree {
	tree := &DependencyTree{
		Roots:       []int{},
		Children:    map[int][]int{},
		Independent: []int{},
	}
	if len(claims) == 0 {
		return tree
	}

	known := make(map[int]bool, len(claims))
	for _, c := range claims {
		known[c.Number] = true
	}

	for _, c := range claims {
		if !c.IsDependent() {
			tree.Independent = append(tree.Independent, c.Number)
		}
		if c.DependsOn != nil && known[*c.DependsOn] {
			tree.Children[*c.DependsOn] = append(tree.Children[*c.DependsOn], c.Number)
			continue
		}
		tree.Roots = append(tree.Roots, c.Number)
	}

	for k := range tree.Children {
		sort.Ints(tree.Children[k])
	}
	sort.Ints(tree.Roots)
	sort.Ints(tree.Independent)

	tree.Depth = calculateTreeDepth(tree.Roots, tree.Children)
	return tree
}

// calculateTreeDepth computes the maximum depth of the tree via BFS.  A
// lone root has depth 1.
func calculateTreeDepth(roots []int, children map[int][]int) int {
	if len(roots) == 0 {
		return 0
	}

	type queueItem struct {
		node  int
		depth int
	}

	maxDepth := 0
	visited := make(map[int]bool)
	queue := make([]queueItem, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, queueItem{node: r, depth: 1})
		visited[r] = true
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth > maxDepth {
			maxDepth = item.depth
		}
		for _, child := range children[item.node] {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, queueItem{node: child, depth: item.depth + 1})
			}
		}
	}
	return maxDepth
}

//Personal.AI order the ending
