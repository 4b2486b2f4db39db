package model

// TreeNode is a single node in the recursive dependency tree. Each node
// carries its full subtree of children inline, like npm's package-lock.json,
// so the tree can be rendered at any depth.
//
// Example:
//
//	libcore -> children: [libutil]
//	libutil
type TreeNode struct {
	Name           string      `json:"name"`
	URL            string      `json:"url,omitempty"`
	Revision       string      `json:"revision,omitempty"`
	LocalPath      string      `json:"localPath,omitempty"`
	DependencyType string      `json:"dependencyType"` // "direct" or "transitive"
	Children       []*TreeNode `json:"children,omitempty"`
}

// DependencyTree holds the dependency hierarchy of a resolved component.
type DependencyTree struct {
	// Root is the identity of the resolved component.
	Root string

	// Direct contains dependencies the root declares itself.
	Direct []ResolvedDependency

	// Transitive contains dependencies reached only through other dependencies.
	Transitive []ResolvedDependency

	// ByName provides O(1) lookup of any dependency by identity.
	ByName map[string]ResolvedDependency

	// Roots is the recursive tree: only direct dependencies at the top level,
	// each carrying their full subtree of children.
	Roots []*TreeNode
}

// BuildDependencyTree derives the tree from a resolved component. Sibling
// order follows declaration order, which the resolver already preserves.
func BuildDependencyTree(r *ResolvedComponent) *DependencyTree {
	root := r.Component()
	deps := r.Dependencies()

	tree := &DependencyTree{
		Root:   root.Identity,
		ByName: make(map[string]ResolvedDependency, len(deps)),
	}

	for _, d := range deps {
		tree.ByName[d.Identity] = d
		if root.DependsOn(d.Identity) {
			tree.Direct = append(tree.Direct, d)
		} else {
			tree.Transitive = append(tree.Transitive, d)
		}
	}

	tree.Roots = tree.buildTree()
	return tree
}

// dependencyType returns "direct" or "transitive" for identity.
func (t *DependencyTree) dependencyType(identity string) string {
	for _, d := range t.Direct {
		if d.Identity == identity {
			return "direct"
		}
	}
	return "transitive"
}

func (t *DependencyTree) newNode(d ResolvedDependency) *TreeNode {
	return &TreeNode{
		Name:           d.Identity,
		URL:            d.URL,
		Revision:       d.Revision,
		LocalPath:      d.LocalPath,
		DependencyType: t.dependencyType(d.Identity),
	}
}

// workItem holds a pending node to be expanded along with the set of ancestor
// identities on the path from the root to this node (used for cycle detection).
type workItem struct {
	dep       ResolvedDependency
	node      *TreeNode
	ancestors map[string]bool
}

// buildTree builds the tree iteratively, level by level, using a queue
// instead of recursion. Cycles are broken by tracking the ancestor set on the
// path from the root to the current node: a child that would close a cycle is
// emitted as a leaf.
func (t *DependencyTree) buildTree() []*TreeNode {
	roots := make([]*TreeNode, 0, len(t.Direct))
	queue := make([]workItem, 0, len(t.Direct))

	for _, d := range t.Direct {
		node := t.newNode(d)
		roots = append(roots, node)

		// The root identity is an ancestor of everything, so a dependency
		// pointing back at it is rendered as a leaf.
		ancestors := map[string]bool{t.Root: true, d.Identity: true}
		queue = append(queue, workItem{dep: d, node: node, ancestors: ancestors})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for _, childName := range item.dep.Children {
			child, ok := t.ByName[childName]
			if !ok {
				// Declared but never resolved (the root itself, or a
				// self-reference): emit a leaf.
				item.node.Children = append(item.node.Children, &TreeNode{
					Name:           childName,
					DependencyType: t.dependencyType(childName),
				})
				continue
			}

			childNode := t.newNode(child)
			item.node.Children = append(item.node.Children, childNode)

			if item.ancestors[childName] {
				continue
			}

			childAncestors := make(map[string]bool, len(item.ancestors)+1)
			for k := range item.ancestors {
				childAncestors[k] = true
			}
			childAncestors[childName] = true

			queue = append(queue, workItem{dep: child, node: childNode, ancestors: childAncestors})
		}
	}

	return roots
}
