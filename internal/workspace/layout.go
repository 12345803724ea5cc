package workspace

import (
	"encoding/json"
	"sort"
)

// Layout is the host's opaque layout tree keyed by region ("main", "left",
// "right", ...). Nodes are JSON-shaped maps with a "type" of split, tabs or leaf.
type Layout map[string]any

// Node types in a layout tree.
const (
	NodeSplit = "split"
	NodeTabs  = "tabs"
	NodeLeaf  = "leaf"
)

// RegionMain is the editor area; the only region modes never replace.
const RegionMain = "main"

// Clone deep-copies the layout through its JSON form.
func (l Layout) Clone() (Layout, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	var out Layout
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// regions returns region keys with main first, the rest sorted.
func (l Layout) regions() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		if k != RegionMain {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := l[RegionMain]; ok {
		keys = append([]string{RegionMain}, keys...)
	}
	return keys
}

// FindLeaf returns the leaf node with the given id, searching every region depth-first.
func (l Layout) FindLeaf(leafID string) map[string]any {
	for _, k := range l.regions() {
		if n := findLeaf(l[k], leafID); n != nil {
			return n
		}
	}
	return nil
}

// SetLeafFile points the leaf's file reference at file, or clears it when file
// is empty. It reports whether the leaf was found.
func (l Layout) SetLeafFile(leafID, file string) bool {
	leaf := l.FindLeaf(leafID)
	if leaf == nil {
		return false
	}
	outer := childMap(leaf, "state")
	inner := childMap(outer, "state")
	if file == "" {
		inner["file"] = nil
	} else {
		inner["file"] = file
	}
	return true
}

// LeafFile returns the file reference of a leaf.
func (l Layout) LeafFile(leafID string) (string, bool) {
	leaf := l.FindLeaf(leafID)
	if leaf == nil {
		return "", false
	}
	outer, _ := leaf["state"].(map[string]any)
	inner, _ := outer["state"].(map[string]any)
	file, _ := inner["file"].(string)
	return file, true
}

func findLeaf(node any, leafID string) map[string]any {
	n, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	switch n["type"] {
	case NodeLeaf:
		if id, _ := n["id"].(string); id == leafID {
			return n
		}
		return nil
	case NodeSplit, NodeTabs:
		for _, child := range children(n) {
			if found := findLeaf(child, leafID); found != nil {
				return found
			}
		}
	}
	return nil
}

func children(n map[string]any) []any {
	switch c := n["children"].(type) {
	case []any:
		return c
	case []map[string]any:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out
	}
	return nil
}

func childMap(parent map[string]any, key string) map[string]any {
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}

// NewLeaf builds a markdown leaf node pointing at file.
func NewLeaf(id, file string) map[string]any {
	state := map[string]any{}
	if file != "" {
		state["file"] = file
	}
	return map[string]any{
		"id":   id,
		"type": NodeLeaf,
		"state": map[string]any{
			"type":  "markdown",
			"state": state,
		},
	}
}

// NewContainer builds a split or tabs node.
func NewContainer(id, kind string, nodes ...map[string]any) map[string]any {
	kids := make([]any, len(nodes))
	for i, n := range nodes {
		kids[i] = n
	}
	return map[string]any{
		"id":       id,
		"type":     kind,
		"children": kids,
	}
}
