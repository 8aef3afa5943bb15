package machine

import "path"

// LCA finds the lowest common ancestor of two qualified state paths.
//
// Adapted from stateforward-go-hsm's hsm.go LCA/IsAncestor, which walks
// "/"-joined qualified names the same way a filesystem path walks
// directories — the hierarchy here reuses that idea directly since our
// state values are qualified paths for the same reason theirs are.
func LCA(a, b string) string {
	if a == b {
		return path.Dir(a)
	}
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if path.Dir(a) == path.Dir(b) {
		return path.Dir(a)
	}
	if IsAncestor(a, b) {
		return a
	}
	if IsAncestor(b, a) {
		return b
	}
	return LCA(path.Dir(a), path.Dir(b))
}

// IsAncestor reports whether current is a strict ancestor of target.
func IsAncestor(current, target string) bool {
	current = path.Clean(current)
	target = path.Clean(target)
	if current == target || current == "." || target == "." {
		return false
	}
	if current == "/" {
		return true
	}
	parent := path.Dir(target)
	for parent != "/" {
		if parent == current {
			return true
		}
		parent = path.Dir(parent)
	}
	return false
}

// pathUp returns every path from start (inclusive) up to but excluding stop,
// in leaf-to-root order.
func pathUp(start, stop string) []string {
	var out []string
	for cur := start; cur != stop && cur != "/" && cur != ""; cur = path.Dir(cur) {
		out = append(out, cur)
	}
	return out
}

// pathDown returns every path from stop (exclusive) down to target
// (inclusive), in root-to-leaf order.
func pathDown(target, stop string) []string {
	up := pathUp(target, stop)
	out := make([]string, len(up))
	for i, p := range up {
		out[len(up)-1-i] = p
	}
	return out
}
