package registry

import "regexp"

// Key is one emitted registry key with its resolved values.
type Key struct {
	Path     string
	LastModified uint64
	Depth    int
	Values   []Value
}

// Walker walks a hive's key tree from a chosen start offset, guarding
// against cyclic parent/child chains with a per-traversal offset set
// cleared at the start of each Walk call — never a package-level global
// (Design Notes §9: "a per-traversal Set<OffsetOrName> that is checked
// before recursion and cleared on return").
type Walker struct {
	hive *Hive
}

// NewWalker wraps hive for traversal.
func NewWalker(hive *Hive) *Walker {
	return &Walker{hive: hive}
}

// Walk visits every key reachable from startOffset (the hive's root
// offset, or a subkey's offset to scope the search), optionally filtered
// by pathPattern (a regexp matched against the dot-free, backslash-
// delimited "ROOT\..." path; nil matches everything). Returns every key
// whose path matches, skipping any cell that would revisit an
// already-seen offset in this traversal.
func (w *Walker) Walk(startOffset uint32, pathPattern *regexp.Regexp) ([]Key, error) {
	visited := make(map[uint32]bool)
	var out []Key

	var recurse func(offset uint32, parentPath string, depth int) error
	recurse = func(offset uint32, parentPath string, depth int) error {
		if visited[offset] {
			return nil
		}
		visited[offset] = true

		if !w.hive.cellAllocated(offset) {
			return nil
		}
		cell, err := w.hive.cellAt(offset)
		if err != nil {
			return nil
		}
		nk, err := parseNamedKey(cell)
		if err != nil {
			return nil
		}

		path := nk.Name
		if parentPath != "" {
			path = parentPath + `\` + nk.Name
		} else if !nk.IsRoot {
			path = "ROOT\\" + nk.Name
		} else {
			path = "ROOT"
		}

		if pathPattern == nil || pathPattern.MatchString(path) {
			values, _ := w.resolveValues(nk)
			out = append(out, Key{Path: path, LastModified: nk.LastModified, Depth: depth, Values: values})
		}

		if nk.SubkeyCount > 0 && nk.SubkeyListOff != 0 && nk.SubkeyListOff != 0xFFFFFFFF {
			children, err := w.hive.subkeyOffsets(nk.SubkeyListOff)
			if err != nil {
				return nil
			}
			for _, childOffset := range children {
				if err := recurse(childOffset, path, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := recurse(startOffset, "", 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Walker) resolveValues(nk NamedKey) ([]Value, error) {
	offsets, err := w.hive.valueOffsets(nk.ValueListOff, nk.ValueCount)
	if err != nil {
		return nil, err
	}
	values := make([]Value, 0, len(offsets))
	for _, off := range offsets {
		if !w.hive.cellAllocated(off) {
			continue
		}
		cell, err := w.hive.cellAt(off)
		if err != nil {
			continue
		}
		v, err := parseValue(cell)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}
