package wmi

import "errors"

// ErrInheritanceCycle is returned when resolving a class's full property
// list would revisit a class already seen in this resolution - unresolved
// parent properties are backfilled transitively, guarded by a
// visited-set to avoid inheritance cycles.
var ErrInheritanceCycle = errors.New("wmi: class inheritance cycle")

// ResolveProperties returns class's own properties plus every property
// inherited (transitively) from its SuperClassName chain, resolved via
// byName (typically a namespace's full CD_ class map). A class's own
// properties shadow a same-named inherited one. The chain walk carries a
// per-call visited set, never shared across calls, matching the same
// per-traversal cycle-guard discipline Registry/ESE traversals use.
func ResolveProperties(class ClassDefinition, byName map[string]ClassDefinition) ([]PropertyDef, error) {
	visited := map[string]bool{class.Name: true}
	return resolveChain(class, byName, visited)
}

func resolveChain(class ClassDefinition, byName map[string]ClassDefinition, visited map[string]bool) ([]PropertyDef, error) {
	own := make(map[string]bool, len(class.Properties))
	for _, p := range class.Properties {
		own[p.Name] = true
	}

	var inherited []PropertyDef
	if class.SuperClassName != "" {
		if visited[class.SuperClassName] {
			return nil, ErrInheritanceCycle
		}
		parent, ok := byName[class.SuperClassName]
		if ok {
			visited[class.SuperClassName] = true
			parentProps, err := resolveChain(parent, byName, visited)
			if err != nil {
				return nil, err
			}
			for _, p := range parentProps {
				if !own[p.Name] {
					inherited = append(inherited, p)
				}
			}
		}
	}

	return append(inherited, class.Properties...), nil
}
