package schema

import "strings"

// ValidateType applies the submission rules to a custom type draft. typeID is
// the id of the type being edited, 0 for a new type.
func ValidateType(d CustomTypeDraft, typeID int64, catalog *Catalog) Result {
	if strings.TrimSpace(d.Name) == "" {
		return fail(&Violation{Kind: MissingRequiredField, Field: "name"})
	}
	if d.AppID == 0 {
		return fail(&Violation{Kind: MissingRequiredField, Field: "app_id"})
	}

	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		if name, ok := rowName(f.Name); ok {
			names = append(names, name)
		}
	}
	if dups := duplicates(names); len(dups) > 0 {
		return fail(&Violation{Kind: DuplicateFieldName, Names: dups})
	}

	for _, f := range d.Fields {
		name, ok := rowName(f.Name)
		if !ok {
			continue
		}
		switch f.Type {
		case TypeString, TypeNumber, TypeBoolean:
		case TypeCustom:
			if f.Ref == nil {
				return fail(&Violation{Kind: MissingReference, Field: name})
			}
			if !catalog.InScope(*f.Ref, typeID) {
				return fail(&Violation{Kind: ReferenceOutOfScope, Field: name})
			}
		default:
			return fail(&Violation{Kind: InvalidFieldType, Field: name})
		}
	}

	if cycle := findCycle(catalog, typeID, d); len(cycle) > 0 {
		return fail(&Violation{Kind: CircularReference, Names: cycle})
	}
	return pass()
}

// findCycle runs Kahn's algorithm over the application's reference graph with
// the draft standing in for typeID. It returns the names of the types that lie
// on a cycle, which is empty when the graph is acyclic. Types that only point
// into a cycle are left out.
func findCycle(catalog *Catalog, typeID int64, d CustomTypeDraft) []string {
	type node struct {
		name string
		refs []int64
	}

	var order []int64
	nodes := make(map[int64]*node)
	add := func(id int64, name string, fields []Field) {
		n := &node{name: name}
		for _, f := range fields {
			if _, named := rowName(f.Name); named && f.Type == TypeCustom && f.Ref != nil {
				n.refs = append(n.refs, *f.Ref)
			}
		}
		if _, ok := nodes[id]; !ok {
			order = append(order, id)
		}
		nodes[id] = n
	}

	for _, t := range catalog.Types() {
		add(t.ID, t.Name, t.Fields)
	}
	// A new type cannot be referenced yet, so only an edited type can close a cycle.
	if typeID == 0 {
		return nil
	}
	add(typeID, d.Name, d.Fields)

	inDegree := make(map[int64]int, len(nodes))
	for _, id := range order {
		for _, ref := range nodes[id].refs {
			if _, ok := nodes[ref]; ok {
				inDegree[ref]++
			}
		}
	}

	queue := make([]int64, 0, len(order))
	for _, id := range order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sorted := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted++
		for _, ref := range nodes[id].refs {
			if _, ok := nodes[ref]; !ok {
				continue
			}
			inDegree[ref]--
			if inDegree[ref] == 0 {
				queue = append(queue, ref)
			}
		}
	}
	if sorted == len(order) {
		return nil
	}

	left := make(map[int64]bool)
	for _, id := range order {
		if inDegree[id] > 0 {
			left[id] = true
		}
	}

	// reaches reports whether to can be reached from from through unsorted types.
	reaches := func(from, to int64) bool {
		seen := map[int64]bool{from: true}
		stack := []int64{from}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, ref := range nodes[id].refs {
				if ref == to {
					return true
				}
				if left[ref] && !seen[ref] {
					seen[ref] = true
					stack = append(stack, ref)
				}
			}
		}
		return false
	}

	var names []string
	for _, id := range order {
		if left[id] && reaches(id, id) {
			names = append(names, nodes[id].name)
		}
	}
	return names
}
