// Package validate reports data problems in a person list: parent ids that
// name nobody, duplicate ids, and cycles in the parent relation.
//
// The layout engine tolerates all of these, so validation never blocks
// rendering. Its messages are shown to the user next to the parsed records,
// in the errores list of the upload and validate endpoints.
package validate

import (
	"fmt"
	"slices"

	"github.com/matzehuels/kintree/pkg/persona"
)

// Report pairs a person list with the problems found in it.
type Report struct {
	Personas []persona.Person `json:"personas"`
	Errores  []string         `json:"errores"`
}

// HasErrors reports whether any problem was found.
func (r Report) HasErrors() bool { return len(r.Errores) > 0 }

// Run validates people and returns them with the messages from [Check].
func Run(people []persona.Person) Report {
	if people == nil {
		people = []persona.Person{}
	}
	return Report{Personas: people, Errores: Check(people)}
}

// Check returns one message per problem, in this order: duplicate ids,
// dangling parent references in input order, then a single message listing
// every cycle. The result is never nil.
func Check(people []persona.Person) []string {
	errs := []string{}

	seen := make(map[string]bool, len(people))
	reported := make(map[string]bool)
	for _, p := range people {
		if seen[p.ID] && !reported[p.ID] {
			errs = append(errs, fmt.Sprintf("ID duplicado: %s", p.ID))
			reported[p.ID] = true
		}
		seen[p.ID] = true
	}

	for _, p := range people {
		for _, parent := range p.Parents {
			if !seen[parent] {
				errs = append(errs, fmt.Sprintf("Padre/madre referenciado no existe: %s (en %s)", parent, p.ID))
			}
		}
	}

	if cycles := Cycles(people); len(cycles) > 0 {
		errs = append(errs, fmt.Sprintf("Se detectaron ciclos en las relaciones: %v", cycles))
	}
	return errs
}

// Cycles returns the groups of people that are their own ancestors: every
// strongly connected component of the parent graph with more than one member,
// plus anyone listed as their own parent. Members appear in input order and
// groups are ordered by their first member.
func Cycles(people []persona.Person) [][]string {
	order := persona.Index(people)
	ids := make([]string, 0, len(order))
	edges := make(map[string][]string, len(order))
	selfLoop := make(map[string]bool)
	for i, p := range people {
		if order[p.ID] != i {
			continue
		}
		ids = append(ids, p.ID)
	}
	for _, p := range people {
		for _, parent := range p.Parents {
			if _, ok := order[parent]; !ok {
				continue
			}
			if parent == p.ID {
				selfLoop[p.ID] = true
			}
			edges[parent] = append(edges[parent], p.ID)
		}
	}

	var (
		index   = make(map[string]int, len(ids))
		lowlink = make(map[string]int, len(ids))
		onStack = make(map[string]bool, len(ids))
		stack   []string
		next    int
		groups  [][]string
	)

	var strongConnect func(id string)
	strongConnect = func(id string) {
		index[id] = next
		lowlink[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true

		for _, child := range edges[id] {
			if _, visited := index[child]; !visited {
				strongConnect(child)
				lowlink[id] = min(lowlink[id], lowlink[child])
			} else if onStack[child] {
				lowlink[id] = min(lowlink[id], index[child])
			}
		}

		if lowlink[id] != index[id] {
			return
		}
		var group []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			group = append(group, top)
			if top == id {
				break
			}
		}
		if len(group) > 1 || selfLoop[id] {
			groups = append(groups, group)
		}
	}

	for _, id := range ids {
		if _, visited := index[id]; !visited {
			strongConnect(id)
		}
	}

	for _, g := range groups {
		slices.SortFunc(g, func(a, b string) int { return order[a] - order[b] })
	}
	slices.SortFunc(groups, func(a, b []string) int { return order[a[0]] - order[b[0]] })
	return groups
}
