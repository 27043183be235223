package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValueChange is one previous→current transition recorded by FindDifference.
// A parameter appearing for the first time has a nil Previous.
type ValueChange struct {
	Previous any
	Current  any
}

// Difference is the structural diff of two configuration snapshots. Both
// maps are keyed by the absolute "/"-joined parameter path; Values holds
// changed parameters (recursed into groups, so a deep change produces one
// precisely-located entry), Attributes holds changed attribute bundles.
type Difference struct {
	Values     map[string]ValueChange
	Attributes map[string]ValueChange
}

// IsEmpty reports whether the two snapshots were identical.
func (d *Difference) IsEmpty() bool {
	return len(d.Values) == 0 && len(d.Attributes) == 0
}

func (d *Difference) String() string {
	if d.IsEmpty() {
		return "No changes"
	}

	var b strings.Builder
	if len(d.Values) > 0 {
		b.WriteString("Changed values:\n")
		writeChanges(&b, d.Values)
	}
	if len(d.Attributes) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Changed attributes:\n")
		writeChanges(&b, d.Attributes)
	}
	return b.String()
}

func writeChanges(b *strings.Builder, changes map[string]ValueChange) {
	paths := make([]string, 0, len(changes))
	for full := range changes {
		paths = append(paths, full)
	}
	sort.Strings(paths)

	for _, full := range paths {
		change := changes[full]
		fmt.Fprintf(b, "  %s: %v -> %v\n", full, change.Previous, change.Current)
	}
}

// FindDifference compares two snapshots of the same schema. Group parameters
// whose both sides are nested mappings are recursed into instead of being
// recorded as one coarse group-level change; everything else is a leaf.
// The result does not depend on traversal order.
func FindDifference(previous, current *ConfigData, schema *Schema) *Difference {
	diff := &Difference{
		Values:     map[string]ValueChange{},
		Attributes: map[string]ValueChange{},
	}

	fillValuesDiff(diff, Path{}, previous.Values(), current.Values(), schema)
	fillAttributesDiff(diff, previous.Attributes(), current.Attributes())

	return diff
}

func fillValuesDiff(diff *Difference, level Path, previous, current map[string]any, schema *Schema) {
	for name, currentValue := range current {
		path := level.Child(name)

		previousValue, existed := previous[name]
		if !existed {
			// a parameter revealed for the first time, e.g. by an activated
			// group, is a transition from null
			diff.Values[path.String()] = ValueChange{Previous: nil, Current: currentValue}
			continue
		}

		if reflect.DeepEqual(previousValue, currentValue) {
			continue
		}

		previousGroup, previousIsMap := previousValue.(map[string]any)
		currentGroup, currentIsMap := currentValue.(map[string]any)

		if schema.IsGroup(path) && previousIsMap && currentIsMap {
			fillValuesDiff(diff, path, previousGroup, currentGroup, schema)
			continue
		}

		diff.Values[path.String()] = ValueChange{Previous: previousValue, Current: currentValue}
	}
}

func fillAttributesDiff(diff *Difference, previous, current map[string]map[string]any) {
	for full, currentBundle := range current {
		previousBundle, existed := previous[full]
		if existed && reflect.DeepEqual(previousBundle, currentBundle) {
			continue
		}

		change := ValueChange{Current: currentBundle}
		if existed {
			change.Previous = previousBundle
		}
		diff.Attributes[full] = change
	}
}
