// Package disclosure formats a redeemed proof for display. Render is pure:
// no I/O, no clock, and the input is never mutated, so the verifier surface
// can call it as often as it likes.
package disclosure

import (
	"sort"
	"strconv"

	"attesta/internal/authority"
	"attesta/internal/purpose"
)

// ageBand is the conservative placeholder shown when only a threshold was
// proven. The verifier must see that no exact age was disclosed.
const ageBand = "21+"

// Field is one rendered attribute.
type Field struct {
	Label string
	Value string
}

// DisplayModel is everything a verifier terminal may show.
type DisplayModel struct {
	Valid   bool
	Purpose string
	Title   string
	Fields  []Field
}

// Render builds the display model for a disclosure verdict. Attribute values
// are shown verbatim unless the purpose's catalog entry declares a
// transform. Invalid verdicts render an empty model: nothing about the
// holder leaks through a failed redemption.
func Render(d authority.Disclosure) DisplayModel {
	if !d.Valid {
		return DisplayModel{Valid: false, Fields: []Field{}}
	}

	model := DisplayModel{
		Valid:   true,
		Purpose: d.Purpose,
		Fields:  make([]Field, 0, len(d.Attributes)),
	}

	transform := purpose.TransformNone
	var order []string
	if p, err := purpose.Get(purpose.Key(d.Purpose)); err == nil {
		model.Title = p.Title
		transform = p.Transform
		order = p.RequiredAttributes
	}

	for _, key := range orderedKeys(d.Attributes, order) {
		model.Fields = append(model.Fields, Field{
			Label: key,
			Value: renderValue(transform, key, d.Attributes[key]),
		})
	}
	return model
}

func renderValue(transform purpose.Transform, key, value string) string {
	if transform == purpose.TransformAgeBand && key == purpose.AttrAgeOver18 {
		// An exact numeric age is shown as-is; a bare threshold collapses
		// to the band.
		if _, err := strconv.Atoi(value); err == nil {
			return value
		}
		return ageBand
	}
	return value
}

// orderedKeys lists the attribute keys in catalog order, then any leftovers
// sorted, so rendering is deterministic.
func orderedKeys(attributes map[string]string, order []string) []string {
	keys := make([]string, 0, len(attributes))
	seen := make(map[string]bool, len(attributes))
	for _, key := range order {
		if _, ok := attributes[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	var rest []string
	for key := range attributes {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
