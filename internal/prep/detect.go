package prep

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// Shape is the classification of a stored interview prep payload.
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeCurrent
	ShapeLegacy
	ShapeUnrecognized
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeCurrent:
		return "current"
	case ShapeLegacy:
		return "legacy"
	default:
		return "unrecognized"
	}
}

// Classify inspects a raw JSON payload. A top-level questions array wins over
// any leftover phase fields, so a partially migrated payload is Current.
func Classify(raw []byte) Shape {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ShapeEmpty
	}
	if !gjson.ValidBytes(raw) {
		return ShapeUnrecognized
	}
	doc := gjson.ParseBytes(raw)
	if doc.Type == gjson.Null {
		return ShapeEmpty
	}
	if !doc.IsObject() {
		return ShapeUnrecognized
	}
	if isEmptyObject(doc) {
		return ShapeEmpty
	}
	if doc.Get("questions").IsArray() {
		return ShapeCurrent
	}
	if hasLegacyMarker(doc) {
		return ShapeLegacy
	}
	return ShapeUnrecognized
}

// hasLegacyMarker checks vision_mission, core_requirements and a non-empty
// question list. Phase 2 alone is not a marker.
func hasLegacyMarker(doc gjson.Result) bool {
	if truthy(doc.Get(keyPhase1 + ".vision_mission")) {
		return true
	}
	if truthy(doc.Get(keyPhase3 + ".core_requirements")) {
		return true
	}
	q := doc.Get(keyPhase4)
	return q.IsArray() && len(q.Array()) > 0
}

func isEmptyObject(doc gjson.Result) bool {
	empty := true
	doc.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

// truthy follows loose JSON truthiness: absent, null, false, 0 and "" are
// false; any object or array, even an empty one, is true.
func truthy(r gjson.Result) bool {
	if !r.Exists() {
		return false
	}
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}
