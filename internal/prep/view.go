package prep

import (
	"encoding/json"
	"time"
)

// View returns the payload as readers should see it: legacy payloads are
// converted on the fly, everything else is returned as stored. Nothing is
// persisted.
func View(raw []byte, now time.Time) (json.RawMessage, Shape, error) {
	shape := Classify(raw)
	if shape != ShapeLegacy {
		return json.RawMessage(raw), shape, nil
	}
	out, _, err := NormalizePayload(raw, now)
	if err != nil {
		return nil, shape, err
	}
	return out, shape, nil
}
