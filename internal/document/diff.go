package document

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/wI2L/jsondiff"
)

// rootField is the synthetic wrapper field diffs are rooted under.
// Wrapping both sides in an object lets absent→value and value→absent
// transitions appear as plain add/remove operations at "/root".
const rootField = "root"

// Op is a single RFC 6902 JSON-patch operation. Value is kept as raw
// JSON so that "replace with null" survives re-encoding.
type Op struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Diff computes the JSON-patch operations transforming prev into next.
// A nil side denotes absence. Returns an empty slice iff the two values
// are structurally equal after JSON normalization, so an int 1 and a
// float64 1 read back from storage compare equal.
func Diff(prev, next any) ([]Op, error) {
	patch, err := jsondiff.Compare(wrap(prev), wrap(next))
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	if len(patch) == 0 {
		return nil, nil
	}

	// Round-trip through JSON to flatten jsondiff's operation type into
	// our persisted Op shape.
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("diff: marshal ops: %w", err)
	}
	var ops []Op
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, fmt.Errorf("diff: decode ops: %w", err)
	}
	return ops, nil
}

// Apply replays a patch's operations over the given value. A nil value
// denotes absence. The returned value is nil when the patch removes the
// document (a tombstone transition).
func Apply(value any, p Patch) (any, error) {
	doc, err := json.Marshal(wrap(value))
	if err != nil {
		return nil, fmt.Errorf("apply %s: marshal value: %w", p.Version, err)
	}
	opsJSON, err := json.Marshal(p.Ops)
	if err != nil {
		return nil, fmt.Errorf("apply %s: marshal ops: %w", p.Version, err)
	}
	decoded, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return nil, fmt.Errorf("apply %s: decode ops: %w", p.Version, err)
	}
	out, err := decoded.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", p.Version, err)
	}

	var wrapper map[string]any
	if err := json.Unmarshal(out, &wrapper); err != nil {
		return nil, fmt.Errorf("apply %s: decode result: %w", p.Version, err)
	}
	return wrapper[rootField], nil
}

// wrap embeds a value under the synthetic root field. Absence (nil)
// wraps to an empty object.
func wrap(v any) map[string]any {
	m := map[string]any{}
	if v != nil {
		m[rootField] = v
	}
	return m
}
