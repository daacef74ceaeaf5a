package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NumPatchesToKeep bounds the per-document patch history. An envelope
// carries at most this many trailing patches; older transitions are
// dropped and cannot be reconstructed. Changing this constant changes
// the persisted protocol.
const NumPatchesToKeep = 20

// Patch records one committed transition of a document: the version the
// transition produced, the JSON-patch operations describing it (rooted
// under the synthetic wrapper, see Diff), and optional caller-supplied
// metadata carried verbatim from the mutating call.
type Patch struct {
	Version  Version        `json:"version"`
	Ops      []Op           `json:"ops"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Envelope is the full persisted record for one key.
//
// Value holds the live document; a nil Value marks a tombstone — the
// key was removed but its version lineage and patch history survive.
// Top-level JSON null is rejected on input, so nil is unambiguous.
//
// Invariants maintained by the commit path:
//   - len(Patches) <= NumPatchesToKeep
//   - Patches are strictly increasing in version order
//   - the last patch's version equals Version
type Envelope struct {
	Version   Version `json:"version"`
	Value     any     `json:"value,omitempty"`
	Patches   []Patch `json:"patches"`
	UpdatedAt int64   `json:"updatedAt"`
}

// Live reports whether the envelope holds a document value.
// A false result means the envelope is a tombstone.
func (e *Envelope) Live() bool {
	return e != nil && e.Value != nil
}

// Encode serializes the envelope to canonical JSON: UTF-8, map keys in
// sorted order (encoding/json sorts map keys), struct fields in their
// declaration order, HTML escaping disabled, no trailing newline.
func Encode(env *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a stored envelope. It does not validate the envelope
// invariants; callers treat a parse failure as storage corruption.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}
