// Package fingerprint encodes per-file change-detection fingerprints into a
// remote entry's free-text description field: the content hash of the
// original local bytes plus the original local timestamps, which the
// service's own metadata does not preserve.
package fingerprint

import "encoding/json"

// Fingerprint carries the change-detection signal recovered from an entry's
// description. All fields are empty when the description is absent or not
// well-formed fingerprint data.
type Fingerprint struct {
	SHA256    string `json:"SHA256"` //nolint:tagliatelle // persisted payload key
	CreatedAt string `json:"ctime"`
	UpdatedAt string `json:"utime"`
}

// IsZero reports whether no fingerprint data was recovered.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Encode produces the description payload for the given hash and original
// local timestamps.
func Encode(sha256, createdAt, updatedAt string) string {
	payload, err := json.Marshal(Fingerprint{
		SHA256:    sha256,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		// Marshaling a struct of strings cannot fail.
		return ""
	}

	return string(payload)
}

// Decode recovers a Fingerprint from a description payload. The description
// is a best-effort side channel: malformed or absent input yields a zero
// Fingerprint, never an error, so a bad description can never block a tree
// read.
func Decode(description string) Fingerprint {
	if description == "" {
		return Fingerprint{}
	}

	var f Fingerprint
	if err := json.Unmarshal([]byte(description), &f); err != nil {
		return Fingerprint{}
	}

	return f
}
