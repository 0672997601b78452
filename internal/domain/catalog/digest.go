package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Digest returns a stable fingerprint of the snapshot contents. Two
// snapshots with identical items produce identical digests regardless of
// map iteration order.
func (s Snapshot) Digest() string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		blob, err := json.Marshal(s[id])
		if err != nil {
			continue
		}
		h.Write(blob)
	}
	return hex.EncodeToString(h.Sum(nil))
}
