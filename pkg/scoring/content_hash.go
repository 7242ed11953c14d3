package scoring

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash computes SHA-256(node_id ":" title ":" body_text), the
// content-version identifier from spec.md §3. It is stable under any
// change unrelated to these three fields and changes iff any of them
// change.
func ContentHash(nodeID, title, bodyText string) string {
	content := nodeID + ":" + title + ":" + bodyText
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
