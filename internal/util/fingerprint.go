package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint is a stable hash of a finding's identity: the tool that reported
// it, its type, its location and its description. The analysis id is not part
// of it, so the same issue in resubmitted source keeps its fingerprint.
func Fingerprint(tool, findingType string, line int, description string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", tool, findingType, line, description)
	return hex.EncodeToString(h.Sum(nil))
}
