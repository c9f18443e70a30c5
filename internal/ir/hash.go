package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainPlanNode namespaces plan-node content hashes so they can never
// collide with a hash computed for an unrelated purpose.
const DomainPlanNode = "rtengine/plan-node/v1"

// hashWithDomain computes SHA-256 with domain separation: the null byte
// prevents a domain/data boundary from being ambiguous (e.g. domain "ab"
// + data "c" colliding with domain "a" + data "bc").
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanNodeHash computes a stable content-addressed id for a plan node
// given its kind tag and canonically-encoded parameters. Two nodes with
// the same kind and parameters hash identically, giving a short,
// reproducible id instead of a memory address. The EXPLAIN renderer
// does not include these ids in its output.
func PlanNodeHash(kind string, params Obj) (string, error) {
	canonical, err := MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("PlanNodeHash(%s): %w", kind, err)
	}
	full := hashWithDomain(DomainPlanNode, append([]byte(kind+"\x00"), canonical...))
	return full[:16], nil
}
