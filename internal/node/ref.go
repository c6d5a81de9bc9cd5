package node

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Ref is an opaque, stable reference to a node in the compiled graph. The
// same logical id always produces the same Ref across runs, which is what
// keeps regenerated project files diff-minimal.
type Ref string

// MakeRef derives the stable reference for a logical id: the first 24 hex
// digits of the id's MD5, uppercased, matching the reference width of the
// target project format.
func MakeRef(logicalID string) Ref {
	sum := md5.Sum([]byte(logicalID))
	return Ref(strings.ToUpper(hex.EncodeToString(sum[:]))[:24])
}
