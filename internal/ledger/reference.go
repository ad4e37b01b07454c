package ledger

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reference codes correlate an internally created transaction with the
// provider's asynchronous confirmation. The provider echoes the code back
// verbatim or embedded in free text, so the alphabet stays strictly
// alphanumeric and upper case.
const referencePrefix = "TP"

// ReferencePattern matches a reference code embedded in free text.
var ReferencePattern = regexp.MustCompile(`TP[A-Z0-9]{6,}`)

// NewReference generates a fresh reference code: prefix, millisecond timestamp
// in base36, and a random suffix. The timestamp keeps codes human-sortable; the
// suffix guards against same-millisecond collisions.
func NewReference() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return referencePrefix + ts + suffix
}
