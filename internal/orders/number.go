package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a human-readable order number: UTC date prefix plus a
// random suffix, e.g. ORD-20250114-9F3A21BC. Assigned at commit time only, so
// aborted drafts never burn a number. Uniqueness is enforced by the store; a
// collision surfaces as ErrDuplicateOrderNumber and the coordinator retries
// with a fresh number.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}
