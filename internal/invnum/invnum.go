// Package invnum generates human-facing invoice numbers of the form
// INV-YYYYMMDD-DDD. The three-digit suffix is random and collisions are
// possible (roughly 1-in-1000 per day); nothing checks or retries, matching
// the numbering scheme invoices have always carried.
package invnum

import (
	"fmt"
	"math/rand"
	"time"
)

func New(t time.Time) string {
	return fmt.Sprintf("INV-%s-%03d", t.Format("20060102"), rand.Intn(1000))
}
