package fetch

import (
	"context"
	"errors"
	"net"
)

// IsTimeout reports whether err was caused by a request exceeding its
// deadline, as opposed to any other transport failure. The crawl ledger
// records the two cases under different reasons.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
