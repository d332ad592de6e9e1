// Package upstream holds the REST clients of the foundation APIs: the account
// directory, the bots registry and the project catalog.
package upstream

import (
	"time"
)

const fallbackTimeout = 10 * time.Second

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return fallbackTimeout
	}

	return d
}
