// Package sentinel holds store-level error values. Stores return them,
// optionally wrapped, and services decide what they mean for a request.
package sentinel

import "errors"

// ErrNotFound reports that a key is absent or has expired. Caches return it
// for a miss so a miss is distinguishable from an outage.
var ErrNotFound = errors.New("not found")
