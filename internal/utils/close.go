package utils

import "io"

// drainLimit caps how much of an unread body is discarded before closing.
const drainLimit = 64 << 10

// DrainAndClose discards the rest of a response body then closes it,
// so the underlying connection goes back to the pool.
func DrainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, drainLimit))
	_ = rc.Close()
}
