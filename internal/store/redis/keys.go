package redis

const (
	// KeyPrefixStatus is the prefix for cached status entries
	KeyPrefixStatus = "statuswall:status:"
	// KeyAllStatuses is the key for the set of cached service names
	KeyAllStatuses = "statuswall:status:all"
)

// StatusKey returns the Redis key for a service's cached status.
// The all-names set lives under the same prefix, so names are escaped with
// a leading "~" to keep them from colliding with it.
func StatusKey(name string) string {
	return KeyPrefixStatus + "~" + name
}

// AllStatusesKey returns the key for the set of cached service names
func AllStatusesKey() string {
	return KeyAllStatuses
}
