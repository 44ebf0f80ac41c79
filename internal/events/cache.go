package events

// CacheLookup is emitted by cached repositories on every read.
type CacheLookup struct {
	Entity string
	Hit    bool
}
