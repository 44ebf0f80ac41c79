package events

import "time"

// ResolveStart is emitted before a field fetch runs. Seq is unique per
// process so concurrent fetches of one request can be told apart.
type ResolveStart struct {
	Seq        uint64
	ObjectType string
	Field      string
}

// ResolveFinish is emitted after a field fetch returns. NotFound is set when
// the repository reported absence.
type ResolveFinish struct {
	Seq        uint64
	ObjectType string
	Field      string
	NotFound   bool
	Err        error
	Duration   time.Duration
}
