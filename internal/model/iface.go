package model

// EntrySink consumes parsed entries in arrival order.
type EntrySink interface {
	Observe(Entry)
}

// PeerCounter reports the number of live relay peers.
type PeerCounter interface {
	PeerCount() int
}
