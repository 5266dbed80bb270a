package domain

// Round is the logical fence separating generations of vtxos. It has no
// body beyond the counter and the random session id.
type Round struct {
	Height    uint64
	SessionId string
	Timestamp int64
	NumVtxos  int
}
