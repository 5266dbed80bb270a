package ports

// Metrics records the coordinator activity.
type Metrics interface {
	RoundFinalized(height uint64, numVtxos int)
	RequestsEnqueued(count int)
	RequestsDropped(count int)
	TransferCommitted(numInputs, numOutputs int, fee uint64)
	TransferRejected(reason string)
}
