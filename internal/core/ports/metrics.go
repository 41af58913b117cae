package ports

// Metrics records the outcome of the settlement operations.
type Metrics interface {
	OfferMade(offeredAmount, wantedAmount uint64)
	OfferTaken(releasedAmount, paidAmount uint64)
	OperationFailed(operation string, err error)
}
