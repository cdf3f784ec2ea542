package ge

// Stats is a snapshot of the engine's cumulative counters. Counters survive
// flushes and context invalidation; they reset only with the engine.
type Stats struct {
	// Flushes is the number of non-empty flushes completed.
	Flushes uint64

	// DrawCallsBatched is the number of submitted calls folded into those
	// flushes.
	DrawCallsBatched uint64

	// VertsSubmitted counts vertices (or indices, for indexed calls)
	// accepted by Submit.
	VertsSubmitted uint64

	// VertsDecoded counts vertices actually decoded. Merging makes this
	// smaller than VertsSubmitted when draws share vertex data.
	VertsDecoded uint64

	// DroppedRuns counts index runs discarded because their expansion
	// would not fit the index arena.
	DroppedRuns uint64

	// DecoderHits and DecoderMisses are the decoder cache counters.
	DecoderHits   uint64
	DecoderMisses uint64
}

// Observer is notified when the engine completes a flush. Implementations
// must not call back into the engine.
type Observer interface {
	DrawFlushed()
}
