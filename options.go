package ge

import "github.com/gogpu/ge/render"

// EngineOption configures an Engine during creation.
//
// Example:
//
//	// Default capacities, discarding sink
//	eng := ge.NewEngine()
//
//	// Wired to a backend with a smaller batch window
//	eng := ge.NewEngine(
//	    ge.WithSink(sink),
//	    ge.WithCallCapacity(64),
//	)
type EngineOption func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	sink           render.CommandSink
	transformer    render.Transformer
	observer       Observer
	callCapacity   int
	vertexCapacity int
}

// defaultOptions returns the default engine options.
func defaultOptions() engineOptions {
	return engineOptions{
		sink:           render.NullSink{},
		callCapacity:   DefaultCallCapacity,
		vertexCapacity: DefaultVertexCapacity,
	}
}

// WithSink sets the backend that receives flushed batches.
// The default sink discards everything.
func WithSink(s render.CommandSink) EngineOption {
	return func(o *engineOptions) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithTransformer routes flushed batches through the software vertex
// pipeline before they reach the sink. Without a transformer the engine
// flushes in direct mode: decoded vertices go straight to the sink.
func WithTransformer(t render.Transformer) EngineOption {
	return func(o *engineOptions) {
		o.transformer = t
	}
}

// WithObserver registers a callback notified after every completed flush.
// Hosts use it to pace frame timing against actual draw output.
func WithObserver(obs Observer) EngineOption {
	return func(o *engineOptions) {
		o.observer = obs
	}
}

// WithCallCapacity sets how many deferred calls accumulate before the
// engine flushes on its own. Must be at least 1.
func WithCallCapacity(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.callCapacity = n
		}
	}
}

// WithVertexCapacity sets the decoded vertex budget per batch. Submissions
// that would exceed it trigger a flush first. Must be at least 1.
func WithVertexCapacity(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.vertexCapacity = n
		}
	}
}
