package chunkindex

// Options contains configuration options for loading an index.
type Options struct {
	// Logger receives load and search events. Defaults to a no-op logger.
	Logger *Logger

	// MaxRecords bounds the record count read from the file header before
	// any allocation happens. A corrupt length prefix can otherwise request
	// absurd allocations.
	MaxRecords uint32

	// MaxDimension bounds the per-record embedding dimensionality.
	MaxDimension uint32
}

// DefaultOptions contains the default configuration options.
var DefaultOptions = Options{
	MaxRecords:   100_000_000,
	MaxDimension: 1_000_000,
}

// WithLogger sets the logger used for load and search events.
func WithLogger(logger *Logger) func(o *Options) {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMaxRecords overrides the record-count sanity limit.
func WithMaxRecords(n uint32) func(o *Options) {
	return func(o *Options) {
		o.MaxRecords = n
	}
}

// WithMaxDimension overrides the embedding-dimension sanity limit.
func WithMaxDimension(n uint32) func(o *Options) {
	return func(o *Options) {
		o.MaxDimension = n
	}
}
