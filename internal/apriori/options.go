package apriori

// Option configures a Miner or RuleGenerator.
type Option func(*options)

type options struct {
	workers   int
	maxLength int
}

func defaultOptions() options {
	return options{workers: 1}
}

// WithWorkers sets how many goroutines count candidates or enumerate rules.
// Values below 1 mean serial execution.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithMaxLength stops the level-wise search after itemsets of size n.
// Zero means no limit.
func WithMaxLength(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxLength = n
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
