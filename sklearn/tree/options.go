package tree

// config holds the hyperparameters shared by the tree classifiers. Each
// constructor fills in its own defaults before applying options.
type config struct {
	confidence float64
	minLeaf    int
	seed       int64
	k          int
	folds      int
	maxDepth   int
}

// Option configures a tree classifier. Options that do not apply to a
// given tree are ignored.
type Option func(*config)

// WithConfidence sets the pruning confidence factor of C45Tree.
func WithConfidence(cf float64) Option {
	return func(c *config) {
		c.confidence = cf
	}
}

// WithMinLeaf sets the minimum number of training rows per branch.
func WithMinLeaf(n int) Option {
	return func(c *config) {
		c.minLeaf = n
	}
}

// WithSeed sets the random seed of RandomTree and REPTree.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithK sets how many randomly chosen attributes RandomTree considers per
// node; 0 selects floor(log2(attributes))+1.
func WithK(k int) Option {
	return func(c *config) {
		c.k = k
	}
}

// WithFolds sets REPTree's data split: one fold is held out for pruning.
func WithFolds(folds int) Option {
	return func(c *config) {
		c.folds = folds
	}
}

// WithMaxDepth limits tree depth; -1 grows without limit.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

func newConfig(defaults config, opts []Option) config {
	c := defaults
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
