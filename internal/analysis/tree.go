package analysis

import (
	"math/rand/v2"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/energy-cli/internal/model"
)

// Tree defaults.
const (
	DefaultMaxDepth        = 4
	DefaultMinSamplesSplit = 2
	DefaultMinSamplesLeaf  = 1
	DefaultSeed            = 42
)

// featureEps is the smallest gap between adjacent sorted values that may
// host a threshold.
const featureEps = 1e-7

// TreeOptions controls FitTree. Zero values take the defaults above.
type TreeOptions struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            uint64
}

func (o TreeOptions) withDefaults() TreeOptions {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = DefaultMinSamplesSplit
	}
	if o.MinSamplesLeaf < 1 {
		o.MinSamplesLeaf = DefaultMinSamplesLeaf
	}
	return o
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// RegressionTree is a CART regressor using the squared-error criterion.
type RegressionTree struct {
	Features []string

	root       *treeNode
	importance []float64
	depth      int
	leaves     int
}

type treeBuilder struct {
	X    [][]float64
	y    []float64
	opts TreeOptions
	rng  *rand.Rand
	t    *RegressionTree
}

// FitTree grows a regression tree on (X, y). Candidate features are visited
// in an order drawn from a PRNG seeded with opts.Seed, and the first best
// split found wins ties, so a fixed seed gives a reproducible tree.
func FitTree(X [][]float64, y []float64, names []string, opts TreeOptions) (*RegressionTree, error) {
	if len(X) != len(y) {
		return nil, eris.Errorf("analysis: %d rows but %d targets", len(X), len(y))
	}
	if len(X) == 0 {
		return nil, eris.New("analysis: insufficient data: no rows to fit")
	}
	for i, row := range X {
		if len(row) != len(names) {
			return nil, eris.Errorf("analysis: row %d has %d features, want %d", i, len(row), len(names))
		}
	}

	opts = opts.withDefaults()
	t := &RegressionTree{Features: names, importance: make([]float64, len(names))}
	b := &treeBuilder{
		X:    X,
		y:    y,
		opts: opts,
		rng:  rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
		t:    t,
	}

	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	t.root = b.grow(idx, 0)

	var total float64
	for _, v := range t.importance {
		total += v
	}
	if total > 0 {
		for j := range t.importance {
			t.importance[j] /= total
		}
	}
	return t, nil
}

func (b *treeBuilder) grow(idx []int, depth int) *treeNode {
	if depth > b.t.depth {
		b.t.depth = depth
	}
	sum, sumSq := b.sums(idx)
	n := float64(len(idx))
	node := &treeNode{leaf: true, value: sum / n}
	impurity := sumSq/n - node.value*node.value

	if depth >= b.opts.MaxDepth || len(idx) < b.opts.MinSamplesSplit || len(idx) < 2*b.opts.MinSamplesLeaf || impurity <= 1e-12 {
		b.t.leaves++
		return node
	}

	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		b.t.leaves++
		return node
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.t.importance[feature] += n*impurity - b.weightedImpurity(left) - b.weightedImpurity(right)

	node.leaf = false
	node.feature = feature
	node.threshold = threshold
	node.left = b.grow(left, depth+1)
	node.right = b.grow(right, depth+1)
	return node
}

// bestSplit scans features in shuffled order and returns the split that
// maximises sumL²/nL + sumR²/nR, which minimises the children's squared error.
func (b *treeBuilder) bestSplit(idx []int, total float64) (int, float64, bool) {
	n := len(idx)
	minLeaf := b.opts.MinSamplesLeaf
	bestFeature, bestThreshold := -1, 0.0
	bestProxy := total * total / float64(n)

	sorted := make([]int, n)
	for _, j := range b.rng.Perm(len(b.t.Features)) {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][j] < b.X[sorted[c]][j] })

		var sumL float64
		for k := 0; k < n-1; k++ {
			sumL += b.y[sorted[k]]
			nL, nR := k+1, n-k-1
			if nL < minLeaf || nR < minLeaf {
				continue
			}
			lo, hi := b.X[sorted[k]][j], b.X[sorted[k+1]][j]
			if hi <= lo+featureEps {
				continue
			}
			sumR := total - sumL
			proxy := sumL*sumL/float64(nL) + sumR*sumR/float64(nR)
			if proxy > bestProxy+1e-12 {
				bestProxy = proxy
				bestFeature = j
				bestThreshold = lo/2 + hi/2
				if bestThreshold == hi {
					bestThreshold = lo
				}
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (b *treeBuilder) sums(idx []int) (sum, sumSq float64) {
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	return sum, sumSq
}

// weightedImpurity returns n·variance for the targets at idx.
func (b *treeBuilder) weightedImpurity(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum, sumSq := b.sums(idx)
	return sumSq - sum*sum/float64(len(idx))
}

// Predict returns the leaf mean reached by each row of X.
func (t *RegressionTree) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		node := t.root
		for !node.leaf {
			if row[node.feature] <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		out[i] = node.value
	}
	return out
}

// FeatureImportance returns normalised impurity-decrease importances. They
// sum to 1 unless the tree is a single leaf, in which case all are 0.
func (t *RegressionTree) FeatureImportance() map[string]float64 {
	out := make(map[string]float64, len(t.Features))
	for j, name := range t.Features {
		out[name] = t.importance[j]
	}
	return out
}

// Depth is the depth of the deepest leaf; a single leaf has depth 0.
func (t *RegressionTree) Depth() int { return t.depth }

// Leaves is the number of leaves.
func (t *RegressionTree) Leaves() int { return t.leaves }

// Result evaluates the tree on (X, y) and packages it for reporting.
func (t *RegressionTree) Result(X [][]float64, y []float64) model.TreeResult {
	return model.TreeResult{
		Metrics:           Evaluate(y, t.Predict(X)),
		FeatureImportance: t.FeatureImportance(),
		Depth:             t.depth,
		Leaves:            t.leaves,
	}
}
