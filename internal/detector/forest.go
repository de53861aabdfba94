package detector

import (
	"math"
	"math/rand"

	"github.com/healops/remedy-engine/internal/models"
)

const eulerMascheroni = 0.5772156649

// isolationForest scores samples by how quickly random axis-aligned splits
// isolate them. Shorter average path length means the point sits apart from
// the bulk of the training data.
type isolationForest struct {
	Trees         []*isolationTree `json:"trees"`
	SubsampleSize int              `json:"subsample_size"`
	AvgPathLength float64          `json:"avg_path_length"`
}

type isolationTree struct {
	SplitFeature int            `json:"f"`
	SplitValue   float64        `json:"v"`
	Size         int            `json:"n"`
	Leaf         bool           `json:"leaf"`
	Left         *isolationTree `json:"l,omitempty"`
	Right        *isolationTree `json:"r,omitempty"`
}

func buildForest(data []models.FeatureVector, numTrees, subsampleSize int, rng *rand.Rand) *isolationForest {
	if subsampleSize > len(data) {
		subsampleSize = len(data)
	}
	forest := &isolationForest{
		Trees:         make([]*isolationTree, 0, numTrees),
		SubsampleSize: subsampleSize,
		AvgPathLength: avgPathLength(len(data)),
	}

	maxHeight := int(math.Ceil(math.Log2(float64(subsampleSize) + 1)))
	for i := 0; i < numTrees; i++ {
		sample := subsample(data, subsampleSize, rng)
		forest.Trees = append(forest.Trees, buildTree(sample, 0, maxHeight, rng))
	}
	return forest
}

func subsample(data []models.FeatureVector, size int, rng *rand.Rand) []models.FeatureVector {
	n := len(data)
	if size >= n {
		return data
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < size; i++ {
		j := i + rng.Intn(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	sample := make([]models.FeatureVector, size)
	for i := 0; i < size; i++ {
		sample[i] = data[indices[i]]
	}
	return sample
}

func buildTree(data []models.FeatureVector, depth, maxHeight int, rng *rand.Rand) *isolationTree {
	node := &isolationTree{Size: len(data)}

	if len(data) <= 1 || depth >= maxHeight {
		node.Leaf = true
		return node
	}

	numFeatures := len(data[0])
	if numFeatures == 0 {
		node.Leaf = true
		return node
	}

	node.SplitFeature = rng.Intn(numFeatures)
	minVal, maxVal := data[0][node.SplitFeature], data[0][node.SplitFeature]
	for _, row := range data[1:] {
		if row[node.SplitFeature] < minVal {
			minVal = row[node.SplitFeature]
		}
		if row[node.SplitFeature] > maxVal {
			maxVal = row[node.SplitFeature]
		}
	}
	if minVal == maxVal {
		node.Leaf = true
		return node
	}

	node.SplitValue = minVal + rng.Float64()*(maxVal-minVal)

	var left, right []models.FeatureVector
	for _, row := range data {
		if row[node.SplitFeature] < node.SplitValue {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		node.Leaf = true
		return node
	}

	node.Left = buildTree(left, depth+1, maxHeight, rng)
	node.Right = buildTree(right, depth+1, maxHeight, rng)
	return node
}

// anomalyScore returns s(x) in (0,1]; values above 0.5 indicate isolation.
func (f *isolationForest) anomalyScore(vec models.FeatureVector) float64 {
	if f == nil || len(f.Trees) == 0 || f.AvgPathLength == 0 {
		return 0.5
	}
	total := 0.0
	for _, tree := range f.Trees {
		total += tree.pathLength(vec, 0)
	}
	avg := total / float64(len(f.Trees))
	return math.Pow(2, -avg/f.AvgPathLength)
}

func (t *isolationTree) pathLength(vec models.FeatureVector, depth int) float64 {
	if t.Leaf {
		return float64(depth) + avgPathLength(t.Size)
	}
	if t.SplitFeature >= len(vec) {
		return float64(depth)
	}
	if vec[t.SplitFeature] < t.SplitValue {
		if t.Left != nil {
			return t.Left.pathLength(vec, depth+1)
		}
	} else if t.Right != nil {
		return t.Right.pathLength(vec, depth+1)
	}
	return float64(depth)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST search.
func avgPathLength(n int) float64 {
	switch {
	case n > 2:
		fn := float64(n)
		return 2.0*(math.Log(fn-1.0)+eulerMascheroni) - 2.0*(fn-1.0)/fn
	case n == 2:
		return 1.0
	default:
		return 0
	}
}
