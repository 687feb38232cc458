package pq

import (
	"errors"
	"math"
	"math/rand"

	"github.com/hqsearch/gip/internal/math32"
)

// Quantizer implements product quantization for inner-product search.
// Vectors are split into M subvectors; each subvector is mapped to its
// nearest codebook centroid (k-means clustering, squared-L2 assignment).
// At query time, per-subspace inner products against all centroids are
// precomputed into a lookup table, so scoring a stored vector is M table
// lookups instead of a full dot product.
type Quantizer struct {
	numSubvectors int           // M: number of subvectors
	numCentroids  int           // K: centroids per subspace (<= 256 for uint8 codes)
	dimension     int           // D: original vector dimension
	subvectorDim  int           // D/M: dimensions per subvector
	codebooks     [][][]float32 // M codebooks, each with K centroids of subvectorDim dims
	trained       bool
}

// NewQuantizer creates a product quantizer.
// dimension must be divisible by numSubvectors, and numCentroids must fit
// in a uint8 code.
func NewQuantizer(dimension, numSubvectors, numCentroids int) (*Quantizer, error) {
	if numSubvectors <= 0 || dimension%numSubvectors != 0 {
		return nil, errors.New("dimension must be divisible by numSubvectors")
	}
	if numCentroids <= 0 || numCentroids > 256 {
		return nil, errors.New("numCentroids must be in [1,256] for uint8 encoding")
	}

	return &Quantizer{
		numSubvectors: numSubvectors,
		numCentroids:  numCentroids,
		dimension:     dimension,
		subvectorDim:  dimension / numSubvectors,
		codebooks:     make([][][]float32, numSubvectors),
	}, nil
}

// Train calibrates the codebooks with k-means clustering on training
// vectors. Must be called (or codebooks loaded) before Encode or search.
func (q *Quantizer) Train(vectors [][]float32) error {
	if len(vectors) == 0 {
		return errors.New("no vectors provided for training")
	}
	if len(vectors[0]) != q.dimension {
		return errors.New("vector dimension mismatch")
	}

	for m := 0; m < q.numSubvectors; m++ {
		subvectors := make([][]float32, len(vectors))
		for i, vec := range vectors {
			start := m * q.subvectorDim
			subvectors[i] = vec[start : start+q.subvectorDim]
		}
		q.codebooks[m] = kmeans(subvectors, q.numCentroids, 20)
	}

	q.trained = true
	return nil
}

// Trained reports whether codebooks are available.
func (q *Quantizer) Trained() bool { return q.trained }

// Dimension returns the original vector dimension.
func (q *Quantizer) Dimension() int { return q.dimension }

// Encode quantizes a vector into M uint8 codes.
func (q *Quantizer) Encode(vec []float32) []byte {
	codes := make([]byte, q.numSubvectors)
	for m := 0; m < q.numSubvectors; m++ {
		start := m * q.subvectorDim
		subvec := vec[start : start+q.subvectorDim]
		codes[m] = uint8(nearestCentroid(subvec, q.codebooks[m]))
	}

	return codes
}

// BuildScoreTable precomputes inner products from a query to all
// centroids. The result has size M*K where table[m*K + k] is the inner
// product of query subvector m with centroid k.
func (q *Quantizer) BuildScoreTable(query []float32) []float32 {
	table := make([]float32, q.numSubvectors*q.numCentroids)
	for m := 0; m < q.numSubvectors; m++ {
		start := m * q.subvectorDim
		sub := query[start : start+q.subvectorDim]
		row := table[m*q.numCentroids : (m+1)*q.numCentroids]
		for k, centroid := range q.codebooks[m] {
			row[k] = math32.Dot(sub, centroid)
		}
	}

	return table
}

// AdcScore computes the approximate inner product between a query
// (represented by its score table) and a quantized vector.
func (q *Quantizer) AdcScore(table []float32, codes []byte) float32 {
	var score float32
	for m, c := range codes {
		score += table[m*q.numCentroids+int(c)]
	}

	return score
}

// kmeans clusters subvectors into k centroids with k-means++ seeding.
func kmeans(vectors [][]float32, k, maxIters int) [][]float32 {
	dim := len(vectors[0])
	if len(vectors) < k {
		// Not enough data; repeat inputs as centroids.
		centroids := make([][]float32, k)
		for i := range centroids {
			centroids[i] = make([]float32, dim)
			copy(centroids[i], vectors[i%len(vectors)])
		}
		return centroids
	}

	centroids := make([][]float32, k)
	for i := range centroids {
		centroids[i] = make([]float32, dim)
	}
	copy(centroids[0], vectors[rand.Intn(len(vectors))])

	// minDistSq tracks each vector's squared distance to its nearest
	// chosen centroid.
	minDistSq := make([]float32, len(vectors))
	var sum float32
	for i, vec := range vectors {
		d := math32.SquaredL2(vec, centroids[0])
		minDistSq[i] = d
		sum += d
	}

	for c := 1; c < k; c++ {
		if sum == 0 {
			copy(centroids[c], vectors[rand.Intn(len(vectors))])
			continue
		}

		target := rand.Float32() * sum
		var cumsum float32
		chosen := 0
		for i, d := range minDistSq {
			cumsum += d
			if cumsum >= target {
				chosen = i
				break
			}
		}
		copy(centroids[c], vectors[chosen])

		sum = 0
		for i, vec := range vectors {
			d := math32.SquaredL2(vec, centroids[c])
			if d < minDistSq[i] {
				minDistSq[i] = d
			}
			sum += minDistSq[i]
		}
	}

	assignments := make([]int, len(vectors))
	for iter := 0; iter < maxIters; iter++ {
		changed := false
		for i, vec := range vectors {
			nearest := nearestCentroid(vec, centroids)
			if assignments[i] != nearest {
				changed = true
				assignments[i] = nearest
			}
		}
		if !changed {
			break
		}

		counts := make([]int, k)
		sums := make([]float32, k*dim)
		for i, vec := range vectors {
			cluster := assignments[i]
			counts[cluster]++
			acc := sums[cluster*dim : (cluster+1)*dim]
			for j, val := range vec {
				acc[j] += val
			}
		}
		for i := range centroids {
			if counts[i] == 0 {
				continue
			}
			acc := sums[i*dim : (i+1)*dim]
			for j := range centroids[i] {
				centroids[i][j] = acc[j] / float32(counts[i])
			}
		}
	}

	return centroids
}

// nearestCentroid finds the index of the nearest centroid to a vector.
func nearestCentroid(vec []float32, centroids [][]float32) int {
	minDist := float32(math.MaxFloat32)
	nearest := 0
	for i, centroid := range centroids {
		dist := math32.SquaredL2(vec, centroid)
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	return nearest
}
