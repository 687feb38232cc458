package pq

import (
	"bytes"
	"encoding/gob"
	"io"
)

// gobQuantizer is the serialized form of a Quantizer.
type gobQuantizer struct {
	NumSubvectors int
	NumCentroids  int
	Dimension     int
	Codebooks     [][][]float32
}

// GobEncode method for Quantizer.
func (q *Quantizer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(gobQuantizer{
		NumSubvectors: q.numSubvectors,
		NumCentroids:  q.numCentroids,
		Dimension:     q.dimension,
		Codebooks:     q.codebooks,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode method for Quantizer.
func (q *Quantizer) GobDecode(data []byte) error {
	var g gobQuantizer
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&g); err != nil {
		return err
	}

	q.numSubvectors = g.NumSubvectors
	q.numCentroids = g.NumCentroids
	q.dimension = g.Dimension
	q.subvectorDim = g.Dimension / g.NumSubvectors
	q.codebooks = g.Codebooks
	q.trained = g.Codebooks != nil
	return nil
}

// GobEncode method for Index.
func (ix *Index) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(ix.quantizer); err != nil {
		return nil, err
	}
	if err := encoder.Encode(ix.rows); err != nil {
		return nil, err
	}
	if err := encoder.Encode(ix.codes); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode method for Index.
func (ix *Index) GobDecode(data []byte) error {
	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	ix.quantizer = &Quantizer{}
	if err := decoder.Decode(ix.quantizer); err != nil {
		return err
	}
	if err := decoder.Decode(&ix.rows); err != nil {
		return err
	}
	return decoder.Decode(&ix.codes)
}

// Save writes the index artifact to w.
func (ix *Index) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(ix)
}

// Load reads an index artifact produced by Save.
func Load(r io.Reader) (*Index, error) {
	ix := &Index{}
	if err := gob.NewDecoder(r).Decode(ix); err != nil {
		return nil, err
	}
	return ix, nil
}
