package flat

import (
	"bytes"
	"encoding/gob"
	"io"
)

// GobEncode method for Flat.
func (f *Flat) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(f.dim); err != nil {
		return nil, err
	}
	if err := encoder.Encode(f.rows); err != nil {
		return nil, err
	}
	if err := encoder.Encode(f.data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode method for Flat.
func (f *Flat) GobDecode(data []byte) error {
	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	if err := decoder.Decode(&f.dim); err != nil {
		return err
	}
	if err := decoder.Decode(&f.rows); err != nil {
		return err
	}
	return decoder.Decode(&f.data)
}

// Save writes the index artifact to w.
func (f *Flat) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f)
}

// Load reads an index artifact produced by Save.
func Load(r io.Reader) (*Flat, error) {
	f := &Flat{}
	if err := gob.NewDecoder(r).Decode(f); err != nil {
		return nil, err
	}
	return f, nil
}
