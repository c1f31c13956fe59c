package example

// PayloadSource yields one raw payload per call and io.EOF at the end of the
// stream. *codec.Reader implements it.
type PayloadSource interface {
	ReadNext() ([]byte, error)
}

// Decoder turns a payload stream into projected Example features. It is a
// finite, forward-only cursor.
type Decoder struct {
	src  PayloadSource
	proj Projection
}

// NewDecoder creates a decoder for Example payloads.
func NewDecoder(src PayloadSource, proj Projection) *Decoder {
	return &Decoder{src: src, proj: proj}
}

// Next decodes the next record. Source errors, including io.EOF, are returned
// unchanged.
func (d *Decoder) Next() (Features, error) {
	payload, err := d.src.ReadNext()
	if err != nil {
		return nil, err
	}

	features, err := Unmarshal(payload)
	if err != nil {
		return nil, err
	}

	selected, _, err := Take(GroupFeatures, features, d.proj)
	return selected, err
}

// SequenceDecoder turns a payload stream into projected SequenceExamples.
type SequenceDecoder struct {
	src  PayloadSource
	proj SequenceProjection
}

// NewSequenceDecoder creates a decoder for SequenceExample payloads.
func NewSequenceDecoder(src PayloadSource, proj SequenceProjection) *SequenceDecoder {
	return &SequenceDecoder{src: src, proj: proj}
}

// Next decodes the next record.
func (d *SequenceDecoder) Next() (SequenceExample, error) {
	payload, err := d.src.ReadNext()
	if err != nil {
		return SequenceExample{}, err
	}

	seq, err := UnmarshalSequence(payload)
	if err != nil {
		return SequenceExample{}, err
	}

	return ProjectSequence(seq, d.proj)
}
