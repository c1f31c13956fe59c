package example

import "fmt"

// Kind identifies which value list a Feature carries.
type Kind uint8

const (
	KindNone Kind = iota
	BytesKind
	FloatKind
	Int64Kind
)

func (k Kind) String() string {
	switch k {
	case BytesKind:
		return "bytes_list"
	case FloatKind:
		return "float_list"
	case Int64Kind:
		return "int64_list"
	default:
		return "none"
	}
}

// Feature holds exactly one of its value lists, selected by Kind.
type Feature struct {
	Kind   Kind
	Bytes  [][]byte
	Floats []float32
	Int64s []int64
}

// Features is the flat name to Feature mapping of an Example.
type Features map[string]Feature

// FeatureLists maps names to ordered sequences of Feature.
type FeatureLists map[string][]Feature

// SequenceExample is a context bag plus named feature sequences. A nil map
// means the group was not present in the record.
type SequenceExample struct {
	Context      Features
	FeatureLists FeatureLists
}

// BytesFeature returns a bytes_list Feature.
func BytesFeature(values ...[]byte) Feature {
	return Feature{Kind: BytesKind, Bytes: values}
}

// FloatFeature returns a float_list Feature.
func FloatFeature(values ...float32) Feature {
	return Feature{Kind: FloatKind, Floats: values}
}

// Int64Feature returns an int64_list Feature.
func Int64Feature(values ...int64) Feature {
	return Feature{Kind: Int64Kind, Int64s: values}
}

// Len returns the number of values in the populated list.
func (f Feature) Len() int {
	switch f.Kind {
	case BytesKind:
		return len(f.Bytes)
	case FloatKind:
		return len(f.Floats)
	case Int64Kind:
		return len(f.Int64s)
	default:
		return 0
	}
}

// Value returns the populated list as an untyped value, for callers that
// convert features into their own representation.
func (f Feature) Value() any {
	switch f.Kind {
	case BytesKind:
		return f.Bytes
	case FloatKind:
		return f.Floats
	case Int64Kind:
		return f.Int64s
	default:
		return nil
	}
}

func (f Feature) String() string {
	return fmt.Sprintf("%s%v", f.Kind, f.Value())
}
