package example

import (
	"bytes"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the Example contract. Every list and map field uses 1.
const (
	fieldList         protowire.Number = 1
	fieldFeatures     protowire.Number = 1
	fieldContext      protowire.Number = 1
	fieldFeatureLists protowire.Number = 2
	fieldMapKey       protowire.Number = 1
	fieldMapValue     protowire.Number = 2
	fieldBytesList    protowire.Number = 1
	fieldFloatList    protowire.Number = 2
	fieldInt64List    protowire.Number = 3
)

// Unmarshal decodes an Example payload into its feature map. An Example with
// no features decodes to an empty, non-nil map.
func Unmarshal(b []byte) (Features, error) {
	features := Features{}
	err := forEachField(b, "Example", func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldFeatures {
			return nil
		}
		if typ != protowire.BytesType {
			return wireTypeError("Example", num, typ)
		}
		return parseFeatures(v, features)
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

// UnmarshalSequence decodes a SequenceExample payload. Groups that are absent
// from the payload are left nil.
func UnmarshalSequence(b []byte) (SequenceExample, error) {
	var seq SequenceExample
	err := forEachField(b, "SequenceExample", func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case fieldContext:
			if typ != protowire.BytesType {
				return wireTypeError("SequenceExample", num, typ)
			}
			if seq.Context == nil {
				seq.Context = Features{}
			}
			return parseFeatures(v, seq.Context)
		case fieldFeatureLists:
			if typ != protowire.BytesType {
				return wireTypeError("SequenceExample", num, typ)
			}
			if seq.FeatureLists == nil {
				seq.FeatureLists = FeatureLists{}
			}
			return parseFeatureLists(v, seq.FeatureLists)
		}
		return nil
	})
	if err != nil {
		return SequenceExample{}, err
	}
	return seq, nil
}

// forEachField walks the top level fields of a message. For length-delimited
// fields fn receives the field contents, for every other type the raw value.
func forEachField(b []byte, message string, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return decodeError(message, protowire.ParseError(n))
		}
		b = b[n:]

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return decodeError(message, protowire.ParseError(n))
		}
		v := b[:n]
		b = b[n:]

		if typ == protowire.BytesType {
			v, _ = protowire.ConsumeBytes(v)
		}
		if err := fn(num, typ, v); err != nil {
			return err
		}
	}
	return nil
}

func parseFeatures(b []byte, into Features) error {
	return forEachField(b, "Features", func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldList {
			return nil
		}
		if typ != protowire.BytesType {
			return wireTypeError("Features", num, typ)
		}

		key, value, err := parseMapEntry(v, "Features.FeatureEntry")
		if err != nil {
			return err
		}
		feature, err := parseFeature(value)
		if err != nil {
			return err
		}
		if feature.Kind == KindNone {
			return emptyFeature(key)
		}
		into[key] = feature
		return nil
	})
}

func parseFeatureLists(b []byte, into FeatureLists) error {
	return forEachField(b, "FeatureLists", func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldList {
			return nil
		}
		if typ != protowire.BytesType {
			return wireTypeError("FeatureLists", num, typ)
		}

		key, value, err := parseMapEntry(v, "FeatureLists.FeatureListEntry")
		if err != nil {
			return err
		}

		var list []Feature
		err = forEachField(value, "FeatureList", func(num protowire.Number, typ protowire.Type, v []byte) error {
			if num != fieldList {
				return nil
			}
			if typ != protowire.BytesType {
				return wireTypeError("FeatureList", num, typ)
			}
			feature, err := parseFeature(v)
			if err != nil {
				return err
			}
			if feature.Kind == KindNone {
				return emptyListFeature(key, len(list))
			}
			list = append(list, feature)
			return nil
		})
		if err != nil {
			return err
		}
		into[key] = list
		return nil
	})
}

// parseMapEntry returns the key and the raw value message of a map entry.
// Missing fields take their zero value, as protobuf maps require.
func parseMapEntry(b []byte, message string) (string, []byte, error) {
	var (
		key   string
		value []byte
	)
	err := forEachField(b, message, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case fieldMapKey, fieldMapValue:
			if typ != protowire.BytesType {
				return wireTypeError(message, num, typ)
			}
			if num == fieldMapKey {
				key = string(v)
			} else {
				value = v
			}
		}
		return nil
	})
	return key, value, err
}

// parseFeature decodes a Feature. When several list fields are present the
// last one wins; repeats of the same list are concatenated.
func parseFeature(b []byte) (Feature, error) {
	var f Feature
	err := forEachField(b, "Feature", func(num protowire.Number, typ protowire.Type, v []byte) error {
		var kind Kind
		switch num {
		case fieldBytesList:
			kind = BytesKind
		case fieldFloatList:
			kind = FloatKind
		case fieldInt64List:
			kind = Int64Kind
		default:
			return nil
		}
		if typ != protowire.BytesType {
			return wireTypeError("Feature", num, typ)
		}
		if kind != f.Kind {
			f = Feature{Kind: kind}
		}

		switch kind {
		case BytesKind:
			return parseBytesList(v, &f)
		case FloatKind:
			return parseFloatList(v, &f)
		default:
			return parseInt64List(v, &f)
		}
	})
	return f, err
}

func parseBytesList(b []byte, f *Feature) error {
	return forEachField(b, "BytesList", func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldList {
			return nil
		}
		if typ != protowire.BytesType {
			return wireTypeError("BytesList", num, typ)
		}
		// Payload buffers are reused by the framer, so values must not alias them.
		f.Bytes = append(f.Bytes, bytes.Clone(v))
		return nil
	})
}

func parseFloatList(b []byte, f *Feature) error {
	return forEachField(b, "FloatList", func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldList {
			return nil
		}
		switch typ {
		case protowire.Fixed32Type:
			bits, _ := protowire.ConsumeFixed32(v)
			f.Floats = append(f.Floats, math.Float32frombits(bits))
		case protowire.BytesType:
			if len(v)%4 != 0 {
				return decodeError("FloatList", fmt.Errorf("packed length %d is not a multiple of 4", len(v)))
			}
			if f.Floats == nil {
				f.Floats = make([]float32, 0, len(v)/4)
			}
			for len(v) > 0 {
				bits, n := protowire.ConsumeFixed32(v)
				f.Floats = append(f.Floats, math.Float32frombits(bits))
				v = v[n:]
			}
		default:
			return wireTypeError("FloatList", num, typ)
		}
		return nil
	})
}

func parseInt64List(b []byte, f *Feature) error {
	return forEachField(b, "Int64List", func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldList {
			return nil
		}
		switch typ {
		case protowire.VarintType:
			x, _ := protowire.ConsumeVarint(v)
			f.Int64s = append(f.Int64s, int64(x))
		case protowire.BytesType:
			for len(v) > 0 {
				x, n := protowire.ConsumeVarint(v)
				if n < 0 {
					return decodeError("Int64List", protowire.ParseError(n))
				}
				f.Int64s = append(f.Int64s, int64(x))
				v = v[n:]
			}
		default:
			return wireTypeError("Int64List", num, typ)
		}
		return nil
	})
}

func wireTypeError(message string, num protowire.Number, typ protowire.Type) error {
	return decodeError(message, fmt.Errorf("field %d: unexpected wire type %d", num, typ))
}
