package example

import (
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes features as an Example payload. Keys are written in sorted
// order so equal inputs produce equal bytes.
func Marshal(features Features) ([]byte, error) {
	inner, err := appendFeatures(nil, features)
	if err != nil {
		return nil, err
	}
	return appendMessage(nil, fieldFeatures, inner), nil
}

// MarshalSequence encodes seq as a SequenceExample payload. Nil groups are
// omitted; empty non-nil groups are written as empty messages.
func MarshalSequence(seq SequenceExample) ([]byte, error) {
	var b []byte
	if seq.Context != nil {
		inner, err := appendFeatures(nil, seq.Context)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fieldContext, inner)
	}
	if seq.FeatureLists != nil {
		var inner []byte
		for _, key := range sortedKeys(seq.FeatureLists) {
			var list []byte
			for i, f := range seq.FeatureLists[key] {
				encoded, err := appendFeature(nil, f)
				if err != nil {
					return nil, emptyListFeature(key, i)
				}
				list = appendMessage(list, fieldList, encoded)
			}
			inner = appendMessage(inner, fieldList, appendMapEntry(nil, key, list))
		}
		b = appendMessage(b, fieldFeatureLists, inner)
	}
	return b, nil
}

func appendFeatures(b []byte, features Features) ([]byte, error) {
	for _, key := range sortedKeys(features) {
		encoded, err := appendFeature(nil, features[key])
		if err != nil {
			return nil, emptyFeature(key)
		}
		b = appendMessage(b, fieldList, appendMapEntry(nil, key, encoded))
	}
	return b, nil
}

func appendMapEntry(b []byte, key string, value []byte) []byte {
	b = protowire.AppendTag(b, fieldMapKey, protowire.BytesType)
	b = protowire.AppendString(b, key)
	return appendMessage(b, fieldMapValue, value)
}

func appendFeature(b []byte, f Feature) ([]byte, error) {
	var list []byte
	switch f.Kind {
	case BytesKind:
		for _, v := range f.Bytes {
			list = protowire.AppendTag(list, fieldList, protowire.BytesType)
			list = protowire.AppendBytes(list, v)
		}
		return appendMessage(b, fieldBytesList, list), nil
	case FloatKind:
		if len(f.Floats) > 0 {
			list = protowire.AppendTag(list, fieldList, protowire.BytesType)
			list = protowire.AppendVarint(list, uint64(4*len(f.Floats)))
			for _, v := range f.Floats {
				list = protowire.AppendFixed32(list, math.Float32bits(v))
			}
		}
		return appendMessage(b, fieldFloatList, list), nil
	case Int64Kind:
		if len(f.Int64s) > 0 {
			var packed []byte
			for _, v := range f.Int64s {
				packed = protowire.AppendVarint(packed, uint64(v))
			}
			list = appendMessage(list, fieldList, packed)
		}
		return appendMessage(b, fieldInt64List, list), nil
	default:
		return nil, ErrEmptyFeature
	}
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
