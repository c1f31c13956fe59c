package cmd

import (
	"fmt"
	"unicode/utf8"

	"github.com/ssargent/tfrecord/pkg/example"
)

// jsonFeature is the JSON form of a feature. Byte values that are valid
// UTF-8 are written as text, otherwise every value is base64 encoded.
type jsonFeature struct {
	Kind   string    `json:"kind"`
	Bytes  []string  `json:"bytes,omitempty"`
	Base64 [][]byte  `json:"base64,omitempty"`
	Floats []float32 `json:"floats,omitempty"`
	Int64s []int64   `json:"int64s,omitempty"`
}

type jsonSequence struct {
	Context      map[string]jsonFeature   `json:"context,omitempty"`
	FeatureLists map[string][]jsonFeature `json:"feature_lists,omitempty"`
}

func toJSONFeature(f example.Feature) jsonFeature {
	out := jsonFeature{Kind: f.Kind.String()}
	switch f.Kind {
	case example.BytesKind:
		text := true
		for _, b := range f.Bytes {
			if !utf8.Valid(b) {
				text = false
				break
			}
		}
		if !text {
			out.Base64 = f.Bytes
			break
		}
		for _, b := range f.Bytes {
			out.Bytes = append(out.Bytes, string(b))
		}
	case example.FloatKind:
		out.Floats = f.Floats
	case example.Int64Kind:
		out.Int64s = f.Int64s
	}
	return out
}

func fromJSONFeature(key string, f jsonFeature) (example.Feature, error) {
	switch f.Kind {
	case example.BytesKind.String():
		values := f.Base64
		for _, s := range f.Bytes {
			values = append(values, []byte(s))
		}
		return example.BytesFeature(values...), nil
	case example.FloatKind.String():
		return example.FloatFeature(f.Floats...), nil
	case example.Int64Kind.String():
		return example.Int64Feature(f.Int64s...), nil
	default:
		return example.Feature{}, fmt.Errorf("feature %q: unknown kind %q", key, f.Kind)
	}
}

func toJSONFeatures(features example.Features) map[string]jsonFeature {
	if features == nil {
		return nil
	}
	out := make(map[string]jsonFeature, len(features))
	for k, f := range features {
		out[k] = toJSONFeature(f)
	}
	return out
}

func fromJSONFeatures(in map[string]jsonFeature) (example.Features, error) {
	if in == nil {
		return nil, nil
	}
	out := make(example.Features, len(in))
	for k, f := range in {
		feature, err := fromJSONFeature(k, f)
		if err != nil {
			return nil, err
		}
		out[k] = feature
	}
	return out, nil
}

func toJSONSequence(seq example.SequenceExample) jsonSequence {
	out := jsonSequence{Context: toJSONFeatures(seq.Context)}
	if seq.FeatureLists != nil {
		out.FeatureLists = make(map[string][]jsonFeature, len(seq.FeatureLists))
		for k, list := range seq.FeatureLists {
			rendered := make([]jsonFeature, len(list))
			for i, f := range list {
				rendered[i] = toJSONFeature(f)
			}
			out.FeatureLists[k] = rendered
		}
	}
	return out
}

func fromJSONSequence(in jsonSequence) (example.SequenceExample, error) {
	context, err := fromJSONFeatures(in.Context)
	if err != nil {
		return example.SequenceExample{}, err
	}

	seq := example.SequenceExample{Context: context}
	if in.FeatureLists != nil {
		seq.FeatureLists = make(example.FeatureLists, len(in.FeatureLists))
		for k, list := range in.FeatureLists {
			features := make([]example.Feature, len(list))
			for i, f := range list {
				if features[i], err = fromJSONFeature(k, f); err != nil {
					return example.SequenceExample{}, err
				}
			}
			seq.FeatureLists[k] = features
		}
	}
	return seq, nil
}
