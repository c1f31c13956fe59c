// Package example decodes the structured payloads carried by record files.
//
// Two message shapes are supported, both fixed by the Example protobuf
// contract:
//
//	Example         {1: Features features}
//	SequenceExample {1: Features context, 2: FeatureLists feature_lists}
//
// Features maps names to a Feature, a list of bytes, float32 or int64 values.
// FeatureLists maps names to ordered sequences of Feature.
//
// Decoders read payloads one at a time from a PayloadSource (usually a
// codec.Reader), decode them and apply a Projection that keeps only the
// requested names:
//
//	dec := example.NewDecoder(reader, example.Keys("label", "tokens"))
//	for {
//	    features, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// A requested name that is missing from a record is an error matching
// ErrProjectionMiss, never a silent skip. A Feature with no value list set
// is an error matching ErrEmptyFeature.
package example
