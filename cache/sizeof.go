package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// SizeEstimator reports approximate byte footprint of a value. Estimators
// must not panic; a panic is absorbed by the calling operation and the
// write degrades to a failure.
type SizeEstimator func(value interface{}) int64

// FallbackSize is charged for a value whose size cannot be estimated.
const FallbackSize = 100

// EstimateSize is the default SizeEstimator. It is deliberately cheap and
// approximate: strings cost their UTF-8 length, numbers 8 bytes, bools one
// byte, composite values the length of their JSON encoding, and anything
// else the length of its string form. Estimation failure costs
// FallbackSize. EstimateSize never panics.
func EstimateSize(value interface{}) (size int64) {
	defer func() {
		if recover() != nil {
			size = FallbackSize
		}
	}()
	switch v := value.(type) {
	case nil:
		return 0
	case string:
		return int64(len(v))
	case []byte:
		return int64(len(v))
	case bool:
		return 1
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return 8
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
		data, err := json.Marshal(value)
		if err != nil {
			// Not serializable: may contain cycles, so formatting the
			// value is not safe either.
			return FallbackSize
		}
		return int64(len(data))
	}
	return int64(len(fmt.Sprint(value)))
}
