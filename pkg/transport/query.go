package transport

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// encodeQuery flattens GET params into query values.
//
// Structs are read through their json tags (omitempty is honored). Slices
// become indexed keys and maps bracketed keys, matching what kintone expects:
//
//	{app: 1, fields: ["a", "b"]}  ->  app=1&fields[0]=a&fields[1]=b
func encodeQuery(params any) (url.Values, error) {
	values := url.Values{}
	if params == nil {
		return values, nil
	}

	var m map[string]any
	switch p := params.(type) {
	case url.Values:
		return p, nil
	case map[string]any:
		m = p
	default:
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &m,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(params); err != nil {
			return nil, fmt.Errorf("unsupported params type %T: %w", params, err)
		}
	}

	for key, value := range m {
		addQueryValue(values, key, reflect.ValueOf(value))
	}
	return values, nil
}

func addQueryValue(values url.Values, key string, v reflect.Value) {
	switch v.Kind() {
	case reflect.Invalid:
		return
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return
		}
		addQueryValue(values, key, v.Elem())
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			addQueryValue(values, fmt.Sprintf("%s[%d]", key, i), v.Index(i))
		}
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			s := fmt.Sprint(k.Interface())
			keys = append(keys, s)
			byKey[s] = v.MapIndex(k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			addQueryValue(values, fmt.Sprintf("%s[%s]", key, k), byKey[k])
		}
	default:
		values.Add(key, fmt.Sprint(v.Interface()))
	}
}
