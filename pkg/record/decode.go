package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
)

// Decode copies the field values of rec into the struct pointed to by out.
//
// Fields are matched by the `kintone` struct tag, otherwise by name
// (case-insensitive) or by the snake_case form of the name. Values are
// converted loosely, so the string-encoded numbers kintone returns can fill
// numeric fields. Unknown field codes are ignored.
//
//	type Order struct {
//		ID       string `kintone:"$id"`
//		Customer string
//		UnitCost float64 // matches "unit_cost"
//	}
func Decode(rec Record, out any) error {
	values := make(map[string]any, len(rec))
	for code := range rec {
		if v, ok := rec.Value(code); ok {
			values[code] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "kintone",
		WeaklyTypedInput: true,
		Result:           out,
		MatchName: func(mapKey, fieldName string) bool {
			return strings.EqualFold(mapKey, fieldName) || mapKey == strcase.ToSnake(fieldName)
		},
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
