package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID        string `kintone:"$id"`
	Customer  string
	UnitCost  float64
	Quantity  int
	Tags      []string
	CreatedAt time.Time `kintone:"created_at"`
}

func TestDecode(t *testing.T) {
	rec := Record{
		"$id":        map[string]any{"type": "__ID__", "value": "12"},
		"customer":   map[string]any{"type": "SINGLE_LINE_TEXT", "value": "ACME"},
		"unit_cost":  map[string]any{"type": "NUMBER", "value": "19.5"},
		"Quantity":   map[string]any{"type": "NUMBER", "value": "3"},
		"tags":       map[string]any{"type": "CHECK_BOX", "value": []any{"a", "b"}},
		"created_at": map[string]any{"type": "CREATED_TIME", "value": "2024-03-01T10:00:00Z"},
		"unknown":    map[string]any{"type": "NUMBER", "value": "1"},
	}

	var got order
	require.NoError(t, Decode(rec, &got))

	assert.Equal(t, "12", got.ID)
	assert.Equal(t, "ACME", got.Customer)
	assert.Equal(t, 19.5, got.UnitCost)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestDecode_InvalidValue(t *testing.T) {
	rec := Record{
		"quantity": map[string]any{"type": "NUMBER", "value": "three"},
	}

	var got order
	err := Decode(rec, &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode record")
}

func TestDecode_NonPointer(t *testing.T) {
	err := Decode(Record{}, order{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create decoder")
}
