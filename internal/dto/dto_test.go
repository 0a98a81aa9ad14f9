package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		body string
		want Quantity
	}{
		{`{"quantity":3}`, "3"},
		{`{"quantity":"3"}`, "3"},
		{`{"quantity":-5}`, "-5"},
		{`{"quantity":"abc"}`, "abc"},
		{`{"quantity":2.7}`, "2.7"},
		{`{"quantity":null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req SetQuantityRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Quantity)
		})
	}
}
