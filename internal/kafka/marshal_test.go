package kafka

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type sample struct {
	OrderID string `json:"order_id"`
	Qty     int    `json:"qty"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := json.RawMessage(MustMarshal(sample{OrderID: "o1", Qty: 3}))

	got, err := UnwrapPayload[sample](raw)
	require.NoError(t, err)
	assert.Equal(t, sample{OrderID: "o1", Qty: 3}, got)

	_, err = UnwrapPayload[sample](json.RawMessage(`{"qty":"three"}`))
	assert.Error(t, err)
}

func TestMustMarshalPanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}
