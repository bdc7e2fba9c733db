package mykafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("order_events", "o-1", map[string]string{"type": "order.created"})
	require.NoError(t, err)
	assert.Equal(t, "order_events", msg.Topic)
	assert.Equal(t, []byte("o-1"), msg.Key)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order.created", body["type"])
	assert.False(t, msg.Time.IsZero())
}

func TestBuildMessage_Unmarshalable(t *testing.T) {
	_, err := buildMessage("t", "k", make(chan int))
	require.Error(t, err)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)
}
