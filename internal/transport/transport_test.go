package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_IsRequest(t *testing.T) {
	m := &Message{ID: "1", Method: "ping"}
	assert.True(t, m.IsRequest())
	assert.False(t, m.IsNotification())
	assert.False(t, m.IsResponse())
}

func TestMessage_IsNotification(t *testing.T) {
	m := &Message{Method: "notifications/initialized"}
	assert.False(t, m.IsRequest())
	assert.True(t, m.IsNotification())
	assert.False(t, m.IsResponse())
}

func TestMessage_IsResponse(t *testing.T) {
	m := &Message{ID: "1", Result: map[string]interface{}{}}
	assert.False(t, m.IsRequest())
	assert.False(t, m.IsNotification())
	assert.True(t, m.IsResponse())
}

func TestMessage_BareMessageIsNone(t *testing.T) {
	m := &Message{}
	assert.False(t, m.IsRequest())
	assert.False(t, m.IsNotification())
	assert.False(t, m.IsResponse())
}

func TestError_UnwrapExposesUnderlyingCause(t *testing.T) {
	cause := errors.New("peer closed")
	err := NewError("send_request", cause)

	assert.Equal(t, "transport: send_request: peer closed", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Same(t, cause, errors.Unwrap(err))
}
