package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotificationMethod(t *testing.T) {
	tests := []struct {
		in    string
		want  NotificationMethod
		valid bool
	}{
		{"", MethodWebhook, true},
		{"webhook", MethodWebhook, true},
		{"WEBHOOK", MethodWebhook, true},
		{" email ", MethodEmail, true},
		{"sms", MethodSMS, true},
		{"pigeon", MethodWebhook, false},
	}
	for _, tt := range tests {
		got, ok := ParseNotificationMethod(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusFired.Valid())
	assert.False(t, SentinelStatus("archived").Valid())
	assert.False(t, SentinelStatus("").Valid())
}

func TestPayloadValue(t *testing.T) {
	v, err := Payload{"event_name": "lease expires", "days": float64(3)}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_name":"lease expires","days":3}`, string(v.([]byte)))

	v, err = Payload(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestPayloadScan(t *testing.T) {
	var p Payload
	require.NoError(t, p.Scan([]byte(`{"owner":"acme"}`)))
	assert.Equal(t, "acme", p["owner"])

	require.NoError(t, p.Scan(`{"owner":"globex"}`))
	assert.Equal(t, "globex", p["owner"])

	require.NoError(t, p.Scan(nil))
	assert.Nil(t, p)

	assert.Error(t, p.Scan(42))
	assert.Error(t, p.Scan([]byte(`not json`)))
}
