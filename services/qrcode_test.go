package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() QRPayload {
	return QRPayload{
		EntitlementRef: "5e9f8f2c-1111-2222-3333-444455556666",
		CustomerID:     7,
		CampaignID:     3,
		UniqueCode:     "RK-ABC-DEFG",
		IssuedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Nonce:          "nonce-1",
	}
}

func TestQRCodecRoundtrip(t *testing.T) {
	codec := NewQRCodec("secret")

	blob, err := codec.Encode(samplePayload())
	require.NoError(t, err)
	require.Contains(t, blob, ".")

	decoded, err := codec.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, samplePayload(), *decoded)
}

func TestQRCodecRejectsTampering(t *testing.T) {
	codec := NewQRCodec("secret")
	blob, err := codec.Encode(samplePayload())
	require.NoError(t, err)

	parts := strings.SplitN(blob, ".", 2)

	tests := []struct {
		name string
		blob string
	}{
		{"no signature separator", parts[0]},
		{"body flipped", "A" + parts[0][1:] + "." + parts[1]},
		{"signature flipped", parts[0] + "." + strings.Repeat("0", len(parts[1]))},
		{"empty", ""},
		{"garbage", "not-a-payload.deadbeef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.blob)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
		})
	}
}

func TestQRCodecRejectsWrongKey(t *testing.T) {
	blob, err := NewQRCodec("secret-a").Encode(samplePayload())
	require.NoError(t, err)

	_, err = NewQRCodec("secret-b").Decode(blob)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}
