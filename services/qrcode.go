package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QRPayload binds an entitlement's identity fields into the scannable blob
// printed in the customer app. The entitlement is addressed by its reference
// id so the payload can be built before the row's numeric id exists.
type QRPayload struct {
	EntitlementRef string    `json:"entitlement_ref"`
	CustomerID     uint      `json:"customer_id"`
	CampaignID     uint      `json:"campaign_id"`
	UniqueCode     string    `json:"unique_code"`
	IssuedAt       time.Time `json:"issued_at"`
	Nonce          string    `json:"nonce"`
}

// QRCodec encodes and decodes QR payloads. Payloads are HMAC-SHA256 signed
// with the configured secret; a payload whose signature does not verify is
// rejected before any id consistency checks run.
type QRCodec struct {
	secret []byte
}

// NewQRCodec builds a codec signing with the given secret.
func NewQRCodec(secret string) *QRCodec {
	return &QRCodec{secret: []byte(secret)}
}

// Encode serializes and signs the payload: base64url(json) + "." + hex(mac).
func (c *QRCodec) Encode(payload QRPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal qr payload: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(body)
	return encoded + "." + c.sign(encoded), nil
}

// Decode verifies the signature and unmarshals the payload. Callers must
// still verify the embedded ids against the stored entitlement; a signed
// payload only proves this service produced it.
func (c *QRCodec) Decode(blob string) (*QRPayload, error) {
	parts := strings.SplitN(blob, ".", 2)
	if len(parts) != 2 {
		return nil, &ValidationError{Message: "malformed QR payload"}
	}
	if !hmac.Equal([]byte(c.sign(parts[0])), []byte(parts[1])) {
		return nil, &ValidationError{Message: "QR payload signature mismatch"}
	}
	body, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, &ValidationError{Message: "malformed QR payload"}
	}
	var payload QRPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ValidationError{Message: "malformed QR payload"}
	}
	return &payload, nil
}

func (c *QRCodec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
