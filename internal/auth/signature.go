// Package auth verifies that inbound interaction webhooks were signed by
// Discord. Requests failing verification must be rejected with 401, or
// Discord disables the endpoint.
package auth

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

const (
	headerSignature = "X-Signature-Ed25519"
	headerTimestamp = "X-Signature-Timestamp"
)

// VerifySignature checks the Ed25519 signature over timestamp+body.
func VerifySignature(publicKey ed25519.PublicKey, signatureHex, timestamp string, body []byte) bool {
	signature, err := hex.DecodeString(signatureHex)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return false
	}
	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)
	return ed25519.Verify(publicKey, message, signature)
}

// InteractionAuthMiddleware rejects interaction posts that Discord did not
// sign.
func InteractionAuthMiddleware(publicKey ed25519.PublicKey) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get(headerSignature)
		timestamp := c.Get(headerTimestamp)
		if signature == "" || timestamp == "" {
			return apperrors.NewUnauthorized("missing interaction signature")
		}
		if !VerifySignature(publicKey, signature, timestamp, c.Body()) {
			return apperrors.NewUnauthorized("invalid interaction signature")
		}
		return c.Next()
	}
}
