package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Charset for human-enterable ticket codes: no 0/O or 1/I/L
const codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateTicketCode returns a short, human-enterable ticket code of
// the given length. Collision-freedom within an event is finished off
// by the caller's uniqueness check-and-retry against storage.
func GenerateTicketCode(length int) (string, error) {
	if length <= 0 {
		length = 10
	}

	code := make([]byte, length)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate ticket code: %w", err)
		}
		code[i] = codeCharset[n.Int64()]
	}

	return string(code), nil
}

// GeneratePurchaseRef returns a dated reference for internally
// originated purchases, e.g. "PUR-20250114-483920"
func GeneratePurchaseRef() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	max := big.NewInt(1000000)
	randomNum, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fallback to timestamp-based generation if crypto/rand fails
		return fmt.Sprintf("PUR-%s-%06d", dateStr, now.UnixNano()%1000000)
	}

	return fmt.Sprintf("PUR-%s-%06d", dateStr, randomNum.Int64())
}

// QRPayload builds the URL embedded in a ticket's QR code
func QRPayload(baseURL, ticketCode string) string {
	return fmt.Sprintf("%s/t/%s", baseURL, ticketCode)
}
