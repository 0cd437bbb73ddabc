package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketCode(t *testing.T) {
	code, err := GenerateTicketCode(10)
	require.NoError(t, err)
	assert.Len(t, code, 10)

	for _, c := range code {
		assert.Contains(t, codeCharset, string(c))
	}

	// Ambiguous characters never appear
	assert.NotContains(t, code, "0")
	assert.NotContains(t, code, "O")
	assert.NotContains(t, code, "1")
	assert.NotContains(t, code, "I")
	assert.NotContains(t, code, "L")

	// Zero length falls back to the default
	code, err = GenerateTicketCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 10)
}

func TestGenerateTicketCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := GenerateTicketCode(10)
		require.NoError(t, err)
		assert.False(t, seen[code], "collision at iteration %d", i)
		seen[code] = true
	}
}

func TestGeneratePurchaseRef(t *testing.T) {
	ref := GeneratePurchaseRef()
	assert.True(t, strings.HasPrefix(ref, "PUR-"))

	parts := strings.Split(ref, "-")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 6)
}

func TestQRPayload(t *testing.T) {
	assert.Equal(t, "https://tickets.test/t/ABC234", QRPayload("https://tickets.test", "ABC234"))
}
