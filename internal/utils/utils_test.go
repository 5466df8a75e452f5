package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("  Ana.Clara@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ana.clara@example.com", got)

	for _, bad := range []string{"", "semarroba", "dois@@exemplo.com", "a b@exemplo.com"} {
		_, err := ValidateEmail(bad)
		assert.Error(t, err, "email %q", bad)
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+55 11 98888-0000", "+5511988880000"},
		{"(11) 98888-0000", "+5511988880000"},
		{"11 3666-0000", "+551136660000"},
		{"5511988880000", "+5511988880000"},
	}
	for _, tt := range tests {
		got, err := ValidatePhoneNumber(tt.in)
		require.NoError(t, err, "phone %q", tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "123", "988880000"} {
		_, err := ValidatePhoneNumber(bad)
		assert.Error(t, err, "phone %q", bad)
	}
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "R$ 85.000,00", FormatBRL(85000))
	assert.Equal(t, "R$ 1.234.567,89", FormatBRL(1234567.89))
	assert.Equal(t, "R$ 42,50", FormatBRL(42.5))
	assert.Equal(t, "-R$ 10,00", FormatBRL(-10))

	// Rounding the cents up must carry into the whole part.
	assert.Equal(t, "R$ 2,00", FormatBRL(1.999))
	assert.Equal(t, "R$ 1.000,00", FormatBRL(999.999))
}

func TestGeneratePaymentQR(t *testing.T) {
	png, err := GeneratePaymentQR("https://mercadopago.example/checkout/pref-123")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected a PNG payload")

	_, err = GeneratePaymentQR("")
	assert.Error(t, err)
}
