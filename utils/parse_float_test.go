package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    float64
		wantErr bool
	}{
		{12.5, 12.5, false},
		{7, 7, false},
		{json.Number("19.99"), 19.99, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{true, 0, true},
		{nil, 0, true},
	}
	for _, tt := range tests {
		got, err := ToNumber(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrNotNumeric, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestToInt(t *testing.T) {
	n, err := ToInt("10")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = ToInt(2.5)
	assert.Error(t, err)
}

func TestToDate(t *testing.T) {
	d, err := ToDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d)

	d, err = ToDate("2024-03-01T23:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d)

	_, err = ToDate("March 1st")
	assert.Error(t, err)
	_, err = ToDate(20240301)
	assert.Error(t, err)
}

func TestQRCodePNG(t *testing.T) {
	img, err := QRCodePNG("item:downtown/phones/abc", 200)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), img[:4])
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hi &lt;b&gt;", SanitizeInput("  hi <script>x</script><b> "))

	email, err := SanitizeEmail(" Rana@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "rana@example.com", email)
	_, err = SanitizeEmail("nope")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	phone, err := SanitizePhone("+961 3 123 456")
	require.NoError(t, err)
	assert.Equal(t, "+9613123456", phone)
	_, err = SanitizePhone("123")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}
