package valueobject

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name        string
		street      string
		town        string
		county      string
		opts        []AddressOption
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid address with required fields",
			street:  "Riverside Drive 14",
			town:    "Nairobi",
			county:  "Nairobi",
			wantErr: false,
		},
		{
			name:    "valid address without county",
			street:  "Moi Avenue 22",
			town:    "Mombasa",
			county:  "",
			wantErr: false,
		},
		{
			name:    "valid address with postal code",
			street:  "Kenyatta Avenue 5",
			town:    "Nakuru",
			county:  "Nakuru",
			opts:    []AddressOption{WithPostalCode("20100")},
			wantErr: false,
		},
		{
			name:    "valid address with country override",
			street:  "Main Street 1",
			town:    "Arusha",
			county:  "",
			opts:    []AddressOption{WithCountry("Tanzania")},
			wantErr: false,
		},
		{
			name:        "empty street",
			street:      "   ",
			town:        "Nairobi",
			county:      "Nairobi",
			wantErr:     true,
			errContains: "street cannot be empty",
		},
		{
			name:        "empty town",
			street:      "Riverside Drive 14",
			town:        "",
			county:      "Nairobi",
			wantErr:     true,
			errContains: "town cannot be empty",
		},
		{
			name:        "street too long",
			street:      strings.Repeat("a", 201),
			town:        "Nairobi",
			county:      "",
			wantErr:     true,
			errContains: "street cannot exceed",
		},
		{
			name:        "postal code too long",
			street:      "Riverside Drive 14",
			town:        "Nairobi",
			county:      "",
			opts:        []AddressOption{WithPostalCode(strings.Repeat("9", 21))},
			wantErr:     true,
			errContains: "postal code cannot exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := NewAddress(tt.street, tt.town, tt.county, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.street), addr.Street())
			assert.Equal(t, strings.TrimSpace(tt.town), addr.Town())
			assert.False(t, addr.IsEmpty())
		})
	}
}

func TestAddress_DefaultCountry(t *testing.T) {
	addr := MustNewAddress("Riverside Drive 14", "Nairobi", "Nairobi")
	assert.Equal(t, "Kenya", addr.Country())

	override := MustNewAddress("Main Street 1", "Kampala", "", WithCountry("Uganda"))
	assert.Equal(t, "Uganda", override.Country())
}

func TestAddress_FullAddress(t *testing.T) {
	addr := MustNewAddress("Riverside Drive 14", "Nairobi", "Nairobi", WithPostalCode("00100"))
	assert.Equal(t, "Riverside Drive 14, Nairobi, Nairobi, 00100, Kenya", addr.FullAddress())
	assert.Equal(t, addr.FullAddress(), addr.String())

	assert.Equal(t, "", EmptyAddress().FullAddress())
}

func TestAddress_Equals(t *testing.T) {
	a := MustNewAddress("Riverside Drive 14", "Nairobi", "Nairobi")
	b := MustNewAddress("Riverside Drive 14", "Nairobi", "Nairobi")
	c := MustNewAddress("Moi Avenue 22", "Mombasa", "Mombasa")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.True(t, a.SameTown(b))
	assert.False(t, a.SameTown(c))
}

func TestAddress_JSONRoundTrip(t *testing.T) {
	addr := MustNewAddress("Riverside Drive 14", "Nairobi", "Nairobi", WithPostalCode("00100"))

	data, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"street":"Riverside Drive 14"`)

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, addr.Equals(decoded))
}

func TestAddress_UnmarshalEmpty(t *testing.T) {
	var decoded Address
	require.NoError(t, json.Unmarshal([]byte(`{}`), &decoded))
	assert.True(t, decoded.IsEmpty())
}

func TestAddress_UnmarshalInvalid(t *testing.T) {
	var decoded Address
	err := json.Unmarshal([]byte(`{"street":"","town":"Nairobi"}`), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "street cannot be empty")
}

func TestAddress_SQLValueAndScan(t *testing.T) {
	t.Run("empty address stores as NULL", func(t *testing.T) {
		v, err := EmptyAddress().Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("round trip through driver value", func(t *testing.T) {
		addr := MustNewAddress("Riverside Drive 14", "Nairobi", "Nairobi")
		v, err := addr.Value()
		require.NoError(t, err)

		var scanned Address
		require.NoError(t, scanned.Scan(v))
		assert.True(t, addr.Equals(scanned))
	})

	t.Run("scanning nil yields empty address", func(t *testing.T) {
		var scanned Address
		require.NoError(t, scanned.Scan(nil))
		assert.True(t, scanned.IsEmpty())
	})

	t.Run("scanning unsupported type fails", func(t *testing.T) {
		var scanned Address
		assert.Error(t, scanned.Scan(42))
	})
}
