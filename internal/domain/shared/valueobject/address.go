package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a value object for a property's physical location.
// It is immutable - all operations return new Address instances.
type Address struct {
	street     string
	town       string
	county     string
	postalCode string
	country    string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithPostalCode sets the postal code for the address
func WithPostalCode(postalCode string) AddressOption {
	return func(a *Address) {
		a.postalCode = strings.TrimSpace(postalCode)
	}
}

// WithCountry sets the country for the address
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address. Street and town are required;
// county, postal code and country are optional. Country defaults to Kenya.
func NewAddress(street, town, county string, opts ...AddressOption) (Address, error) {
	street = strings.TrimSpace(street)
	town = strings.TrimSpace(town)
	county = strings.TrimSpace(county)

	if street == "" {
		return Address{}, fmt.Errorf("street cannot be empty")
	}
	if len(street) > 200 {
		return Address{}, fmt.Errorf("street cannot exceed 200 characters")
	}
	if town == "" {
		return Address{}, fmt.Errorf("town cannot be empty")
	}
	if len(town) > 100 {
		return Address{}, fmt.Errorf("town cannot exceed 100 characters")
	}
	if len(county) > 100 {
		return Address{}, fmt.Errorf("county cannot exceed 100 characters")
	}

	addr := Address{
		street:  street,
		town:    town,
		county:  county,
		country: "Kenya",
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if len(addr.postalCode) > 20 {
		return Address{}, fmt.Errorf("postal code cannot exceed 20 characters")
	}
	if len(addr.country) > 100 {
		return Address{}, fmt.Errorf("country cannot exceed 100 characters")
	}

	return addr, nil
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(street, town, county string, opts ...AddressOption) Address {
	addr, err := NewAddress(street, town, county, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// Street returns the street and building line
func (a Address) Street() string {
	return a.street
}

// Town returns the town
func (a Address) Town() string {
	return a.town
}

// County returns the county
func (a Address) County() string {
	return a.county
}

// PostalCode returns the postal code
func (a Address) PostalCode() string {
	return a.postalCode
}

// Country returns the country
func (a Address) Country() string {
	return a.country
}

// IsEmpty returns true if the address has no location fields set
func (a Address) IsEmpty() bool {
	return a.street == "" && a.town == "" && a.county == ""
}

// FullAddress returns the complete formatted address string.
// Format: Street, Town, County, PostalCode, Country
func (a Address) FullAddress() string {
	if a.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, 5)
	if a.street != "" {
		parts = append(parts, a.street)
	}
	if a.town != "" {
		parts = append(parts, a.town)
	}
	if a.county != "" {
		parts = append(parts, a.county)
	}
	if a.postalCode != "" {
		parts = append(parts, a.postalCode)
	}
	if a.country != "" {
		parts = append(parts, a.country)
	}
	return strings.Join(parts, ", ")
}

// String returns a string representation of the address
func (a Address) String() string {
	return a.FullAddress()
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a.street == other.street &&
		a.town == other.town &&
		a.county == other.county &&
		a.postalCode == other.postalCode &&
		a.country == other.country
}

// SameTown returns true if both addresses are in the same town and county
func (a Address) SameTown(other Address) bool {
	return a.town == other.town && a.county == other.county
}

// addressJSON is used for JSON marshaling/unmarshaling
type addressJSON struct {
	Street     string `json:"street"`
	Town       string `json:"town"`
	County     string `json:"county,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Street:     a.street,
		Town:       a.town,
		County:     a.county,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler. It delegates to the NewAddress
// factory so stored addresses pass the same validation as new ones.
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	// Allow empty addresses from JSON
	if v.Street == "" && v.Town == "" && v.County == "" {
		*a = EmptyAddress()
		return nil
	}

	addr, err := NewAddress(v.Street, v.Town, v.County,
		WithPostalCode(v.PostalCode), WithCountry(v.Country))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer so an Address persists as a JSON column.
// Empty addresses store as NULL.
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = EmptyAddress()
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*a = EmptyAddress()
		return nil
	}

	return json.Unmarshal(data, a)
}
