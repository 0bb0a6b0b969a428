package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"lowercase canonical", "3f2504e0-4f89-11d3-9a0c-0305e82c3301", true},
		{"uppercase canonical", "3F2504E0-4F89-11D3-9A0C-0305E82C3301", true},
		{"mixed case", "3f2504E0-4f89-11D3-9a0c-0305e82C3301", true},
		{"nil uuid", "00000000-0000-0000-0000-000000000000", true},
		{"not a uuid", "not-a-uuid", false},
		{"empty", "", false},
		{"bare hex", "3f2504e04f8911d39a0c0305e82c3301", false},
		{"braced", "{3f2504e0-4f89-11d3-9a0c-0305e82c3301}", false},
		{"urn prefix", "urn:uuid:3f2504e0-4f89-11d3-9a0c-0305e82c3301", false},
		{"non-hex digit", "3g2504e0-4f89-11d3-9a0c-0305e82c3301", false},
		{"misplaced hyphen", "3f2504e04-f89-11d3-9a0c-0305e82c3301", false},
		{"surrounding whitespace", " 3f2504e0-4f89-11d3-9a0c-0305e82c3301", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUUID(tt.value))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"simple", "a@x.com", true},
		{"subdomain", "first.last@mail.example.org", true},
		{"trailing text after tld", "a@x.com trailing", true},
		{"missing at", "ax.com", false},
		{"missing local part", "@x.com", false},
		{"missing dot in domain", "a@xcom", false},
		{"nothing after dot", "a@x.", false},
		{"double at", "a@@x.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.value))
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"ten digits", "5551234567", true},
		{"nine digits", "555123456", false},
		{"eleven digits", "55512345678", false},
		{"dashes", "555-123-4567", false},
		{"letters", "555123456a", false},
		{"leading space", " 5551234567", false},
		{"empty", "", false},
		{"arabic-indic digits", "٥٥٥١٢٣٤٥٦٧", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPhone(tt.value))
		})
	}
}

func TestNewStructValidator_Identifier(t *testing.T) {
	v := NewStructValidator()

	good := domain.Customer{
		ID:   "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		Name: "Alice",
	}
	require.NoError(t, v.Struct(good))

	bad := good
	bad.ID = "not-a-uuid"
	assert.Error(t, v.Struct(bad))

	product := domain.Product{
		ID:       "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		Name:     "Desk",
		Category: "Furniture",
		Price:    0,
	}
	assert.Error(t, v.Struct(product), "price must be positive")
}
