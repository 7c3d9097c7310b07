package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casepipe/internal/domain"
	"casepipe/internal/validator"
)

func TestValidIdentifier_DefaultPatterns(t *testing.T) {
	f, err := validator.NewFields(nil, nil)
	require.NoError(t, err)

	assert.True(t, f.ValidIdentifier("12345678"))
	assert.True(t, f.ValidIdentifier("123456"))
	assert.True(t, f.ValidIdentifier("AB-12345"))
	assert.False(t, f.ValidIdentifier(""))
	assert.False(t, f.ValidIdentifier("12345"))        // too short for digit pattern
	assert.False(t, f.ValidIdentifier("1234567890"))   // too long
	assert.False(t, f.ValidIdentifier("AB12"))         // too short for code pattern
	assert.False(t, f.ValidIdentifier("John Smith MD")) // spaces never match
}

func TestValidIdentifier_CustomPatterns(t *testing.T) {
	f, err := validator.NewFields([]string{`^T-\d{4}$`}, nil)
	require.NoError(t, err)

	assert.True(t, f.ValidIdentifier("T-1234"))
	assert.False(t, f.ValidIdentifier("12345678"))
}

func TestNewFields_InvalidPattern(t *testing.T) {
	_, err := validator.NewFields([]string{`([`}, nil)
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	f, err := validator.NewFields(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-15", f.NormalizeDate("06/15/2025"))
	assert.Equal(t, "2025-06-15", f.NormalizeDate("6/15/25"))
	assert.Equal(t, "2025-06-15", f.NormalizeDate("2025-06-15"))
	assert.Equal(t, "", f.NormalizeDate(""))
	assert.Equal(t, "", f.NormalizeDate("   "))
	assert.Equal(t, domain.ServiceDateUnknown, f.NormalizeDate("not a date"))
	assert.Equal(t, domain.ServiceDateUnknown, f.NormalizeDate("13/45/2025"))
}

func TestCompareDates(t *testing.T) {
	assert.Negative(t, validator.CompareDates("2025-01-01", "2025-06-15"))
	assert.Positive(t, validator.CompareDates("2025-06-15", "2025-01-01"))
	assert.Zero(t, validator.CompareDates("2025-06-15", "2025-06-15"))

	// empty and unknown rank after every real date
	assert.Negative(t, validator.CompareDates("2025-06-15", ""))
	assert.Negative(t, validator.CompareDates("2025-06-15", domain.ServiceDateUnknown))
}
