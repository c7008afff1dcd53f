package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFull_English(t *testing.T) {
	f := New(language.AmericanEnglish)

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5 K (1,500)"},
		{2_500_000, "2.5 M (2,500,000)"},
		{3_000_000_000, "3 B (3,000,000,000)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Full(tt.in), "Full(%v)", tt.in)
	}
}

func TestFull_Portuguese(t *testing.T) {
	f := New(language.BrazilianPortuguese)

	assert.Equal(t, "1,5 K (1.500)", f.Full(1500))
	assert.Equal(t, "2,5 M (2.500.000)", f.Full(2_500_000))
}

func TestCompact(t *testing.T) {
	f := New(language.AmericanEnglish)

	assert.Equal(t, "0", f.Compact(0))
	assert.Equal(t, "2.5 M", f.Compact(2_500_000))
	assert.Equal(t, "1.25 B", f.Compact(1_250_000_000))
	// Below a million it matches Full, K tier included.
	assert.Equal(t, f.Full(1500), f.Compact(1500))
	assert.Equal(t, "1.5 K (1,500)", f.Compact(1500))
	assert.Equal(t, "999", f.Compact(999))
}

func TestGrouped(t *testing.T) {
	en := New(language.AmericanEnglish)
	pt := New(language.BrazilianPortuguese)

	assert.Equal(t, "1,234,567", en.Grouped(1_234_567))
	assert.Equal(t, "1.234.567", pt.Grouped(1_234_567))
	assert.Equal(t, "2.5", en.Grouped(2.5))
}

func TestIntHelpers(t *testing.T) {
	f := New(language.AmericanEnglish)

	assert.Equal(t, "1.5 K (1,500)", f.FullInt(1500))
	assert.Equal(t, "2.5 M", f.CompactInt(2_500_000))
}
