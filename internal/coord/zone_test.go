package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveZone(t *testing.T) {
	tests := []struct {
		name       string
		lat, lon   float64
		wantNumber int
		wantLetter byte
	}{
		{"Warsaw", 52.2297, 21.0122, 34, 'U'},
		{"New York", 40.7128, -74.0060, 18, 'T'},
		{"Sydney", -33.8568, 151.2153, 56, 'H'},
		{"western half of zone 30", 10, -3, 30, 'P'},
		{"eastern half of zone 31", 10, 3, 31, 'P'},
		{"prime meridian", 10, 0, 30, 'P'},
		{"near antimeridian west", 0, -179.9, 1, 'N'},
		{"near antimeridian east", 0, 179.9, 60, 'N'},
		{"antimeridian west", 10, -180, 1, 'P'},
		{"antimeridian east", 10, 180, 60, 'P'},
		{"just south of equator", -0.1, 3, 31, 'M'},
		{"band X lower edge", 72.0, 10, 32, 'X'},
		{"band W upper edge", 71.999, 10, 32, 'W'},
		{"band X widened", 83.999, 10, 32, 'X'},
		{"north limit", 84.0, 10, 32, InvalidZoneLetter},
		{"south limit", -80.0, 10, 32, 'C'},
		{"below south limit", -80.0001, 10, 32, InvalidZoneLetter},
		{"pole", 90, 10, 32, InvalidZoneLetter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number, letter := ResolveZone(tt.lat, tt.lon)
			assert.Equal(t, tt.wantNumber, number)
			assert.Equal(t, string(tt.wantLetter), string(letter))
		})
	}
}

func TestIsSouthernLetter(t *testing.T) {
	for _, l := range []byte("CDEFGHJKLMcdefghjklm") {
		assert.True(t, IsSouthernLetter(l), "letter %c", l)
	}
	for _, l := range []byte("NPQRSTUVWXnpx*") {
		assert.False(t, IsSouthernLetter(l), "letter %c", l)
	}
}

func TestValidZoneLetter(t *testing.T) {
	assert.True(t, validZoneLetter('C'))
	assert.True(t, validZoneLetter('x'))
	assert.False(t, validZoneLetter('I'))
	assert.False(t, validZoneLetter('O'))
	assert.False(t, validZoneLetter('Y'))
	assert.False(t, validZoneLetter(InvalidZoneLetter))
}
