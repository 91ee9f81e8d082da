package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTyposquat(t *testing.T) {
	tests := []struct {
		label string
		brand string
		match bool
	}{
		{"go0gle", "google", true},   // homoglyph 0 -> o
		{"gogle", "google", true},    // one deletion
		{"gooogle", "google", true},  // one insertion
		{"googel", "google", true},   // adjacent transposition
		{"micros0ft", "microsoft", true},
		{"google", "", false}, // exact brand is not a squat
		{"yahoo", "", false},
		{"example", "", false},
		{"goggles", "", false}, // two edits away
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			brand, ok := matchTyposquat(tt.label)
			assert.Equal(t, tt.match, ok)
			if tt.match {
				assert.Equal(t, tt.brand, brand)
			}
		})
	}
}

func TestIsOneDeletion(t *testing.T) {
	assert.True(t, isOneDeletion("amazn", "amazon"))
	assert.True(t, isOneDeletion("pypal", "paypal"))
	assert.False(t, isOneDeletion("amazon", "amazon"))
	assert.False(t, isOneDeletion("amzn", "amazon"))
}

func TestIsTransposition(t *testing.T) {
	assert.True(t, isTransposition("googel", "google"))
	assert.True(t, isTransposition("paypla", "paypal"))
	assert.False(t, isTransposition("google", "google"))
	assert.False(t, isTransposition("elgoog", "google"))
}

func TestIsHomoglyph(t *testing.T) {
	assert.True(t, isHomoglyph("g0ogle", "google"))
	assert.True(t, isHomoglyph("m1crosoft", "microsoft"))
	assert.False(t, isHomoglyph("google", "google"))
	assert.False(t, isHomoglyph("gaagle", "google"))
}
