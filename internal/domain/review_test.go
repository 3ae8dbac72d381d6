package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRating(t *testing.T) {
	tests := []struct {
		rating int
		valid  bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{-1, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidRating(tt.rating), "rating %d", tt.rating)
	}
}
