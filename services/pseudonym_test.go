package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var pseudonymPattern = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+ \d{3}$`)

func TestNewPseudonymShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		name := NewPseudonym()
		assert.Regexp(t, pseudonymPattern, name)
	}
}

func TestNewPseudonymVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[NewPseudonym()] = true
	}
	// 16*16*900 combinations; 100 draws landing on one value would mean
	// the generator is broken.
	assert.Greater(t, len(seen), 1)
}
