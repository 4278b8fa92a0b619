package services

import (
	"fmt"
	"math/rand"
)

// Word lists for generated sender names. Cosmetic only; collisions across
// messages are expected and fine.
var (
	pseudonymAdjectives = []string{
		"Curious", "Thoughtful", "Wise", "Kind", "Brave", "Gentle", "Bright", "Creative",
		"Peaceful", "Strong", "Clever", "Friendly", "Happy", "Smart", "Cool", "Nice",
	}
	pseudonymNouns = []string{
		"Owl", "Fox", "Bear", "Wolf", "Eagle", "Lion", "Tiger", "Rabbit",
		"Dolphin", "Whale", "Cat", "Dog", "Bird", "Fish", "Star", "Moon",
	}
)

// NewPseudonym returns a display name of the form "Adjective Noun NNN" with
// NNN in [100, 999]. Each part is chosen independently and uniformly.
func NewPseudonym() string {
	adjective := pseudonymAdjectives[rand.Intn(len(pseudonymAdjectives))]
	noun := pseudonymNouns[rand.Intn(len(pseudonymNouns))]
	number := 100 + rand.Intn(900)
	return fmt.Sprintf("%s %s %d", adjective, noun, number)
}
