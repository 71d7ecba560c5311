package order

import (
	"fmt"
	"math/rand/v2"
)

const tokenLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewToken returns a display token of one random letter followed by a random
// three-digit number, e.g. "K417". Tokens are a counter-call aid only: there
// is no collision checking and they must never be treated as unique.
func NewToken() string {
	letter := tokenLetters[rand.IntN(len(tokenLetters))]
	number := rand.IntN(900) + 100
	return fmt.Sprintf("%c%d", letter, number)
}
