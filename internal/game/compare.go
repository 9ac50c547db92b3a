package game

import (
	"fmt"
	"strings"

	"github.com/szabala94/KalamburyPro-master/internal"
)

// isWordInvalid reports whether a word is empty or consists of whitespace
// only. Such words never count as guesses and may never become the secret.
func isWordInvalid(word string) bool {
	return strings.TrimSpace(word) == ""
}

// compareWords checks two words for equality ignoring case and surrounding
// whitespace. Internal whitespace differences do not match. Either side
// being blank is invalid input, not a mismatch.
func compareWords(a, b string) (bool, error) {
	if isWordInvalid(a) {
		return false, fmt.Errorf("%w: first word", internal.ErrInvalidWord)
	}
	if isWordInvalid(b) {
		return false, fmt.Errorf("%w: second word", internal.ErrInvalidWord)
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)), nil
}
