package cardhash

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/cardfold/internal/domain"
)

// Normalize joins the card's faces after lowercasing, trimming, and
// normalizing line endings. The newline join keeps the front and back
// from running together, so "ab"+"c" and "a"+"bc" hash differently.
func Normalize(card domain.Card) string {
	clean := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		return strings.ReplaceAll(p, "\r\n", "\n")
	}
	return clean(card.Front) + "\n" + clean(card.Back)
}

// Sum returns the SHA-256 of the normalized card as a hex string. Two
// cards with the same content hash the same regardless of folder, so
// imports can skip duplicates.
func Sum(card domain.Card) string {
	normalized := Normalize(card)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(normalized)))
}
