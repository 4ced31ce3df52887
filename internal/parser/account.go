package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

// UnknownCardAccount is used for card numbers absent from the card mapping.
const UnknownCardAccount = "UnknownCard"

var nonAccountChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// AccountFromFilename derives an account name from a statement file name.
func AccountFromFilename(filePath string) string {
	base := filepath.Base(filePath)
	return SanitizeAccountID(strings.TrimSuffix(base, filepath.Ext(base)))
}

// SanitizeAccountID keeps letters, digits, dash and underscore.
func SanitizeAccountID(id string) string {
	id = nonAccountChars.ReplaceAllString(strings.TrimSpace(id), "_")
	id = strings.Trim(id, "_")
	if id == "" {
		return "UNKNOWN"
	}
	return id
}

// CardAccount maps a card number to an account name using its last four digits.
func CardAccount(cardNumber string, cards map[string]string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cardNumber)
	if len(digits) < 4 {
		return UnknownCardAccount
	}
	if name, ok := cards[digits[len(digits)-4:]]; ok && name != "" {
		return name
	}
	return UnknownCardAccount
}
