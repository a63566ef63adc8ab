// Package identity produces the opaque tokens used for meetings,
// accounts and passcodes. Tokens are random, fixed-format and not
// checked for uniqueness against any registry.
package identity

import "math/rand/v2"

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
)

func pick(alphabet string) byte {
	return alphabet[rand.IntN(len(alphabet))]
}

// NewMeetingID returns one uppercase letter followed by 10 digits.
func NewMeetingID() string {
	b := make([]byte, 11)
	b[0] = pick(letters)
	for i := 1; i < len(b); i++ {
		b[i] = pick(digits)
	}
	return string(b)
}

// NewAccountID returns one digit followed by 9 uppercase letters.
func NewAccountID() string {
	b := make([]byte, 10)
	b[0] = pick(digits)
	for i := 1; i < len(b); i++ {
		b[i] = pick(letters)
	}
	return string(b)
}

// NewPasscode returns 6 characters alternating letter/digit, starting
// with a letter.
func NewPasscode() string {
	b := make([]byte, 6)
	for i := range b {
		if i%2 == 0 {
			b[i] = pick(letters)
		} else {
			b[i] = pick(digits)
		}
	}
	return string(b)
}
