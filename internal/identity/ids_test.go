package identity_test

import (
	"regexp"
	"testing"

	"github.com/emyildirim/meetweb/internal/identity"
	"github.com/stretchr/testify/assert"
)

func TestNewMeetingID(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z][0-9]{10}$`)
	for i := 0; i < 200; i++ {
		id := identity.NewMeetingID()
		assert.Regexp(t, pattern, id)
	}
}

func TestNewAccountID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9][A-Z]{9}$`)
	for i := 0; i < 200; i++ {
		id := identity.NewAccountID()
		assert.Regexp(t, pattern, id)
	}
}

func TestNewPasscode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z][0-9][A-Z][0-9][A-Z][0-9]$`)
	for i := 0; i < 200; i++ {
		code := identity.NewPasscode()
		assert.Regexp(t, pattern, code)
	}
}

func TestTokensVary(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[identity.NewMeetingID()] = true
	}
	assert.Greater(t, len(seen), 1, "generator should not be constant")
}
