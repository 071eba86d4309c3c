package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"typical email", "a@x.com", "a@x_com"},
		{"multiple dots", "first.last@mail.example.com", "first_last@mail_example_com"},
		{"all forbidden characters", "a.b#c$d/e[f]g", "a_b_c_d_e_f_g"},
		{"already clean", "user@example_com", "user@example_com"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeKey(tc.input))
		})
	}
}

func TestSanitizeKeyStable(t *testing.T) {
	// Sanitizing twice must give the same key, otherwise lookups and
	// writes could disagree on where a profile lives.
	once := SanitizeKey("jane.doe@example.com")
	assert.Equal(t, once, SanitizeKey(once))
}
