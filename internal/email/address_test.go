package email_test

import (
	"errors"
	"testing"

	"github.com/svanholten/letterbox/internal/email"
)

func Test_ParseAddress(t *testing.T) {
	okTests := map[string]struct {
		raw  string
		want email.Address
	}{
		"shortest possible": {
			raw:  "a@b",
			want: "a@b",
		},
		"typical": {
			raw:  "ursula@example.com",
			want: "ursula@example.com",
		},
		"whitespace is trimmed": {
			raw:  " 	not@somemissing.com  ",
			want: "not@somemissing.com",
		},
		"subdomain": {
			raw:  "reader@mail.example.co.uk",
			want: "reader@mail.example.co.uk",
		},
	}

	for name, tc := range okTests {
		t.Run(name, func(t *testing.T) {
			got, err := email.ParseAddress(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	failTests := map[string]string{
		"empty":                 "",
		"whitespace only":       " 	",
		"missing @":             "somemissing.com",
		"missing domain":        "ursula@",
		"missing local part":    "@somemissing.com",
		"with name":             "Ursula <ursula@example.com>",
		"with name and comment": "Ursula <ursula@example.com>(comment)",
	}

	for name, raw := range failTests {
		t.Run(name, func(t *testing.T) {
			_, err := email.ParseAddress(raw)
			if !errors.Is(err, email.ErrInvalidEmail) {
				t.Fatalf("expected error to be email.ErrInvalidEmail via errors.Is, but got %v", err)
			}
		})
	}
}
