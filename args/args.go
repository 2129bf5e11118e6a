// Package args provides typed parsing for command argument strings.
package args

import (
	"errors"
	"strconv"
	"strings"
)

// Echo is the parsed argument form of the echo command: free text with an
// optional trailing repeat count.
type Echo struct {
	Text   string
	Repeat int
}

const (
	minRepeat = 1
	maxRepeat = 10
)

// ParseEcho parses "some text [n]". A trailing integer becomes the repeat
// count and must stay within 1..10; without one the whole string is the text
// and the count is 1. Empty input is an error.
func ParseEcho(s string) (Echo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Echo{}, errors.New("text is required")
	}

	parts := strings.Fields(s)
	e := Echo{Text: s, Repeat: 1}
	if len(parts) < 2 {
		return e, nil
	}

	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return e, nil
	}
	if n < minRepeat || n > maxRepeat {
		return Echo{}, errors.New("repeat count must be between 1 and 10")
	}
	e.Text = strings.Join(parts[:len(parts)-1], " ")
	e.Repeat = n
	return e, nil
}
