package history

import (
	"fmt"
	"strings"
	"unicode"
)

// BugIDPolicy extracts an issue tracker identifier from a commit message.
type BugIDPolicy func(subject, body string) (string, bool)

const (
	PolicyNamePrefix = "prefix"
	PolicyNameColon  = "colon"
	PolicyNameNone   = "none"
)

// PolicyByName resolves a policy name used in the config file.
func PolicyByName(name string) (BugIDPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyNamePrefix:
		return PolicyPrefix, nil
	case PolicyNameColon:
		return PolicyColon, nil
	case PolicyNameNone, "":
		return PolicyNone, nil
	default:
		return nil, fmt.Errorf("unknown bug id policy %q (want %s, %s or %s)",
			name, PolicyNamePrefix, PolicyNameColon, PolicyNameNone)
	}
}

// PolicyPrefix takes the first word of the subject (the second one for
// "fixup" commits) and accepts JBR-NNNN style or purely numeric ids.
//
//	"JBR-1234 Fix NPE"         -> "JBR-1234"
//	"fixup! 1234: something"   -> "1234"
func PolicyPrefix(subject, _ string) (string, bool) {
	tokens := strings.Split(subject, " ")
	token := tokens[0]
	if strings.HasPrefix(token, "fixup") {
		if len(tokens) < 2 {
			return "", false
		}
		token = tokens[1]
	}
	token = strings.TrimRight(token, ":")
	if strings.HasPrefix(token, "JBR-") || isNumeric(token) {
		return token, true
	}
	return "", false
}

// PolicyColon takes the text before the first colon of the subject when it is
// 4 to 10 characters long. Longer ids such as "JDK-8210473" are rejected.
func PolicyColon(subject, _ string) (string, bool) {
	before, _, found := strings.Cut(subject, ":")
	if !found {
		return "", false
	}
	id := strings.TrimSpace(before)
	if n := len(id); n < 4 || n > 10 {
		return "", false
	}
	return id, true
}

func PolicyNone(string, string) (string, bool) {
	return "", false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
