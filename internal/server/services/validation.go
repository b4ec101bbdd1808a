package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/mdd/internal/common"
)

const (
	minUserNameLen   = 4
	maxUserNameLen   = 40
	maxEmailLen      = 255
	maxPasswordLen   = 255
	maxTitleLen      = 255
	maxCommentLen    = 2000
	msgBlank         = "must not be blank"
	msgUserNameAt    = "must not contain '@'"
	msgInvalidEmail  = "must be a valid email address"
	msgPositiveTheme = "must be a positive theme id"
	msgSurrounding   = "must not start or end with whitespace"
)

// rule returns a violation message, or "" when the value passes.
type rule func(value string) string

type fieldRules struct {
	field string
	value string
	rules []rule
}

// check evaluates every rule set and records the first failing rule per
// field, so all invalid fields are reported together.
func check(v *common.ValidationError, sets ...fieldRules) {
	for _, set := range sets {
		for _, r := range set.rules {
			if msg := r(set.value); msg != "" {
				v.Add(set.field, msg)
				break
			}
		}
	}
}

func notBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return msgBlank
	}
	return ""
}

// trimmed rejects leading or trailing whitespace.
func trimmed(s string) string {
	if strings.TrimSpace(s) != s {
		return msgSurrounding
	}
	return ""
}

func lengthBetween(lo, hi int) rule {
	return func(s string) string {
		n := utf8.RuneCountInString(s)
		switch {
		case n < lo:
			return fmt.Sprintf("must be at least %d characters", lo)
		case n > hi:
			return fmt.Sprintf("must be at most %d characters", hi)
		}
		return ""
	}
}

func maxLength(hi int) rule {
	return lengthBetween(0, hi)
}

func noAtSign(s string) string {
	if strings.Contains(s, "@") {
		return msgUserNameAt
	}
	return ""
}

// emailAddress accepts a bare RFC 5322 address without a display name.
func emailAddress(s string) string {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return msgInvalidEmail
	}
	return ""
}

func accountRules(userName, email string) []fieldRules {
	return []fieldRules{
		{field: "username", value: userName, rules: []rule{notBlank, trimmed, lengthBetween(minUserNameLen, maxUserNameLen), noAtSign}},
		{field: "email", value: email, rules: []rule{notBlank, trimmed, maxLength(maxEmailLen), emailAddress}},
	}
}

func passwordRules(password string) fieldRules {
	return fieldRules{field: "password", value: password, rules: []rule{notBlank, maxLength(maxPasswordLen)}}
}

func articleRules(title, content string) []fieldRules {
	return []fieldRules{
		{field: "title", value: title, rules: []rule{notBlank, maxLength(maxTitleLen)}},
		{field: "content", value: content, rules: []rule{notBlank}},
	}
}

func commentRules(content string) fieldRules {
	return fieldRules{field: "content", value: content, rules: []rule{notBlank, maxLength(maxCommentLen)}}
}
