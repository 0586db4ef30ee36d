package connector

import (
	"fmt"
	"sort"
	"strings"
)

// SafetyPolicy is the per-dialect allow-list of statement-leading keywords
// permitted through ExecuteSQL. It is a lexical check: the statement is
// trimmed, lowercased, and its first whitespace-delimited token tested for
// membership. It is a best-effort guard, not a SQL parser: a statement
// separator or leading comment can smuggle text past it, so it must never
// be the only defense on an untrusted surface. The read-only flag uses the
// same list as its enforcement boundary; the list applies even when the
// flag is unset, so DDL and DML never pass through this path.
type SafetyPolicy struct {
	allowed map[string]struct{}
}

var baseAllowedKeywords = []string{"select", "with", "explain", "analyze", "show"}

// NewSafetyPolicy builds a policy from the base allow-list plus any
// dialect-specific extras.
func NewSafetyPolicy(extras ...string) *SafetyPolicy {
	p := &SafetyPolicy{allowed: make(map[string]struct{})}
	for _, kw := range baseAllowedKeywords {
		p.allowed[kw] = struct{}{}
	}
	for _, kw := range extras {
		p.allowed[strings.ToLower(kw)] = struct{}{}
	}
	return p
}

// SafetyPolicyFor returns the statement policy for a dialect.
func SafetyPolicyFor(id DialectID) *SafetyPolicy {
	switch id {
	case DialectMySQL, DialectMariaDB:
		return NewSafetyPolicy("describe", "desc")
	case DialectSQLite:
		return NewSafetyPolicy("pragma")
	case DialectSQLServer:
		return NewSafetyPolicy("showplan")
	default:
		return NewSafetyPolicy()
	}
}

// Check returns a ReadOnlyViolation error when the statement's leading
// keyword is not on the allow-list. Empty statements are rejected too.
func (p *SafetyPolicy) Check(statement string) error {
	token := leadingKeyword(statement)
	if token == "" {
		return &Error{Kind: ErrKindReadOnlyViolation, Message: "empty statement"}
	}
	if _, ok := p.allowed[token]; !ok {
		return &Error{
			Kind:    ErrKindReadOnlyViolation,
			Message: fmt.Sprintf("statement %q is not permitted; allowed leading keywords: %s", token, strings.Join(p.Allowed(), ", ")),
		}
	}
	return nil
}

// Allows reports whether the statement would pass Check.
func (p *SafetyPolicy) Allows(statement string) bool {
	return p.Check(statement) == nil
}

// Allowed returns the allow-list sorted for stable display.
func (p *SafetyPolicy) Allowed() []string {
	out := make([]string, 0, len(p.allowed))
	for kw := range p.allowed {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

func leadingKeyword(statement string) string {
	trimmed := strings.TrimSpace(statement)
	if trimmed == "" {
		return ""
	}
	fields := strings.Fields(trimmed)
	token := strings.ToLower(fields[0])
	// "select*1" style input still yields a recognizable keyword.
	if i := strings.IndexAny(token, "(*;"); i > 0 {
		token = token[:i]
	}
	return token
}
