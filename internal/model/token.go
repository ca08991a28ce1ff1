package model

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// TokenKind classifies how a token is resolved.
type TokenKind int

const (
	// TokenKindSearch resolves the token through full-text entity search.
	// This is the default kind; a zero Token is a search token.
	TokenKindSearch TokenKind = iota

	// TokenKindLookup resolves the token as a direct entity identifier.
	TokenKindLookup
)

// String returns a human-readable representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenKindSearch:
		return "search"
	case TokenKindLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// entityIDPattern matches an entity identifier anywhere in a token:
// the letter Q followed by one or more decimal digits, case-insensitive.
var entityIDPattern = regexp.MustCompile(`(?i)q\d+`)

// Token is an immutable value object representing the subdomain label
// extracted from a request host. It records the raw label and its
// classification.
type Token struct {
	raw  string    // Label as it appeared in the host, lowercased by the caller
	kind TokenKind // Detected classification
}

// NewToken classifies a raw token string. A token containing an entity
// identifier pattern anywhere in the string is a direct lookup; every other
// token is a search term. Classification is total and never fails.
func NewToken(raw string) Token {
	kind := TokenKindSearch
	if entityIDPattern.MatchString(raw) {
		kind = TokenKindLookup
	}
	return Token{raw: raw, kind: kind}
}

// TokenFromHost derives the resolution token from a request host.
// The host is lowercased and stripped of an optional port, a trailing dot,
// and the base-domain suffix. The second return value is false when the
// host carries no token: the bare base domain and its www alias render the
// landing page instead of resolving.
func TokenFromHost(host, baseDomain string) (Token, bool) {
	h := strings.ToLower(strings.TrimSpace(host))

	// Ports only follow named hosts here; bracketed IPv6 literals never
	// carry a resolvable label.
	if strings.HasPrefix(h, "[") {
		return Token{}, false
	}
	if i := strings.IndexByte(h, ':'); i >= 0 {
		h = h[:i]
	}
	h = strings.TrimSuffix(h, ".")

	base := strings.ToLower(strings.Trim(baseDomain, "."))
	if h == "" || h == base || h == "www."+base {
		return Token{}, false
	}

	label := strings.TrimSuffix(h, "."+base)
	if label == "" {
		return Token{}, false
	}
	return NewToken(label), true
}

// String returns the raw token.
func (t Token) String() string {
	return t.raw
}

// Kind returns the token classification.
func (t Token) Kind() TokenKind {
	return t.kind
}

// IsLookup returns true when the token names an entity identifier.
func (t Token) IsLookup() bool {
	return t.kind == TokenKindLookup
}

// ID returns the token uppercased, the form embedded into a direct lookup.
func (t Token) ID() string {
	return strings.ToUpper(t.raw)
}

// Term returns the token as a search term. Punycode labels are decoded to
// their Unicode form so internationalized subdomains search for the text the
// user typed, and separator characters become spaces. The raw token is used
// unchanged when decoding fails.
func (t Token) Term() string {
	term := t.raw
	if decoded, err := idna.ToUnicode(t.raw); err == nil && decoded != "" {
		term = decoded
	}
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		return r
	}, term)
}

// IsZero returns true if this is a zero value (empty) Token.
func (t Token) IsZero() bool {
	return t.raw == ""
}

// Equals returns true if two Token values are equal.
func (t Token) Equals(other Token) bool {
	return t.raw == other.raw && t.kind == other.kind
}
