// Package sitematch compiles free-text site pattern lists into ordered
// block and allow matchers.
//
// A pattern list is a single string of whitespace or comma separated
// tokens. A token prefixed with '+' is an allow exception; every other
// token is a block pattern. Patterns are matched case-insensitively and
// in compile order: the first match wins.
package sitematch

import (
	"net/url"
	"regexp"
	"strings"
)

// Matcher is a single compiled pattern.
type Matcher struct {
	re   *regexp.Regexp
	Raw  string
	host string
	path string
	full string
}

// RuleSet is the result of compiling a pattern list. Malformed tokens
// are collected in Errors and skipped; they never fail the compile.
type RuleSet struct {
	Block  []Matcher
	Allow  []Matcher
	Errors []string
}

var tokenSplit = regexp.MustCompile(`[\s,]+`)

// Compile turns a raw pattern list into a RuleSet.
func Compile(raw string) *RuleSet {
	rs := &RuleSet{}

	for _, tok := range tokenSplit.Split(strings.TrimSpace(raw), -1) {
		if tok == "" {
			continue
		}

		allow := strings.HasPrefix(tok, "+")

		pattern := strings.ToLower(strings.TrimPrefix(tok, "+"))

		m, ok := compileToken(pattern)
		if !ok {
			rs.Errors = append(
				rs.Errors,
				"Invalid site pattern '"+tok+"'.",
			)

			continue
		}

		if allow {
			rs.Allow = append(rs.Allow, m)
		} else {
			rs.Block = append(rs.Block, m)
		}
	}

	return rs
}

func compileToken(pattern string) (Matcher, bool) {
	m := Matcher{Raw: pattern}

	if pattern == "" {
		return m, false
	}

	// Full URL prefix: literal prefix, or glob when it contains '*'.
	if strings.HasPrefix(pattern, "http://") ||
		strings.HasPrefix(pattern, "https://") {
		if strings.Contains(pattern, "*") {
			m.re = globToRegexp(pattern)
		} else {
			m.full = pattern
		}

		return m, true
	}

	host, path, _ := strings.Cut(pattern, "/")
	if host == "" {
		return m, false
	}

	if path != "" {
		path = "/" + path
		if strings.Contains(path, "*") {
			m.re = globToRegexp(path)
		} else {
			m.path = path
		}
	}

	m.host = host

	return m, true
}

// globToRegexp translates a glob into an anchored prefix regexp
// where '*' matches any run of characters.
func globToRegexp(glob string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(glob)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)

	return regexp.MustCompile("^" + quoted)
}

// Matches reports whether the matcher applies to the parsed URL.
func (m *Matcher) Matches(u *url.URL) bool {
	full := strings.ToLower(u.String())

	if m.full != "" {
		return strings.HasPrefix(full, m.full)
	}

	if m.host == "" {
		// full-URL glob
		return m.re != nil && m.re.MatchString(full)
	}

	if !hostMatches(strings.ToLower(u.Hostname()), m.host) {
		return false
	}

	urlPath := strings.ToLower(u.EscapedPath())

	if m.path != "" {
		return strings.HasPrefix(urlPath, m.path)
	}

	if m.re != nil {
		return m.re.MatchString(urlPath)
	}

	return true
}

// hostMatches applies host pattern semantics: a '*.' prefix matches the
// apex host and any subdomain, and so does a bare host, so that
// 'reddit.com' covers 'www.reddit.com' as well.
func hostMatches(host, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, "*.")

	return host == pattern || strings.HasSuffix(host, "."+pattern)
}

// FirstBlockMatch returns the raw text of the first block pattern that
// matches the URL.
func (rs *RuleSet) FirstBlockMatch(u *url.URL) (string, bool) {
	return firstMatch(rs.Block, u)
}

// FirstAllowMatch returns the raw text of the first allow pattern that
// matches the URL.
func (rs *RuleSet) FirstAllowMatch(u *url.URL) (string, bool) {
	return firstMatch(rs.Allow, u)
}

func firstMatch(matchers []Matcher, u *url.URL) (string, bool) {
	for i := range matchers {
		if matchers[i].Matches(u) {
			return matchers[i].Raw, true
		}
	}

	return "", false
}

// BlockPatterns returns the raw block patterns in compile order.
func (rs *RuleSet) BlockPatterns() []string {
	out := make([]string, 0, len(rs.Block))
	for i := range rs.Block {
		out = append(out, rs.Block[i].Raw)
	}

	return out
}
