package diagnose

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// Range is a set of accepted game versions: a union of constraint groups.
type Range struct {
	expr string
	any  bool
	alts []version.Constraints
}

// ParseRange parses an accepted-version expression. Maven ranges
// ("[1.12,1.13)", "(,1.0],[1.2,)") and semver-style expressions
// (">=1.16.5", "~1.16", "1.16.x", "*") are supported; "||" separates
// alternatives. A bare version is a single-point range.
func ParseRange(expr string) (*Range, error) {
	expr = strings.TrimSpace(expr)
	r := &Range{expr: expr}
	if expr == "" {
		return nil, fmt.Errorf("empty version range")
	}
	for _, part := range strings.Split(expr, "||") {
		part = strings.TrimSpace(part)
		if part == "*" || part == "" {
			r.any = true
			continue
		}
		var (
			alts []version.Constraints
			err  error
		)
		if strings.HasPrefix(part, "[") || strings.HasPrefix(part, "(") {
			alts, err = parseMaven(part)
		} else {
			var c version.Constraints
			c, err = parseSemverish(part)
			alts = []version.Constraints{c}
		}
		if err != nil {
			return nil, fmt.Errorf("parsing version range %q: %w", expr, err)
		}
		r.alts = append(r.alts, alts...)
	}
	return r, nil
}

// Contains reports whether v satisfies any alternative.
func (r *Range) Contains(v *version.Version) bool {
	if r.any {
		return true
	}
	for _, c := range r.alts {
		if c.Check(v) {
			return true
		}
	}
	return false
}

func (r *Range) String() string {
	return r.expr
}

// parseMaven splits a maven restriction list and converts each restriction.
func parseMaven(s string) ([]version.Constraints, error) {
	var out []version.Constraints
	for len(s) > 0 {
		s = strings.TrimLeft(s, ", ")
		if s == "" {
			break
		}
		open := s[0]
		if open != '[' && open != '(' {
			return nil, fmt.Errorf("expected '[' or '(' at %q", s)
		}
		end := strings.IndexAny(s, "])")
		if end < 0 {
			return nil, fmt.Errorf("unterminated restriction %q", s)
		}
		c, err := mavenRestriction(open, s[1:end], s[end])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		s = s[end+1:]
	}
	return out, nil
}

func mavenRestriction(open byte, body string, closing byte) (version.Constraints, error) {
	lower, upper, hasComma := strings.Cut(body, ",")
	lower, upper = strings.TrimSpace(lower), strings.TrimSpace(upper)
	if !hasComma {
		if open != '[' || closing != ']' || lower == "" {
			return nil, fmt.Errorf("invalid single version restriction %q", body)
		}
		return version.NewConstraint("= " + lower)
	}
	var parts []string
	if lower != "" {
		op := ">"
		if open == '[' {
			op = ">="
		}
		parts = append(parts, op+" "+lower)
	}
	if upper != "" {
		op := "<"
		if closing == ']' {
			op = "<="
		}
		parts = append(parts, op+" "+upper)
	}
	if len(parts) == 0 {
		return version.NewConstraint(">= 0")
	}
	return version.NewConstraint(strings.Join(parts, ", "))
}

// parseSemverish converts space separated comparator expressions into
// go-version constraints. "1.16.x", "~1.16" and "~1.16.5" all stop before
// 1.17, "^1.16" stops before 2, and a bare version is exact.
func parseSemverish(s string) (version.Constraints, error) {
	var parts []string
	for _, tok := range strings.Fields(strings.ReplaceAll(s, ",", " ")) {
		switch {
		case strings.HasSuffix(tok, ".x") || strings.HasSuffix(tok, ".*"),
			strings.HasPrefix(tok, "~") && !strings.HasPrefix(tok, "~>"):
			base := strings.TrimLeft(tok, "=<>~^")
			if strings.HasSuffix(base, ".x") || strings.HasSuffix(base, ".*") {
				base = base[:len(base)-2]
			}
			bv, err := version.NewVersion(base)
			if err != nil {
				return nil, err
			}
			parts = append(parts, ">= "+base, "< "+nextMinor(base, bv))
		case strings.HasPrefix(tok, "^"):
			bv, err := version.NewVersion(tok[1:])
			if err != nil {
				return nil, err
			}
			parts = append(parts, ">= "+tok[1:], fmt.Sprintf("< %d", bv.Segments()[0]+1))
		case strings.IndexAny(tok, "<>=!~") == 0:
			parts = append(parts, tok)
		default:
			parts = append(parts, "= "+tok)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return version.NewConstraint(strings.Join(parts, ", "))
}

// nextMinor is the exclusive upper bound of a tilde or wildcard range on
// base: the next minor, or the next major when base has one segment.
func nextMinor(base string, bv *version.Version) string {
	seg := bv.Segments()
	if strings.Count(base, ".") == 0 {
		return fmt.Sprintf("%d", seg[0]+1)
	}
	return fmt.Sprintf("%d.%d", seg[0], seg[1]+1)
}

// gameVersion parses a release game version. Snapshots and other
// non-release ids return nil.
func gameVersion(s string) *version.Version {
	v, err := version.NewVersion(s)
	if err != nil || v.Prerelease() != "" {
		return nil
	}
	return v
}

// minorOf returns the minor component of a 1.x game version, or -1.
func minorOf(s string) int {
	v := gameVersion(s)
	if v == nil {
		return -1
	}
	seg := v.Segments()
	if len(seg) < 2 || seg[0] != 1 {
		return -1
	}
	return seg[1]
}
