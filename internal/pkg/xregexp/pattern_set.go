package xregexp

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/hashicorp/go-multierror"
)

const defaultMatchTimeout = 100 * time.Millisecond

// PatternSet is a read-only list of compiled patterns, built once at startup.
type PatternSet struct {
	patterns []*regexp2.Regexp
}

// Compile compiles every non-blank pattern. All compile errors are reported together.
func Compile(patterns []string) (*PatternSet, error) {
	set := &PatternSet{
		patterns: make([]*regexp2.Regexp, 0, len(patterns)),
	}

	var errs *multierror.Error

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		re, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid pattern %q: %w", pattern, err))
			continue
		}

		re.MatchTimeout = defaultMatchTimeout
		set.patterns = append(set.patterns, re)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return set, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(patterns ...string) *PatternSet {
	set, err := Compile(patterns)
	if err != nil {
		panic(err)
	}

	return set
}

// MatchAny reports whether any pattern finds a match anywhere in s.
// A nil set matches nothing.
func (s *PatternSet) MatchAny(str string) bool {
	if s == nil {
		return false
	}

	for _, re := range s.patterns {
		// A timeout is treated as no match.
		if ok, err := re.MatchString(str); err == nil && ok {
			return true
		}
	}

	return false
}

// Len returns the number of compiled patterns.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.patterns)
}

// String returns the source patterns joined by a comma.
func (s *PatternSet) String() string {
	if s == nil {
		return ""
	}

	sources := make([]string, len(s.patterns))
	for i, re := range s.patterns {
		sources[i] = re.String()
	}

	return strings.Join(sources, ",")
}
