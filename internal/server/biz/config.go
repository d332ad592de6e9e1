package biz

import (
	"github.com/looplj/ecagate/internal/pkg/xregexp"
)

type ValidationConfig struct {
	// AllowList holds mail addresses accepted without a directory account.
	AllowList []string `conf:"allow_list" yaml:"allow_list" json:"allow_list"`

	// NoreplyEmailPatterns detect no-reply addresses. Patterns are unanchored.
	NoreplyEmailPatterns []string `conf:"noreply_email_patterns" yaml:"noreply_email_patterns" json:"noreply_email_patterns"`
}

func (c ValidationConfig) CompileNoreplyPatterns() (*xregexp.PatternSet, error) {
	return xregexp.Compile(c.NoreplyEmailPatterns)
}
