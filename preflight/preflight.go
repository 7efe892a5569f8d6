// Package preflight checks documents against a profile of rules, such as
// a maximum PDF version or a requirement that fonts are embedded.
//
//	profile := preflight.NewProfile("archive").
//	    Rule(preflight.MaxVersion(1.4)).
//	    Rule(preflight.FontsEmbedded())
//	issues, err := profile.Check(r.Objects())
package preflight

import (
	"fmt"

	"github.com/yob/pdf-reader-sub001/core"
	"github.com/yob/pdf-reader-sub001/reader"
)

// Issue is one rule violation
type Issue struct {
	Rule    string
	Message string
	// Ref is the offending object, zero when the issue concerns the
	// whole document.
	Ref core.Reference
}

func (i Issue) String() string {
	if i.Ref == (core.Reference{}) {
		return fmt.Sprintf("%s: %s", i.Rule, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Rule, i.Message, i.Ref)
}

// Rule inspects a document and reports what it finds wrong. An error
// means the rule could not run.
type Rule interface {
	Name() string
	Check(h *reader.ObjectHash) ([]Issue, error)
}

// RuleFunc adapts a function to Rule
type RuleFunc struct {
	RuleName string
	Fn       func(h *reader.ObjectHash) ([]Issue, error)
}

func (f RuleFunc) Name() string { return f.RuleName }

func (f RuleFunc) Check(h *reader.ObjectHash) ([]Issue, error) { return f.Fn(h) }

// Profile is a named, ordered set of rules
type Profile struct {
	name  string
	rules []Rule
}

// NewProfile returns an empty profile
func NewProfile(name string) *Profile {
	return &Profile{name: name}
}

// Name returns the profile name
func (p *Profile) Name() string { return p.name }

// Rule appends r and returns the profile for chaining
func (p *Profile) Rule(r Rule) *Profile {
	p.rules = append(p.rules, r)
	return p
}

// Rules returns the rules in the order they run
func (p *Profile) Rules() []Rule { return p.rules }

// Check runs every rule in order and collects their issues. It stops at
// the first rule that fails to run.
func (p *Profile) Check(h *reader.ObjectHash) ([]Issue, error) {
	var issues []Issue
	for _, r := range p.rules {
		found, err := r.Check(h)
		if err != nil {
			return issues, fmt.Errorf("profile %s: rule %s: %w", p.name, r.Name(), err)
		}
		issues = append(issues, found...)
	}
	return issues, nil
}
