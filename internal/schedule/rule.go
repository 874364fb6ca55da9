// Package schedule implements siesta's tag-driven transition rules and
// the runner that applies them region by region.
package schedule

import (
	"fmt"

	"github.com/siesta-sh/siesta/pkg/instance"
)

// Action is the bulk state transition applied to selected instances.
type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

// Rule pairs a selection predicate (tag key + source state) with the
// transition to apply. Both variants run through the same runner, so
// their filter semantics cannot drift apart.
type Rule struct {
	Name        string
	TagKey      string
	SourceState instance.State
	Action      Action
}

// StopRule parks running instances tagged Autostop=true.
var StopRule = Rule{
	Name:        "stop",
	TagKey:      "Autostop",
	SourceState: instance.StateRunning,
	Action:      ActionStop,
}

// StartRule wakes stopped instances tagged Autostart=true.
var StartRule = Rule{
	Name:        "start",
	TagKey:      "Autostart",
	SourceState: instance.StateStopped,
	Action:      ActionStart,
}

// RuleByName returns the built-in rule with the given name.
func RuleByName(name string) (Rule, error) {
	switch name {
	case StopRule.Name:
		return StopRule, nil
	case StartRule.Name:
		return StartRule, nil
	default:
		return Rule{}, fmt.Errorf("unknown rule %q (must be %q or %q)", name, StopRule.Name, StartRule.Name)
	}
}

// Validate ensures the rule is complete.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.TagKey == "" {
		return fmt.Errorf("rule %s: tag key is required", r.Name)
	}
	if r.SourceState == "" {
		return fmt.Errorf("rule %s: source state is required", r.Name)
	}
	if r.Action != ActionStart && r.Action != ActionStop {
		return fmt.Errorf("rule %s: unknown action %q", r.Name, r.Action)
	}
	return nil
}
