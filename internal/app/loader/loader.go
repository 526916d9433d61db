// Package loader reads declarative rule set and flow definitions from YAML.
// Hooks cannot be expressed declaratively; they are attached by label when a
// rule set is loaded.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cltrudeau/flowr/internal/app/dto"
	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/rule"
)

// RuleSetFromYAML parses a rule set definition and registers it with sets.
//
// Example definition:
//
//	name: My Rules
//	root: A
//	rules:
//	  - label: A
//	    children: [B, C]
//	  - label: B
//	  - label: C
//	    children: [D, E]
//	    fork: true
//	  - label: D
//	  - label: E
//	    children: [A]
func RuleSetFromYAML(data []byte, sets *rule.Sets, hooks map[string]rule.Hooks) (*rule.RuleSet, error) {
	var rec dto.RuleSetRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse rule set definition: %w", err)
	}
	return dto.RuleSetFromRecord(sets, rec, hooks)
}

// RuleSetFromFile reads a rule set definition from path.
func RuleSetFromFile(path string, sets *rule.Sets, hooks map[string]rule.Hooks) (*rule.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set definition: %w", err)
	}
	return RuleSetFromYAML(data, sets, hooks)
}

// FlowFromYAML parses a flow definition composed against a registered rule
// set.
//
// Example definition:
//
//	id: onboarding-v2
//	ruleset: My Rules
//	nodes:
//	  - id: n1
//	    rule: A
//	    start: true
//	    children: [n2]
//	  - id: n2
//	    rule: B
func FlowFromYAML(data []byte, sets *rule.Sets) (*flow.Flow, error) {
	var rec dto.FlowRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse flow definition: %w", err)
	}
	return dto.FlowFromRecord(sets, rec)
}

// FlowFromFile reads a flow definition from path.
func FlowFromFile(path string, sets *rule.Sets) (*flow.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow definition: %w", err)
	}
	return FlowFromYAML(data, sets)
}
