// Package dto defines the plain records the persistence and visualization
// collaborators exchange with the engine, plus the conversions between those
// records and live engine objects. Records round-trip the engine data model
// exactly; they carry no behavior.
package dto

// RuleRecord is the persisted form of one rule definition.
type RuleRecord struct {
	Label      string   `json:"label" yaml:"label" validate:"required,rule_label"`
	Children   []string `json:"children,omitempty" yaml:"children,omitempty" validate:"dive,rule_label"`
	AllowsFork bool     `json:"allows_fork,omitempty" yaml:"fork,omitempty"`
}

// RuleSetRecord is the persisted form of a rule set: its name, entry point,
// and every rule reachable from the entry point.
type RuleSetRecord struct {
	Name  string       `json:"name" yaml:"name" validate:"required"`
	Root  string       `json:"root" yaml:"root" validate:"required,rule_label"`
	Rules []RuleRecord `json:"rules" yaml:"rules" validate:"required,min=1,dive"`
}

// FlowNodeRecord is the persisted form of one flow position.
type FlowNodeRecord struct {
	ID       string   `json:"id" yaml:"id" validate:"required"`
	Rule     string   `json:"rule" yaml:"rule" validate:"required,rule_label"`
	Start    bool     `json:"start,omitempty" yaml:"start,omitempty"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// FlowRecord is the persisted form of a flow.
type FlowRecord struct {
	ID      string           `json:"id" yaml:"id" validate:"required"`
	RuleSet string           `json:"rule_set" yaml:"ruleset" validate:"required"`
	Frozen  bool             `json:"frozen,omitempty" yaml:"frozen,omitempty"`
	Nodes   []FlowNodeRecord `json:"nodes" yaml:"nodes" validate:"dive"`
}
