package models

import "time"

// Playbook is a saved trading-strategy checklist.
type Playbook struct {
	ID               string    `json:"id" yaml:"id"`
	Name             string    `json:"name" yaml:"name"`
	Description      string    `json:"description,omitempty" yaml:"description,omitempty"`
	Category         string    `json:"category,omitempty" yaml:"category,omitempty"`
	MarketConditions []string  `json:"market_conditions,omitempty" yaml:"market_conditions,omitempty"`
	SetupChecklist   []string  `json:"setup_checklist,omitempty" yaml:"setup_checklist,omitempty"`
	ExitRules        []string  `json:"exit_rules,omitempty" yaml:"exit_rules,omitempty"`
	RiskRules        []string  `json:"risk_rules,omitempty" yaml:"risk_rules,omitempty"`
	Screenshots      []string  `json:"screenshots,omitempty" yaml:"screenshots,omitempty"`
	Version          int       `json:"version" yaml:"version"`
	LastUpdated      time.Time `json:"last_updated" yaml:"last_updated"`
}

// PlaybookInput holds the fields supplied when a playbook is created.
type PlaybookInput struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Category         string   `json:"category,omitempty"`
	MarketConditions []string `json:"market_conditions,omitempty"`
	SetupChecklist   []string `json:"setup_checklist,omitempty"`
	ExitRules        []string `json:"exit_rules,omitempty"`
	RiskRules        []string `json:"risk_rules,omitempty"`
	Screenshots      []string `json:"screenshots,omitempty"`
}

// PlaybookUpdate is a partial playbook edit.
type PlaybookUpdate struct {
	Name             *string  `json:"name,omitempty"`
	Description      *string  `json:"description,omitempty"`
	Category         *string  `json:"category,omitempty"`
	MarketConditions []string `json:"market_conditions,omitempty"`
	SetupChecklist   []string `json:"setup_checklist,omitempty"`
	ExitRules        []string `json:"exit_rules,omitempty"`
	RiskRules        []string `json:"risk_rules,omitempty"`
	Screenshots      []string `json:"screenshots,omitempty"`
}

// Apply merges u into p.
func (u PlaybookUpdate) Apply(p *Playbook) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.MarketConditions != nil {
		p.MarketConditions = append([]string(nil), u.MarketConditions...)
	}
	if u.SetupChecklist != nil {
		p.SetupChecklist = append([]string(nil), u.SetupChecklist...)
	}
	if u.ExitRules != nil {
		p.ExitRules = append([]string(nil), u.ExitRules...)
	}
	if u.RiskRules != nil {
		p.RiskRules = append([]string(nil), u.RiskRules...)
	}
	if u.Screenshots != nil {
		p.Screenshots = append([]string(nil), u.Screenshots...)
	}
}
