package models

import "time"

// FileReport is the outcome of parsing one input file.
type FileReport struct {
	Path      string `json:"path" yaml:"path"`
	Parsed    int    `json:"parsed" yaml:"parsed"`
	Malformed int    `json:"malformed" yaml:"malformed"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID          string       `json:"run_id" yaml:"run_id"`
	StartedAt      time.Time    `json:"started_at" yaml:"started_at"`
	Duration       string       `json:"duration" yaml:"duration"`
	Files          []FileReport `json:"files" yaml:"files"`
	Parsed         int          `json:"parsed" yaml:"parsed"`
	Malformed      int          `json:"malformed" yaml:"malformed"`
	Added          int          `json:"added" yaml:"added"`
	Resolved       int          `json:"resolved" yaml:"resolved"`
	Unknown        int          `json:"unknown" yaml:"unknown"`
	NewRules       int          `json:"new_rules" yaml:"new_rules"`
	OracleCalls    int          `json:"oracle_calls" yaml:"oracle_calls"`
	OracleFailures int          `json:"oracle_failures" yaml:"oracle_failures"`
	Stopped        bool         `json:"stopped" yaml:"stopped"`
	LedgerSize     int          `json:"ledger_size" yaml:"ledger_size"`
	Period         string       `json:"period,omitempty" yaml:"period,omitempty"`
	Warnings       []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
