package model

import "time"

// Risk alert categories.
const (
	AlertFinancial   = "FINANCIAL"
	AlertPayroll     = "PAYROLL"
	AlertShift       = "SHIFT"
	AlertOperational = "OPERATIONAL"
)

// Risk alert severities.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// RiskAlert is a diagnostic record produced by a risk scan pass over
// the shift and payroll data, stored in the `risk_alerts` table.
// Alerts are mutated only by resolve/delete actions and never expire
// on their own; resolving one never touches the record it was derived
// from.
//
// Fields:
//  ID                – primary key identifier (UUID).
//  Category          – FINANCIAL, PAYROLL, SHIFT or OPERATIONAL.
//  Severity          – CRITICAL, HIGH, MEDIUM or LOW.
//  Title             – short headline for the dashboard.
//  DetectedIssue     – what the scanner found.
//  WhyItMatters      – operational impact of the condition.
//  LikelyRootCause   – most probable explanation.
//  RecommendedAction – suggested remedy for the operator.
//  SourceRef         – id of the shift/payroll/worker that triggered it.
//  Resolved          – whether an operator resolved the alert.
//  ResolvedAt        – when it was resolved (nullable).
//  ResolvedBy        – operator name who resolved it.
type RiskAlert struct {
	ID                string
	Category          string
	Severity          string
	Title             string
	DetectedIssue     string
	WhyItMatters      string
	LikelyRootCause   string
	RecommendedAction string
	SourceRef         string
	Resolved          bool
	ResolvedAt        *time.Time
	ResolvedBy        string
	CreatedAt         time.Time
}
