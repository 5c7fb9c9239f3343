package domain

import "time"

// Trigger names the mechanism that asked for a delivery completion.
type Trigger string

// List of completion triggers
const (
	TriggerTimer  Trigger = "timer"
	TriggerSweep  Trigger = "sweep"
	TriggerManual Trigger = "manual"
)

// CompletionOutcome is the result of a completion attempt.
type CompletionOutcome string

// List of completion outcomes
const (
	Completed        CompletionOutcome = "completed"
	AlreadyCompleted CompletionOutcome = "already_completed"
)

// AssignResult - struct representing the result of assigning a partner to an order.
type AssignResult struct {
	OrderID     string
	PartnerID   string
	PartnerName string
	ETAMinutes  int
	StartTime   time.Time
	Deadline    time.Time
}

// CompletionResult - struct representing the result of a completion attempt.
type CompletionResult struct {
	OrderID   string
	PartnerID string
	Trigger   Trigger
	Outcome   CompletionOutcome
}

// SweepResult summarizes one reconciliation pass over busy partners.
type SweepResult struct {
	Scanned          int
	Due              int
	Completed        int
	AlreadyCompleted int
	Failed           int
}
