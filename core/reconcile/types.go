package reconcile

import (
	"customer-sync/core/customer"
)

// ActionType represents the type of directory mutation.
type ActionType string

const (
	// ActionAdd creates the customer in the external directory.
	ActionAdd ActionType = "add"
	// ActionDelete removes the customer from the external directory.
	ActionDelete ActionType = "delete"
)

// Action represents a planned directory mutation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the business key (CompanyID) of the customer.
	Key string `json:"key"`

	// ExternalID is the directory identifier. Only set for ActionDelete.
	ExternalID string `json:"external_id,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// index points at the result this action was planned from.
	index int
}

// ReconcilePlan contains classified results and planned actions.
type ReconcilePlan struct {
	// Results is the engine output, Missing records first.
	Results []customer.Customer `json:"results"`

	// Actions contains planned directory mutations.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	TotalItems int `json:"total_items"`
	Added      int `json:"added"`
	Missing    int `json:"missing"`
	Different  int `json:"different"`
	Unchanged  int `json:"unchanged"`

	// AddActions counts planned directory adds.
	AddActions int `json:"add_actions"`

	// DeleteActions counts planned directory deletes.
	DeleteActions int `json:"delete_actions"`
}

// ReconcileOptions controls which actions are planned and whether they run.
type ReconcileOptions struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoAdd plans directory adds for Added records.
	DoAdd bool

	// DoDelete plans directory deletes for Missing records.
	DoDelete bool

	// Confirmed indicates user has confirmed the mutations.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}

// Executes reports whether ApplyPlan will run mutations with these options.
func (o ReconcileOptions) Executes() bool {
	return o.Confirmed && !o.DryRun
}
