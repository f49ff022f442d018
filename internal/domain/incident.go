package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncidentStatus is the lifecycle state of an incident. Operators may use
// intermediate values beyond the ones enumerated here; only the crossing
// into resolved carries semantics.
type IncidentStatus string

const (
	IncidentStatusOpen       IncidentStatus = "open"
	IncidentStatusInProgress IncidentStatus = "in_progress"
	IncidentStatusResolved   IncidentStatus = "resolved"
)

// IncidentCategory classifies the reported problem.
type IncidentCategory string

const (
	CategoryBillingIssue      IncidentCategory = "billing_issue"
	CategoryMechanicalFailure IncidentCategory = "mechanical_failure"
	CategoryFlatTire          IncidentCategory = "flat_tire"
	CategoryBatteryIssue      IncidentCategory = "battery_issue"
	CategoryElectricalProblem IncidentCategory = "electrical_problem"
	CategoryAccident          IncidentCategory = "accident"
	CategoryTheft             IncidentCategory = "theft"
	CategoryOther             IncidentCategory = "other"
	CategoryUserError         IncidentCategory = "user_error"
)

// Incident is the aggregate for operational incident reports.
type Incident struct {
	ID              string
	Number          string
	Title           string
	Description     string
	Category        IncidentCategory
	Status          IncidentStatus
	Priority        string
	ScooterID       *string
	TripID          *string
	Location        *string
	UserPhone       *string
	ReportedBy      *string
	AssignedTo      *string
	EstimatedCost   *decimal.Decimal
	Source          *string
	CreatedBy       string
	ResolutionNotes *string
	ResolutionDate  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ResolutionNotesValue returns the notes or empty when unset.
func (i *Incident) ResolutionNotesValue() string {
	if i.ResolutionNotes == nil {
		return ""
	}
	return *i.ResolutionNotes
}
