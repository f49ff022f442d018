package webhook

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pispas/incident-service/internal/domain"
)

// Channel identifies an outbound notification endpoint.
type Channel string

const (
	ChannelBilling    Channel = "billing"
	ChannelMechanical Channel = "mechanical"
	ChannelOther      Channel = "other"
)

var mechanicalCategories = map[domain.IncidentCategory]struct{}{
	domain.CategoryMechanicalFailure: {},
	domain.CategoryFlatTire:          {},
	domain.CategoryBatteryIssue:      {},
	domain.CategoryElectricalProblem: {},
	domain.CategoryAccident:          {},
	domain.CategoryTheft:             {},
}

// ResolveChannel maps an incident category to its notification channel.
// The category sets are disjoint, so at most one channel matches; a category
// outside all sets matches nothing, which is not an error.
func ResolveChannel(category domain.IncidentCategory) (Channel, bool) {
	if category == domain.CategoryBillingIssue {
		return ChannelBilling, true
	}
	if _, ok := mechanicalCategories[category]; ok {
		return ChannelMechanical, true
	}
	normalized := domain.IncidentCategory(strings.ToLower(strings.TrimSpace(string(category))))
	if normalized == domain.CategoryOther || normalized == domain.CategoryUserError {
		return ChannelOther, true
	}
	return "", false
}

// ShouldFire evaluates the channel firing predicate for one update request.
// All channels require the status to have crossed into resolved during this
// update; mechanical and other additionally require non-blank resolution
// notes.
func ShouldFire(channel Channel, transition domain.StatusTransition, incident *domain.Incident) bool {
	if !transition.IntoResolved() {
		return false
	}
	if channel == ChannelBilling {
		return true
	}
	return strings.TrimSpace(incident.ResolutionNotesValue()) != ""
}

// Payload is the fixed field projection delivered to a channel endpoint.
type Payload struct {
	Type            string           `json:"type"`
	IncidentID      string           `json:"incident_id"`
	IncidentNumber  string           `json:"incident_number"`
	TripID          *string          `json:"trip_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ResolutionNotes *string          `json:"resolution_notes"`
	ResolvedAt      time.Time        `json:"resolved_at"`
	ReportedBy      *string          `json:"reported_by"`
	UserPhone       *string          `json:"user_phone"`
	ScooterID       *string          `json:"scooter_id"`
	Location        *string          `json:"location"`
	EstimatedCost   *decimal.Decimal `json:"estimated_cost"`
	Category        string           `json:"category"`
	CreatedBy       string           `json:"created_by"`
}

var payloadTypes = map[Channel]string{
	ChannelBilling:    "billing_resolved",
	ChannelMechanical: "mechanical_resolved",
	ChannelOther:      "other_resolved",
}

// BuildPayload assembles the channel projection of a resolved incident.
func BuildPayload(channel Channel, incident *domain.Incident, resolvedAt time.Time) Payload {
	return Payload{
		Type:            payloadTypes[channel],
		IncidentID:      incident.ID,
		IncidentNumber:  incident.Number,
		TripID:          incident.TripID,
		Title:           incident.Title,
		Description:     incident.Description,
		ResolutionNotes: incident.ResolutionNotes,
		ResolvedAt:      resolvedAt,
		ReportedBy:      incident.ReportedBy,
		UserPhone:       incident.UserPhone,
		ScooterID:       incident.ScooterID,
		Location:        incident.Location,
		EstimatedCost:   incident.EstimatedCost,
		Category:        string(incident.Category),
		CreatedBy:       incident.CreatedBy,
	}
}

// Route decides, for one update, whether a delivery should go out and to
// which channel. Evaluated exactly once per update against the transition
// built from the pre-write snapshot.
func Route(transition domain.StatusTransition, incident *domain.Incident, resolvedAt time.Time) (Delivery, bool) {
	channel, ok := ResolveChannel(incident.Category)
	if !ok {
		return Delivery{}, false
	}
	if !ShouldFire(channel, transition, incident) {
		return Delivery{}, false
	}
	return Delivery{
		Channel: channel,
		Payload: BuildPayload(channel, incident, resolvedAt),
	}, true
}
