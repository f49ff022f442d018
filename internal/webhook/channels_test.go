package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pispas/incident-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestResolveChannel(t *testing.T) {
	cases := []struct {
		category domain.IncidentCategory
		channel  Channel
		matched  bool
	}{
		{domain.CategoryBillingIssue, ChannelBilling, true},
		{domain.CategoryMechanicalFailure, ChannelMechanical, true},
		{domain.CategoryFlatTire, ChannelMechanical, true},
		{domain.CategoryBatteryIssue, ChannelMechanical, true},
		{domain.CategoryElectricalProblem, ChannelMechanical, true},
		{domain.CategoryAccident, ChannelMechanical, true},
		{domain.CategoryTheft, ChannelMechanical, true},
		{domain.CategoryOther, ChannelOther, true},
		{domain.CategoryUserError, ChannelOther, true},
		{"vandalism", "", false},
	}

	for _, tc := range cases {
		channel, ok := ResolveChannel(tc.category)
		require.Equal(t, tc.matched, ok, "category %s", tc.category)
		require.Equal(t, tc.channel, channel, "category %s", tc.category)
	}
}

func TestResolveChannelNormalizesOtherCategories(t *testing.T) {
	channel, ok := ResolveChannel(" User_Error ")
	require.True(t, ok)
	require.Equal(t, ChannelOther, channel)

	channel, ok = ResolveChannel("OTHER")
	require.True(t, ok)
	require.Equal(t, ChannelOther, channel)

	// billing and mechanical matching is exact
	_, ok = ResolveChannel("Billing_Issue")
	require.False(t, ok)
	_, ok = ResolveChannel(" flat_tire ")
	require.False(t, ok)
}

func TestShouldFireRequiresResolvedCrossing(t *testing.T) {
	incident := &domain.Incident{Category: domain.CategoryBillingIssue}

	crossing := domain.NewStatusTransition(domain.IncidentStatusOpen, domain.IncidentStatusResolved)
	require.True(t, ShouldFire(ChannelBilling, crossing, incident))

	repeated := domain.NewStatusTransition(domain.IncidentStatusResolved, domain.IncidentStatusResolved)
	require.False(t, ShouldFire(ChannelBilling, repeated, incident))

	reopened := domain.NewStatusTransition(domain.IncidentStatusResolved, domain.IncidentStatusOpen)
	require.False(t, ShouldFire(ChannelBilling, reopened, incident))
}

func TestShouldFireBillingIgnoresNotes(t *testing.T) {
	crossing := domain.NewStatusTransition(domain.IncidentStatusOpen, domain.IncidentStatusResolved)
	incident := &domain.Incident{Category: domain.CategoryBillingIssue}
	require.True(t, ShouldFire(ChannelBilling, crossing, incident))
}

func TestShouldFireMechanicalRequiresNotes(t *testing.T) {
	crossing := domain.NewStatusTransition(domain.IncidentStatusOpen, domain.IncidentStatusResolved)

	incident := &domain.Incident{Category: domain.CategoryFlatTire}
	require.False(t, ShouldFire(ChannelMechanical, crossing, incident))

	incident.ResolutionNotes = strPtr("   ")
	require.False(t, ShouldFire(ChannelMechanical, crossing, incident), "blank notes do not count")

	incident.ResolutionNotes = strPtr("replaced inner tube")
	require.True(t, ShouldFire(ChannelMechanical, crossing, incident))
}

func TestShouldFireOtherRequiresNotes(t *testing.T) {
	crossing := domain.NewStatusTransition(domain.IncidentStatusInProgress, domain.IncidentStatusResolved)

	incident := &domain.Incident{Category: domain.CategoryUserError}
	require.False(t, ShouldFire(ChannelOther, crossing, incident))

	incident.ResolutionNotes = strPtr("user retrained on parking rules")
	require.True(t, ShouldFire(ChannelOther, crossing, incident))
}

func TestBuildPayloadTypes(t *testing.T) {
	incident := &domain.Incident{
		ID:          "inc-1",
		Number:      "PSP-260829-1234",
		Title:       "charge disputed",
		Description: "user disputes trip charge",
		Category:    domain.CategoryBillingIssue,
		CreatedBy:   "sistema",
	}
	resolvedAt := time.Now()

	payload := BuildPayload(ChannelBilling, incident, resolvedAt)
	require.Equal(t, "billing_resolved", payload.Type)
	require.Equal(t, "inc-1", payload.IncidentID)
	require.Equal(t, "PSP-260829-1234", payload.IncidentNumber)
	require.Equal(t, resolvedAt, payload.ResolvedAt)

	require.Equal(t, "mechanical_resolved", BuildPayload(ChannelMechanical, incident, resolvedAt).Type)
	require.Equal(t, "other_resolved", BuildPayload(ChannelOther, incident, resolvedAt).Type)
}

func TestRoute(t *testing.T) {
	crossing := domain.NewStatusTransition(domain.IncidentStatusOpen, domain.IncidentStatusResolved)
	resolvedAt := time.Now()

	billing := &domain.Incident{Category: domain.CategoryBillingIssue, Number: "PSP-1"}
	delivery, ok := Route(crossing, billing, resolvedAt)
	require.True(t, ok)
	require.Equal(t, ChannelBilling, delivery.Channel)
	require.Equal(t, "billing_resolved", delivery.Payload.Type)

	mechanicalNoNotes := &domain.Incident{Category: domain.CategoryAccident}
	_, ok = Route(crossing, mechanicalNoNotes, resolvedAt)
	require.False(t, ok)

	unmatched := &domain.Incident{Category: "vandalism", ResolutionNotes: strPtr("cleaned up")}
	_, ok = Route(crossing, unmatched, resolvedAt)
	require.False(t, ok)

	repeated := domain.NewStatusTransition(domain.IncidentStatusResolved, domain.IncidentStatusResolved)
	_, ok = Route(repeated, billing, resolvedAt)
	require.False(t, ok)
}
