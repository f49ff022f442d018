package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitionCrossed(t *testing.T) {
	cases := []struct {
		name    string
		from    IncidentStatus
		to      IncidentStatus
		crossed bool
	}{
		{"open to resolved", IncidentStatusOpen, IncidentStatusResolved, true},
		{"in_progress to resolved", IncidentStatusInProgress, IncidentStatusResolved, true},
		{"resolved to resolved", IncidentStatusResolved, IncidentStatusResolved, false},
		{"open to in_progress", IncidentStatusOpen, IncidentStatusInProgress, false},
		{"resolved to open", IncidentStatusResolved, IncidentStatusOpen, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transition := NewStatusTransition(tc.from, tc.to)
			require.Equal(t, tc.crossed, transition.IntoResolved())
		})
	}
}

func TestStatusTransitionCrossedArbitraryTarget(t *testing.T) {
	transition := NewStatusTransition(IncidentStatusOpen, IncidentStatusInProgress)
	require.True(t, transition.Crossed(IncidentStatusInProgress))
	require.False(t, transition.Crossed(IncidentStatusResolved))

	repeated := NewStatusTransition(IncidentStatusInProgress, IncidentStatusInProgress)
	require.False(t, repeated.Crossed(IncidentStatusInProgress))
}
