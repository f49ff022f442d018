package domain

// StatusTransition captures the before/after status of a single update
// request. It must be built from the snapshot read before the write and the
// state produced by it; the detector never re-reads storage, so a stale
// "from" silently reports no crossing.
type StatusTransition struct {
	From IncidentStatus
	To   IncidentStatus
}

// NewStatusTransition builds the transition value for an update.
func NewStatusTransition(previous, next IncidentStatus) StatusTransition {
	return StatusTransition{From: previous, To: next}
}

// Crossed reports whether the transition entered the target status. A
// repeated update that leaves the status at the target does not cross.
func (t StatusTransition) Crossed(target IncidentStatus) bool {
	return t.From != target && t.To == target
}

// IntoResolved reports whether this update resolved the incident.
func (t StatusTransition) IntoResolved() bool {
	return t.Crossed(IncidentStatusResolved)
}
