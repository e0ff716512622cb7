package dome

// RotationState is the sphere rotation shared by the drag controller and the inertia loop.
// Only one of them drives it at a time.
type RotationState struct {
	current  Orientation
	applied  Orientation
	revision uint64
	maxTilt  float64
}

// NewRotationState creates a rotation state clamped to ±maxTilt.
func NewRotationState(maxTilt float64) *RotationState {
	return &RotationState{maxTilt: maxTilt}
}

// Current returns the rotation as last set.
func (s *RotationState) Current() Orientation {
	return s.current
}

// Applied returns the rotation last pushed to the rendered sphere transform.
func (s *RotationState) Applied() Orientation {
	return s.applied
}

// Revision increments every time the rendered transform changes.
func (s *RotationState) Revision() uint64 {
	return s.revision
}

// Set updates the rotation, clamping tilt. The rendered transform is only re-applied
// when the rounded angles change; Set reports whether that happened.
func (s *RotationState) Set(o Orientation) bool {
	o.Tilt = clamp(o.Tilt, -s.maxTilt, s.maxTilt)
	s.current = o
	if roundAngle(o.Tilt) == roundAngle(s.applied.Tilt) && roundAngle(o.Spin) == roundAngle(s.applied.Spin) {
		return false
	}
	s.applied = o
	s.revision++
	return true
}

// Reapply forces the current rotation onto the rendered transform.
func (s *RotationState) Reapply() {
	s.applied = s.current
	s.revision++
}

// Normalize wraps spin into (-180, 180] without changing the visible orientation.
func (s *RotationState) Normalize() {
	s.current.Spin = WrapSigned(s.current.Spin)
	s.applied = s.current
}
