package dome

import (
	"math"
	"time"
)

// InertiaState is the transient state of one coast after a drag release.
type InertiaState struct {
	VX, VY float64
	Frames int
}

// Inertia keeps the sphere rotating after a release, decaying each frame.
type Inertia struct {
	cfg     InertiaConfig
	maxTilt float64
	loop    *FrameLoop
	rot     *RotationState

	frame FrameID
	state *InertiaState

	// OnStop is called when a coast ends on its own (threshold or frame ceiling).
	OnStop func(InertiaState)
}

// NewInertia creates a simulator driving rot on the frame loop.
func NewInertia(cfg InertiaConfig, maxTilt float64, loop *FrameLoop, rot *RotationState) *Inertia {
	return &Inertia{cfg: cfg, maxTilt: maxTilt, loop: loop, rot: rot}
}

func (in *Inertia) dampening() float64 {
	return clamp(in.cfg.Dampening, 0, 1)
}

// Friction returns the per-frame velocity multiplier.
func (in *Inertia) Friction() float64 {
	return in.cfg.FrictionBase + in.cfg.FrictionRange*in.dampening()
}

// StopThreshold returns the velocity under which the coast ends.
func (in *Inertia) StopThreshold() float64 {
	return in.cfg.StopBase - in.cfg.StopRange*in.dampening()
}

// MaxFrames returns the frame ceiling of one coast.
func (in *Inertia) MaxFrames() int {
	return int(math.Round(in.cfg.MaxFramesBase + in.cfg.MaxFramesRange*in.dampening()))
}

// Running reports whether a coast is in flight.
func (in *Inertia) Running() bool {
	return in.state != nil
}

// State returns a copy of the in-flight coast, if any.
func (in *Inertia) State() (InertiaState, bool) {
	if in.state == nil {
		return InertiaState{}, false
	}
	return *in.state, true
}

// Start begins a coast with the release velocity in pixels per millisecond,
// cancelling any coast already in flight.
func (in *Inertia) Start(vx, vy float64) {
	in.Stop()
	in.state = &InertiaState{
		VX: clamp(vx, -in.cfg.MaxVelocity, in.cfg.MaxVelocity) * in.cfg.VelocityScale,
		VY: clamp(vy, -in.cfg.MaxVelocity, in.cfg.MaxVelocity) * in.cfg.VelocityScale,
	}
	in.frame = in.loop.Request(in.step)
}

// Stop cancels the in-flight coast.
func (in *Inertia) Stop() {
	if in.frame != 0 {
		in.loop.Cancel(in.frame)
		in.frame = 0
	}
	in.state = nil
}

func (in *Inertia) step(time.Time) {
	s := in.state
	if s == nil {
		return
	}
	in.frame = 0

	friction := in.Friction()
	s.VX *= friction
	s.VY *= friction

	stop := in.StopThreshold()
	if math.Abs(s.VX) < stop && math.Abs(s.VY) < stop {
		in.finish()
		return
	}
	s.Frames++
	if s.Frames > in.MaxFrames() {
		in.finish()
		return
	}

	div := in.cfg.AngleDivisor
	if div == 0 {
		div = 200
	}
	cur := in.rot.Current()
	in.rot.Set(Orientation{
		Tilt: clamp(cur.Tilt-s.VY/div, -in.maxTilt, in.maxTilt),
		Spin: WrapSigned(cur.Spin + s.VX/div),
	})
	in.frame = in.loop.Request(in.step)
}

func (in *Inertia) finish() {
	final := *in.state
	in.state = nil
	if in.OnStop != nil {
		in.OnStop(final)
	}
}
