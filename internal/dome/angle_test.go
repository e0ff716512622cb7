package dome

import (
	"math"
	"testing"
)

func TestWrapSigned(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{720, 0},
		{-30, -30},
	}
	for _, tt := range tests {
		if got := WrapSigned(tt.input); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("WrapSigned(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNormalize360(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{-30, 330},
		{360, 0},
		{725, 5},
		{-720, 0},
	}
	for _, tt := range tests {
		if got := normalize360(tt.input); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("normalize360(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestCounterRotation(t *testing.T) {
	tests := []struct {
		name         string
		base, global Orientation
		want         Orientation
	}{
		{"simple", Orientation{Tilt: 10, Spin: 30}, Orientation{Tilt: 2, Spin: 100}, Orientation{Tilt: -12, Spin: -130}},
		{"folds past -180", Orientation{Spin: 150}, Orientation{Spin: 100}, Orientation{Spin: 110}},
		{"negative slot spin", Orientation{Spin: -30}, Orientation{}, Orientation{Spin: 30}},
		{"exactly -180 stays", Orientation{Spin: 90}, Orientation{Spin: 90}, Orientation{Spin: -180}},
		{"full turn", Orientation{Spin: 200}, Orientation{Spin: 160}, Orientation{Spin: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CounterRotation(tt.base, tt.global)
			if math.Abs(got.Tilt-tt.want.Tilt) > 1e-9 || math.Abs(got.Spin-tt.want.Spin) > 1e-9 {
				t.Errorf("CounterRotation = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRotationState(t *testing.T) {
	s := NewRotationState(5)

	if !s.Set(Orientation{Tilt: 12, Spin: 30}) {
		t.Fatal("first Set should apply")
	}
	if got := s.Current().Tilt; got != 5 {
		t.Errorf("tilt = %v, want clamped 5", got)
	}

	rev := s.Revision()
	if s.Set(Orientation{Tilt: 5, Spin: 30.0001}) {
		t.Error("sub-precision change should not re-apply")
	}
	if s.Revision() != rev {
		t.Error("revision changed without re-apply")
	}
	if s.Current().Spin != 30.0001 {
		t.Error("current should track the unrounded value")
	}

	s.Set(Orientation{Spin: 190})
	s.Normalize()
	if got := s.Current().Spin; math.Abs(got+170) > 1e-9 {
		t.Errorf("normalized spin = %v, want -170", got)
	}
	if s.Applied() != s.Current() {
		t.Error("Normalize should re-apply")
	}

	rev = s.Revision()
	s.Reapply()
	if s.Revision() != rev+1 {
		t.Error("Reapply should bump the revision")
	}
}
