package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestIdentity_Apply(t *testing.T) {
	p := Pt3(1.5, -2, 3)
	if got := Identity().Apply(p); got != p {
		t.Errorf("identity moved point: got %v, want %v", got, p)
	}
}

func TestNewPose2D_Rotation(t *testing.T) {
	pose := NewPose2D(1, 2, math.Pi/2)
	got := pose.Apply(Pt2(1, 0))
	want := Pt2(1, 3)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
}

func TestInverse_RoundTrip(t *testing.T) {
	poses := []Transform{
		NewPose2D(3, -4, 0.7),
		NewPose3D(1, 2, 3, 0.1, -0.4, 2.2),
		Translate(Pt3(-5, 0.25, 9)),
	}
	p := Pt3(0.3, -7.1, 2.4)
	for _, pose := range poses {
		if !pose.IsValid() {
			t.Fatalf("pose %v should be a valid rigid transform", pose.T)
		}
		got := pose.Inverse().Apply(pose.Apply(p))
		if diff := cmp.Diff(p, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
		if !pose.Inverse().IsValid() {
			t.Errorf("inverse of %v is not a rigid transform", pose.T)
		}
	}
}

func TestIsValid_RejectsScaledMatrix(t *testing.T) {
	pose := Identity()
	pose.T[0] = 2
	if pose.IsValid() {
		t.Error("expected scaled matrix to be rejected")
	}
}

func TestPoint_IsFinite(t *testing.T) {
	if !Pt2(1, 2).IsFinite() {
		t.Error("finite point reported non-finite")
	}
	if Pt2(math.NaN(), 0).IsFinite() {
		t.Error("NaN point reported finite")
	}
	if Pt3(0, 0, math.Inf(-1)).IsFinite() {
		t.Error("Inf point reported finite")
	}
}
