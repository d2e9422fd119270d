package lp

import (
	"errors"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOptimal, "optimal"},
		{StatusInfeasible, "infeasible"},
		{StatusUnbounded, "unbounded"},
		{StatusError, "error"},
		{Status(42), "status(42)"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestInstanceValidate(t *testing.T) {
	valid := Instance{
		NumVars:  2,
		Obj:      []float64{0, 1},
		EqCoeffs: [][]float64{{1, -1}},
		EqRHS:    []float64{0},
		LeCoeffs: [][]float64{{1, 0}},
		LeRHS:    []float64{3},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid instance rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(in *Instance)
	}{
		{"no variables", func(in *Instance) { in.NumVars = 0 }},
		{"objective length", func(in *Instance) { in.Obj = []float64{1} }},
		{"eq rhs mismatch", func(in *Instance) { in.EqRHS = nil }},
		{"le rhs mismatch", func(in *Instance) { in.LeRHS = append(in.LeRHS, 1) }},
		{"eq row width", func(in *Instance) { in.EqCoeffs[0] = []float64{1} }},
		{"le row width", func(in *Instance) { in.LeCoeffs[0] = []float64{1, 2, 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Instance{
				NumVars:  2,
				Obj:      []float64{0, 1},
				EqCoeffs: [][]float64{{1, -1}},
				EqRHS:    []float64{0},
				LeCoeffs: [][]float64{{1, 0}},
				LeRHS:    []float64{3},
			}
			tt.mutate(&in)
			if err := in.Validate(); err == nil {
				t.Error("invalid instance accepted")
			}
		})
	}
}

func TestResultConstructors(t *testing.T) {
	if res := Optimal(4.5, []float64{2, 2.5}); res.Status != StatusOptimal || res.Objective != 4.5 {
		t.Errorf("Optimal = %+v", res)
	}
	if res := Infeasible(); res.Status != StatusInfeasible {
		t.Errorf("Infeasible = %+v", res)
	}
	if res := Unbounded(); res.Status != StatusUnbounded {
		t.Errorf("Unbounded = %+v", res)
	}
	cause := errors.New("numerics")
	if res := Errored(cause); res.Status != StatusError || !errors.Is(res.Err, cause) {
		t.Errorf("Errored = %+v", res)
	}
}
