package motion

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func stateVec(x, y, vx, vy, ax, ay, z, l, w, h, yaw, yawRate float64) *mat.VecDense {
	return mat.NewVecDense(StateDim, []float64{x, y, vx, vy, ax, ay, z, l, w, h, yaw, yawRate})
}

func TestCVTransition(t *testing.T) {
	s := stateVec(0, 0, 1, 2, 0, 0, 1.5, 4, 2, 1.7, 0, 0)
	next := CV{}.Transition(s, 1.0, nil)
	if math.Abs(next.AtVec(IX)-1) > 1e-9 || math.Abs(next.AtVec(IY)-2) > 1e-9 {
		t.Errorf("unexpected position: x=%v y=%v", next.AtVec(IX), next.AtVec(IY))
	}
	if next.AtVec(IYawRate) != 0 {
		t.Errorf("expected yaw rate forced to 0, got %v", next.AtVec(IYawRate))
	}
}

func TestCPTransitionIsStatic(t *testing.T) {
	s := stateVec(3, 4, 0.1, 0.1, 5, 5, 0, 1, 1, 1, 0.3, 0.1)
	next := CP{}.Transition(s, 2.0, nil)
	if next.AtVec(IX) != 3 || next.AtVec(IY) != 4 {
		t.Errorf("CP should not move position")
	}
	if next.AtVec(IAX) != 0 || next.AtVec(IAY) != 0 {
		t.Errorf("CP should force acceleration to 0")
	}
}

func TestCATransition(t *testing.T) {
	s := stateVec(0, 0, 1, 0, 2, 0, 0, 1, 1, 1, 0, 0)
	next := CA{}.Transition(s, 1.0, nil)
	wantX := 1.0 + 0.5*2.0
	if math.Abs(next.AtVec(IX)-wantX) > 1e-9 {
		t.Errorf("expected x=%v, got %v", wantX, next.AtVec(IX))
	}
	if math.Abs(next.AtVec(IVX)-3.0) > 1e-9 {
		t.Errorf("expected vx=3, got %v", next.AtVec(IVX))
	}
}

func TestCTRVStraightLineLimit(t *testing.T) {
	s := stateVec(0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 0, 0)
	next := CTRV{}.Transition(s, 1.0, nil)
	if math.Abs(next.AtVec(IX)-1) > 1e-6 {
		t.Errorf("expected straight line x=1, got %v", next.AtVec(IX))
	}
}

func TestCTRVTurning(t *testing.T) {
	s := stateVec(0, 0, 1, 0, 0, 0, 0, 1, 1, 1, 0, math.Pi/2)
	next := CTRV{}.Transition(s, 1.0, nil)
	// after a quarter turn at speed 1, the object should have moved off the x-axis
	if math.Abs(next.AtVec(IY)) < 1e-6 {
		t.Errorf("expected nonzero y displacement when turning, got %v", next.AtVec(IY))
	}
}

func TestMeasurementFunctionSharedAcrossModels(t *testing.T) {
	s := stateVec(1, 2, 0, 0, 0, 0, 3, 4, 5, 6, 0.5, 0)
	models := []Model{CP{}, CV{}, CA{}, CTRV{}}
	for _, m := range models {
		z := m.Measurement(s, nil)
		if z.Len() != MeasurementDim {
			t.Fatalf("%s: expected measurement dim %d, got %d", m.Name(), MeasurementDim, z.Len())
		}
		if z.AtVec(MX) != 1 || z.AtVec(MY) != 2 || z.AtVec(MZ) != 3 {
			t.Errorf("%s: unexpected measurement %v", m.Name(), mat.Formatted(z.T()))
		}
	}
}

func TestBankOrdersByPriority(t *testing.T) {
	bank := Bank([]Kind{KindCP, KindCTRV, KindCV})
	if len(bank) != 3 {
		t.Fatalf("expected 3 models, got %d", len(bank))
	}
	if bank[0].Name() != "CV" || bank[1].Name() != "CTRV" || bank[2].Name() != "CP" {
		names := make([]string, len(bank))
		for i, m := range bank {
			names[i] = m.Name()
		}
		t.Errorf("unexpected bank order: %v", names)
	}
}
