package measure

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestInvertTranspose_PinholeCamera(t *testing.T) {
	k := [3][3]float32{
		{500, 0, 320},
		{0, 400, 240},
		{0, 0, 1},
	}

	got, err := InvertTranspose(k)
	if err != nil {
		t.Fatalf("InvertTranspose failed: %v", err)
	}

	// K^-1 = [[1/500, 0, -320/500], [0, 1/400, -240/400], [0, 0, 1]], transposed.
	want := [9]float32{
		1.0 / 500, 0, 0,
		0, 1.0 / 400, 0,
		-320.0 / 500, -240.0 / 400, 1,
	}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("element %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestInvertTranspose_Singular(t *testing.T) {
	k := [3][3]float32{{1, 2, 3}, {2, 4, 6}, {0, 0, 1}}
	if _, err := InvertTranspose(k); err != ErrSingularIntrinsics {
		t.Errorf("Expected ErrSingularIntrinsics, got %v", err)
	}
}

func TestUnproject_PrincipalPoint(t *testing.T) {
	k := [3][3]float32{{500, 0, 320}, {0, 500, 240}, {0, 0, 1}}
	inv, _ := InvertTranspose(k)

	p := Unproject(inv, 320, 240, 2)
	if !approx(p[0], 0) || !approx(p[1], 0) || !approx(p[2], 2) {
		t.Errorf("Principal point should map onto the optical axis, got %v", p)
	}

	q := Unproject(inv, 820, 240, 2)
	if !approx(q[0], 2) {
		t.Errorf("Expected x=2 for a 500px offset at depth 2, got %f", q[0])
	}
}

func TestFailed(t *testing.T) {
	r := Failed("depth map unavailable")
	if r.Error == nil || *r.Error != "depth map unavailable" {
		t.Errorf("Unexpected result %+v", r)
	}

	var m Measurer = Func(func(Input) Result { return Result{FishFound: true, Length: 0.3} })
	if got := m.ComputeLength(Input{}); !got.FishFound || got.Length != 0.3 {
		t.Errorf("Func adapter returned %+v", got)
	}
}
