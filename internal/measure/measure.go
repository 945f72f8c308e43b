// Package measure is the boundary to the fish-length routine.
package measure

import (
	"errors"
	"math"
)

// Point2D is a pixel coordinate in the RGB frame.
type Point2D struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Input is one frame handed to a Measurer.
type Input struct {
	RGB       []byte
	RGBWidth  int
	RGBHeight int

	Depth       []byte
	DepthWidth  int
	DepthHeight int

	// IntrinsicsInvT is the inverted, transposed 3x3 camera matrix,
	// flattened row-major.
	IntrinsicsInvT [9]float32
}

// Result of a measurement pass. When Error is set the other fields carry no
// meaning and must not be persisted.
type Result struct {
	FishFound bool
	Left      Point2D
	Right     Point2D
	Length    float32 // meters
	Error     *string
}

// Failed builds a Result that carries only an error message.
func Failed(msg string) Result {
	return Result{Error: &msg}
}

// Measurer estimates the length of a fish in a frame.
type Measurer interface {
	ComputeLength(in Input) Result
}

// Func adapts a function to Measurer.
type Func func(in Input) Result

func (f Func) ComputeLength(in Input) Result {
	return f(in)
}

var ErrSingularIntrinsics = errors.New("camera intrinsics are not invertible")

// InvertTranspose returns (K^-1)^T flattened row-major.
func InvertTranspose(k [3][3]float32) ([9]float32, error) {
	var out [9]float32

	a, b, c := float64(k[0][0]), float64(k[0][1]), float64(k[0][2])
	d, e, f := float64(k[1][0]), float64(k[1][1]), float64(k[1][2])
	g, h, i := float64(k[2][0]), float64(k[2][1]), float64(k[2][2])

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if math.Abs(det) < 1e-12 {
		return out, ErrSingularIntrinsics
	}

	// Cofactor matrix C; K^-1 = C^T / det, so (K^-1)^T = C / det.
	cof := [9]float64{
		e*i - f*h, -(d*i - f*g), d*h - e*g,
		-(b*i - c*h), a*i - c*g, -(a*h - b*g),
		b*f - c*e, -(a*f - c*d), a*e - b*d,
	}
	for n, v := range cof {
		out[n] = float32(v / det)
	}
	return out, nil
}

// Unproject maps pixel (u, v) at the given depth into camera space using a
// matrix produced by InvertTranspose.
func Unproject(invT [9]float32, u, v, depth float32) [3]float32 {
	var p [3]float32
	for r := 0; r < 3; r++ {
		// (K^-1)[r][c] == invT[c*3+r]
		p[r] = (invT[r]*u + invT[3+r]*v + invT[6+r]) * depth
	}
	return p
}
