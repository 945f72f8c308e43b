package simulated

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"fishsense/internal/device"
	"fishsense/internal/measure"
)

// MarkerColor paints the fish in rendered frames.
var MarkerColor = [3]byte{255, 140, 0}

var waterColor = [3]byte{20, 60, 90}

// confidenceHigh matches the highest confidence level of a depth sensor.
const confidenceHigh = 2

// Scene describes what the simulated camera sees: a flat target at a fixed
// distance with an optional fish drawn as a horizontal bar.
type Scene struct {
	Width       int
	Height      int
	DepthWidth  int
	DepthHeight int
	FocalLength float32 // pixels
	Distance    float32 // meters

	FishVisible bool
	FishRow     int
	FishStartX  int
	FishEndX    int
	FishHeight  int
}

// DefaultScene is a 640x480 frame with a 200 px fish one meter away.
func DefaultScene() Scene {
	return Scene{
		Width:       640,
		Height:      480,
		DepthWidth:  256,
		DepthHeight: 192,
		FocalLength: 500,
		Distance:    1,
		FishVisible: true,
		FishRow:     240,
		FishStartX:  220,
		FishEndX:    420,
		FishHeight:  9,
	}
}

// Intrinsics is the pinhole camera matrix of the RGB frame.
func (s Scene) Intrinsics() [3][3]float32 {
	return [3][3]float32{
		{s.FocalLength, 0, float32(s.Width) / 2},
		{0, s.FocalLength, float32(s.Height) / 2},
		{0, 0, 1},
	}
}

// FishLength is the true length of the drawn fish in meters.
func (s Scene) FishLength() float32 {
	if !s.FishVisible {
		return 0
	}
	return float32(s.FishEndX-s.FishStartX) / s.FocalLength * s.Distance
}

// Render draws one frame.
func (s Scene) Render(at time.Time) *device.Photo {
	rgb := make([]byte, s.Width*s.Height*3)
	top := s.FishRow - s.FishHeight/2
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := waterColor
			if s.FishVisible && y >= top && y < top+s.FishHeight && x >= s.FishStartX && x <= s.FishEndX {
				c = MarkerColor
			}
			i := (y*s.Width + x) * 3
			rgb[i], rgb[i+1], rgb[i+2] = c[0], c[1], c[2]
		}
	}

	samples := s.DepthWidth * s.DepthHeight
	depth := make([]byte, samples*4)
	bits := math.Float32bits(s.Distance)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint32(depth[i*4:], bits)
	}
	confidence := make([]byte, samples)
	for i := range confidence {
		confidence[i] = confidenceHigh
	}

	return &device.Photo{
		CapturedAt:       at,
		RGB:              rgb,
		RGBWidth:         s.Width,
		RGBHeight:        s.Height,
		Depth:            depth,
		DepthWidth:       s.DepthWidth,
		DepthHeight:      s.DepthHeight,
		Confidence:       confidence,
		ConfidenceWidth:  s.DepthWidth,
		ConfidenceHeight: s.DepthHeight,
		Intrinsics:       s.Intrinsics(),
	}
}

// Measurer finds MarkerColor pixels in a frame and measures the span between
// the leftmost and rightmost ones in camera space.
type Measurer struct{}

func (Measurer) ComputeLength(in measure.Input) measure.Result {
	if in.RGBWidth <= 0 || in.RGBHeight <= 0 || len(in.RGB) != in.RGBWidth*in.RGBHeight*3 {
		return measure.Failed(fmt.Sprintf("rgb buffer of %d bytes does not match %dx%d", len(in.RGB), in.RGBWidth, in.RGBHeight))
	}
	if in.DepthWidth <= 0 || in.DepthHeight <= 0 || len(in.Depth) != in.DepthWidth*in.DepthHeight*4 {
		return measure.Failed(fmt.Sprintf("depth buffer of %d bytes does not match %dx%d", len(in.Depth), in.DepthWidth, in.DepthHeight))
	}

	left, right := -1, -1
	leftRow, rightRow := 0, 0
	for y := 0; y < in.RGBHeight; y++ {
		for x := 0; x < in.RGBWidth; x++ {
			i := (y*in.RGBWidth + x) * 3
			if in.RGB[i] != MarkerColor[0] || in.RGB[i+1] != MarkerColor[1] || in.RGB[i+2] != MarkerColor[2] {
				continue
			}
			if left < 0 || x < left {
				left, leftRow = x, y
			}
			if x > right {
				right, rightRow = x, y
			}
		}
	}
	if left < 0 {
		return measure.Result{FishFound: false}
	}

	l := measure.Point2D{X: float32(left), Y: float32(leftRow)}
	r := measure.Point2D{X: float32(right), Y: float32(rightRow)}
	pl := measure.Unproject(in.IntrinsicsInvT, l.X, l.Y, depthAt(in, left, leftRow))
	pr := measure.Unproject(in.IntrinsicsInvT, r.X, r.Y, depthAt(in, right, rightRow))

	var sum float64
	for k := 0; k < 3; k++ {
		d := float64(pr[k] - pl[k])
		sum += d * d
	}

	return measure.Result{
		FishFound: true,
		Left:      l,
		Right:     r,
		Length:    float32(math.Sqrt(sum)),
	}
}

// depthAt samples the depth map at the position matching an RGB pixel.
func depthAt(in measure.Input, x, y int) float32 {
	dx := x * in.DepthWidth / in.RGBWidth
	dy := y * in.DepthHeight / in.RGBHeight
	i := (dy*in.DepthWidth + dx) * 4
	return math.Float32frombits(binary.LittleEndian.Uint32(in.Depth[i:]))
}
