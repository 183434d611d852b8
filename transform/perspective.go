// Package transform maps between a symbol's module grid and picture pixels
// and samples the picture through that mapping.
package transform

import "github.com/ericlevine/qrstudio"

// Perspective is a planar homography. h holds the 3x3 matrix row-major so
// that (x', y', w) = h * (x, y, 1).
type Perspective struct {
	h [9]float64
}

// SquareToQuad maps the unit square (0,0) (1,0) (1,1) (0,1) onto q, in
// that order.
func SquareToQuad(q [4]qrstudio.Point) *Perspective {
	dx3 := q[0].X - q[1].X + q[2].X - q[3].X
	dy3 := q[0].Y - q[1].Y + q[2].Y - q[3].Y
	if dx3 == 0 && dy3 == 0 {
		return &Perspective{h: [9]float64{
			q[1].X - q[0].X, q[2].X - q[1].X, q[0].X,
			q[1].Y - q[0].Y, q[2].Y - q[1].Y, q[0].Y,
			0, 0, 1,
		}}
	}
	dx1, dx2 := q[1].X-q[2].X, q[3].X-q[2].X
	dy1, dy2 := q[1].Y-q[2].Y, q[3].Y-q[2].Y
	den := dx1*dy2 - dx2*dy1
	g := (dx3*dy2 - dx2*dy3) / den
	h := (dx1*dy3 - dx3*dy1) / den
	return &Perspective{h: [9]float64{
		q[1].X - q[0].X + g*q[1].X, q[3].X - q[0].X + h*q[3].X, q[0].X,
		q[1].Y - q[0].Y + g*q[1].Y, q[3].Y - q[0].Y + h*q[3].Y, q[0].Y,
		g, h, 1,
	}}
}

// QuadToSquare is the inverse of SquareToQuad, up to scale.
func QuadToSquare(q [4]qrstudio.Point) *Perspective {
	return SquareToQuad(q).adjugate()
}

// QuadToQuad maps from onto to corner by corner.
func QuadToQuad(from, to [4]qrstudio.Point) *Perspective {
	return SquareToQuad(to).times(QuadToSquare(from))
}

// Apply maps one point.
func (p *Perspective) Apply(pt qrstudio.Point) qrstudio.Point {
	h := &p.h
	w := h[6]*pt.X + h[7]*pt.Y + h[8]
	return qrstudio.Point{
		X: (h[0]*pt.X + h[1]*pt.Y + h[2]) / w,
		Y: (h[3]*pt.X + h[4]*pt.Y + h[5]) / w,
	}
}

// ApplyAll maps interleaved x, y pairs in place.
func (p *Perspective) ApplyAll(xy []float64) {
	h := &p.h
	for i := 0; i+1 < len(xy); i += 2 {
		x, y := xy[i], xy[i+1]
		w := h[6]*x + h[7]*y + h[8]
		xy[i] = (h[0]*x + h[1]*y + h[2]) / w
		xy[i+1] = (h[3]*x + h[4]*y + h[5]) / w
	}
}

func (p *Perspective) adjugate() *Perspective {
	h := &p.h
	return &Perspective{h: [9]float64{
		h[4]*h[8] - h[5]*h[7], h[2]*h[7] - h[1]*h[8], h[1]*h[5] - h[2]*h[4],
		h[5]*h[6] - h[3]*h[8], h[0]*h[8] - h[2]*h[6], h[2]*h[3] - h[0]*h[5],
		h[3]*h[7] - h[4]*h[6], h[1]*h[6] - h[0]*h[7], h[0]*h[4] - h[1]*h[3],
	}}
}

// times returns p * o, which applies o first.
func (p *Perspective) times(o *Perspective) *Perspective {
	var r Perspective
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += p.h[i*3+k] * o.h[k*3+j]
			}
			r.h[i*3+j] = sum
		}
	}
	return &r
}
