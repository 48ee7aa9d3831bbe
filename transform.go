package village

import (
	"math"
	"slices"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// ItemMatrix returns the affine matrix that maps an item's local box
// (0,0)-(w,h) into world space. The pivot is the centre of the box and the
// composition order is
//
//	Translate(-w/2, -h/2) -> Skew -> Scale -> Rotate -> Scale(extra) -> Translate(X+w/2, Y+h/2)
//
// extra is a uniform scale applied on top of the item's own transform, used
// for the spawn highlight and the drag lift. Angles are in degrees. Unset
// scales count as 1.
//
// Matrix layout is [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func ItemMatrix(it *Item, extra float64) [6]float64 {
	size := spriteSize(it.Type)
	tr := it.Data.Transform
	sx, sy := tr.ScaleX, tr.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if extra == 0 {
		extra = 1
	}

	pivot := [6]float64{1, 0, 0, 1, -size.X / 2, -size.Y / 2}
	skew := [6]float64{1, math.Tan(deg(tr.SkewY)), math.Tan(deg(tr.SkewX)), 1, 0, 0}
	scale := [6]float64{sx, 0, 0, sy, 0, 0}
	sin, cos := math.Sincos(deg(tr.Rotate))
	rot := [6]float64{cos, sin, -sin, cos, 0, 0}
	lift := [6]float64{extra, 0, 0, extra, it.X + size.X/2, it.Y + size.Y/2}

	m := multiplyAffine(skew, pivot)
	m = multiplyAffine(scale, m)
	m = multiplyAffine(rot, m)
	return multiplyAffine(lift, m)
}

func deg(d float64) float64 { return d * math.Pi / 180 }

// ItemBounds returns the world-space axis-aligned bounding box of an item's
// transformed sprite box.
func ItemBounds(it *Item) Rect {
	size := spriteSize(it.Type)
	return worldAABB(ItemMatrix(it, 1), size.X, size.Y)
}

// HitItem reports whether the world point (wx, wy) falls on the item's
// transformed sprite box.
func HitItem(it *Item, wx, wy, extra float64) bool {
	size := spriteSize(it.Type)
	lx, ly := transformPoint(invertAffine(ItemMatrix(it, extra)), wx, wy)
	return lx >= 0 && lx <= size.X && ly >= 0 && ly <= size.Y
}

// HitTest returns the id of the topmost item at (wx, wy), or "" when the
// point is on the background. highlighted is the id drawn on top, if any.
func HitTest(items []Item, wx, wy float64, highlighted string) string {
	order := DrawOrder(items, highlighted)
	for i := len(order) - 1; i >= 0; i-- {
		it := &items[order[i]]
		extra := 1.0
		if it.ID == highlighted {
			extra = HighlightScale
		}
		if HitItem(it, wx, wy, extra) {
			return it.ID
		}
	}
	return ""
}

// ZIndex returns the paint layer of an item. Higher values paint later.
func ZIndex(it *Item, highlighted bool) int {
	y := int(math.Floor(it.Y))
	switch {
	case highlighted:
		return 20000
	case it.Type == TypeDoll:
		return 10000 + y
	case it.Type.IsGrass():
		return 9000 + y
	case it.Type.IsHouse():
		return 10
	case it.Type.IsTree():
		return 20
	default:
		return 30 + y
	}
}

// DrawOrder returns indexes into items in paint order. Items on the same
// layer keep their store order.
func DrawOrder(items []Item, highlighted string) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		za := ZIndex(&items[a], items[a].ID == highlighted)
		zb := ZIndex(&items[b], items[b].ID == highlighted)
		return za - zb
	})
	return order
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// worldAABB computes the axis-aligned bounding box of a w×h rectangle
// transformed by m.
func worldAABB(m [6]float64, w, h float64) Rect {
	x0, y0 := transformPoint(m, 0, 0)
	x1, y1 := transformPoint(m, w, 0)
	x2, y2 := transformPoint(m, w, h)
	x3, y3 := transformPoint(m, 0, h)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
