package cluster

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/riyaghate/datacenter-detection/utils"
)

// metersPerDegree is the rough length of one degree of latitude. Footprints
// are a few hundred meters across at most, so a local equirectangular frame
// is plenty accurate for overlap ratios.
const metersPerDegree = 111000.

// project maps a lon/lat ring into a planar frame measured in meters,
// centered on the reference point. Longitude shrinks by cos(lat).
func project(ring orb.Ring, ref orb.Point) orb.Ring {
	cosLat := math.Cos(utils.DegToRad(ref.Lat()))
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = orb.Point{
			(p.Lon() - ref.Lon()) * metersPerDegree * cosLat,
			(p.Lat() - ref.Lat()) * metersPerDegree,
		}
	}
	return out
}

// shoelace returns the signed area of the polygon described by points.
// A closing point equal to the first is not required.
func shoelace(points []orb.Point) float64 {
	area := 0.
	for i, p := range points {
		q := points[(i+1)%len(points)]
		area += p.X()*q.Y() - q.X()*p.Y()
	}
	return area / 2
}

func cross(a, b, p orb.Point) float64 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

// lineIntersect returns the intersection of segment p1-p2 with the infinite
// line through a and b.
func lineIntersect(p1, p2, a, b orb.Point) orb.Point {
	a1 := p2.Y() - p1.Y()
	b1 := p1.X() - p2.X()
	c1 := a1*p1.X() + b1*p1.Y()
	a2 := b.Y() - a.Y()
	b2 := a.X() - b.X()
	c2 := a2*a.X() + b2*a.Y()
	det := a1*b2 - a2*b1
	if det == 0 {
		return p1
	}
	return orb.Point{(b2*c1 - b1*c2) / det, (a1*c2 - a2*c1) / det}
}

// clipArea returns the area of the intersection of two convex rings, via a
// Sutherland-Hodgman clip of subject against clip. Both rings are closed.
func clipArea(subject, clip orb.Ring) float64 {
	out := append([]orb.Point{}, subject[:len(subject)-1]...)
	edges := clip[:len(clip)-1]
	sign := 1.
	if shoelace(edges) < 0 {
		sign = -1.
	}
	for i := range edges {
		if len(out) == 0 {
			return 0
		}
		a := edges[i]
		b := edges[(i+1)%len(edges)]
		in := out
		out = nil
		for j := range in {
			cur := in[j]
			next := in[(j+1)%len(in)]
			curIn := sign*cross(a, b, cur) >= 0
			nextIn := sign*cross(a, b, next) >= 0
			switch {
			case curIn && nextIn:
				out = append(out, next)
			case curIn && !nextIn:
				out = append(out, lineIntersect(cur, next, a, b))
			case !curIn && nextIn:
				out = append(out, lineIntersect(cur, next, a, b), next)
			}
		}
	}
	return math.Abs(shoelace(out))
}

// IoU computes the intersection-over-union of two footprint rings. The
// rings are projected into a shared local planar frame first so the areas
// are comparable.
func IoU(a, b orb.Ring) float64 {
	ref := a[0]
	pa := project(a, ref)
	pb := project(b, ref)
	intersection := clipArea(pa, pb)
	if intersection <= 0 {
		return 0
	}
	union := math.Abs(shoelace(pa[:len(pa)-1])) + math.Abs(shoelace(pb[:len(pb)-1])) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// segmentsCross reports whether segments p1-p2 and p3-p4 properly cross.
func segmentsCross(p1, p2, p3, p4 orb.Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// simpleQuad reports whether the ring is a closed quadrilateral with
// nonzero area and no self-intersection.
func simpleQuad(ring orb.Ring) bool {
	if len(ring) != 5 || ring[0] != ring[4] {
		return false
	}
	if segmentsCross(ring[0], ring[1], ring[2], ring[3]) {
		return false
	}
	if segmentsCross(ring[1], ring[2], ring[3], ring[0]) {
		return false
	}
	return shoelace(ring[:4]) != 0
}
