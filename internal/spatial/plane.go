package spatial

import (
	"fmt"
	"strings"
)

// Plane selects two world axes for flat drawings.
type Plane int

const (
	PlaneXZ Plane = iota
	PlaneXY
	PlaneYZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneYZ:
		return "yz"
	default:
		return "xz"
	}
}

// Project drops the axis normal to the plane. The second coordinate points
// up in drawings.
func (p Plane) Project(v Vec) (float64, float64) {
	switch p {
	case PlaneXY:
		return v.X, v.Y
	case PlaneYZ:
		return v.Y, v.Z
	default:
		return v.X, v.Z
	}
}

func ParsePlane(s string) (Plane, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xz":
		return PlaneXZ, nil
	case "xy":
		return PlaneXY, nil
	case "yz":
		return PlaneYZ, nil
	default:
		return PlaneXZ, fmt.Errorf("unknown plane %q (want xz, xy or yz)", s)
	}
}
