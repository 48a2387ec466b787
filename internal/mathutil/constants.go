package mathutil

// Thresholds shared by the quad constructor, editor and tracker.
const (
	// DuplicateEpsilon is the minimum distance between two picked points.
	DuplicateEpsilon = 1e-4
	// CollinearEpsilon is the minimum squared length of a candidate plane normal.
	CollinearEpsilon = 1e-8
	// BasisEpsilon is the minimum squared length of a basis axis or extent
	// before normalizing. Compare it against LenSq.
	BasisEpsilon = 1e-12
	// PlaneEpsilon bounds the off-plane distance tolerated by coplanarity checks.
	PlaneEpsilon = 1e-6
	// ParallelEpsilon rejects ray/plane intersections that are numerically parallel.
	ParallelEpsilon = 1e-9
)

// World axes. Y is up, X is right, -Z is forward for a camera at identity.
var (
	WorldUp    = Vec3Y
	WorldRight = Vec3X
)
