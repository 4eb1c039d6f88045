package dispatch

import "math"

// DistanceFunc weighs a supplying store against the requesting store for
// the optimizer. The weight only needs to be deterministic and derived from
// a total order; it is not assumed to be geographic.
type DistanceFunc func(from, to string) float64

// LexicographicDistance is the default weight: the absolute magnitude of a
// byte-wise lexicographic comparison of the two location strings.
func LexicographicDistance(from, to string) float64 {
	for i := 0; i < len(from) && i < len(to); i++ {
		if from[i] != to[i] {
			return math.Abs(float64(int(from[i]) - int(to[i])))
		}
	}
	return math.Abs(float64(len(from) - len(to)))
}
