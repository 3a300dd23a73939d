package rng

import "math"

// boxMuller converts two uniform(0,1) draws into one standard-normal draw.
func boxMuller(u1, u2 float64) float64 {
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
