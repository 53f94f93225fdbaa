package bin

import "math"

func mathFloatBits(v float64) uint64     { return math.Float64bits(v) }
func mathFloatFromBits(v uint64) float64 { return math.Float64frombits(v) }
