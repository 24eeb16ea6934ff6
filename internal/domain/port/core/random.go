package core

// RandomSource draws uniformly distributed integers in [0, n)
type RandomSource interface {
	Intn(n int) int
}
