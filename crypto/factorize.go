package crypto

import "github.com/go-faster/errors"

// ErrFactorizationBudget is returned when factorize exhausts its configured
// iteration budget across every restart attempt: 1e7 Brent-cycle iterations
// per attempt, up to 16 attempts with a fresh constant, before giving up.
var ErrFactorizationBudget = errors.New("crypto: factorization budget exhausted")

const (
	factorizeIterationBudget = 10_000_000
	factorizeAttempts        = 16
)

// attemptConstants mirrors the small prime ladder grammers uses to pick
// Brent's "c" constant; cycling through a handful of values makes restarts
// after a stuck cycle cheap without reaching for fresh randomness each time.
var attemptConstants = [...]uint64{43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97, 101, 103, 107, 109}

// Factorize factors pq, a 64-bit product of two primes, into (p, q) with
// p < q, using Pollard's rho with Brent's cycle-detection improvement. It
// restarts with a fresh constant on a stuck cycle and gives up with
// ErrFactorizationBudget after factorizeAttempts restarts.
func Factorize(pq uint64) (p, q uint64, err error) {
	if pq%2 == 0 {
		return 2, pq / 2, nil
	}
	n := uint64(pq)
	for i := 0; i < factorizeAttempts && i < len(attemptConstants); i++ {
		c := attemptConstants[i] * (n / 103)
		if c == 0 {
			c = attemptConstants[i]
		}
		g, ok := brentPollardRho(n, c, factorizeIterationBudget)
		if ok && g != 1 && g != n {
			p, q = g, n/g
			if p > q {
				p, q = q, p
			}
			return p, q, nil
		}
	}
	return 0, 0, ErrFactorizationBudget
}

func brentPollardRho(n, c uint64, budget int) (uint64, bool) {
	f := func(x uint64) uint64 { return (mulmod(x, x, n) + c) % n }

	x, y, g, r, q := uint64(2), uint64(2), uint64(1), uint64(1), uint64(1)
	var ys uint64
	iterations := 0

	for g == 1 {
		x = y
		for i := uint64(0); i < r; i++ {
			y = f(y)
			iterations++
			if iterations > budget {
				return 0, false
			}
		}
		k := uint64(0)
		for k < r && g == 1 {
			ys = y
			lim := minU64(128, r-k)
			for i := uint64(0); i < lim; i++ {
				y = f(y)
				q = mulmod(q, absDiff(x, y), n)
				iterations++
				if iterations > budget {
					return 0, false
				}
			}
			g = gcd(q, n)
			k += lim
		}
		r *= 2
	}

	if g == n {
		for {
			ys = f(ys)
			g = gcd(absDiff(x, ys), n)
			iterations++
			if iterations > budget {
				return 0, false
			}
			if g > 1 {
				break
			}
		}
	}
	return g, true
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// mulmod computes a*b mod m without overflowing 64 bits, using a 128-bit
// intermediate product (bits.Mul64, then bits.Div64 for the remainder; see
// mulmod.go): Go's uint64 multiplication overflows silently.
func mulmod(a, b, m uint64) uint64 {
	hi, lo := mul64(a, b)
	_, rem := div128by64(hi, lo, m)
	return rem
}
