package exchange

import "math/big"

// validGenerators lists the only values of g the protocol allows.
var validGenerators = map[int32]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true}

// checkGoodPrime validates dh_prime: 2048-bit, prime, and a safe prime
// ((dh_prime-1)/2 also prime); g must be one of a small fixed
// set and satisfy the quadratic-residue condition tied to that g, which
// lets the server pick g without the client needing to verify a full
// discrete-log proof.
func checkGoodPrime(dhPrime *big.Int, g int32) error {
	if dhPrime.BitLen() != 2048 {
		return protocolErrorf("dh_prime is %d bits, want 2048", dhPrime.BitLen())
	}
	if !validGenerators[g] {
		return protocolErrorf("g=%d is not one of the allowed generators", g)
	}
	if !dhPrime.ProbablyPrime(64) {
		return protocolErrorf("dh_prime failed primality test")
	}
	safe := new(big.Int).Sub(dhPrime, big.NewInt(1))
	safe.Rsh(safe, 1)
	if !safe.ProbablyPrime(64) {
		return protocolErrorf("dh_prime is not a safe prime")
	}
	if !quadraticResidueOK(dhPrime, g) {
		return protocolErrorf("g=%d fails the quadratic-residue condition for this dh_prime", g)
	}
	return nil
}

// quadraticResidueOK implements the well-known per-generator congruence
// conditions MTProto clients use instead of a full residue test.
func quadraticResidueOK(dhPrime *big.Int, g int32) bool {
	mod := func(m int64) int64 {
		r := new(big.Int).Mod(dhPrime, big.NewInt(m))
		return r.Int64()
	}
	switch g {
	case 2:
		return mod(8) == 7
	case 3:
		return mod(3) == 2
	case 4:
		return true
	case 5:
		r := mod(5)
		return r == 1 || r == 4
	case 6:
		r := mod(24)
		return r == 19 || r == 23
	case 7:
		r := mod(7)
		return r == 3 || r == 5 || r == 6
	default:
		return false
	}
}

// dhParamRange returns the bounds 2^1984 and dhPrime - 2^1984; g_a and g_b
// must fall strictly between them (see checkDHParamInRange).
func dhParamRange(dhPrime *big.Int) (low, high *big.Int) {
	low = new(big.Int).Lsh(big.NewInt(1), 1984)
	high = new(big.Int).Sub(dhPrime, low)
	return low, high
}

// checkDHParamInRange verifies low < value < high.
func checkDHParamInRange(name string, value, low, high *big.Int) error {
	if value.Cmp(low) <= 0 || value.Cmp(high) >= 0 {
		return protocolErrorf("%s is out of the required DH parameter range", name)
	}
	return nil
}
