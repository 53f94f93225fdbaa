package tgtest

import (
	"crypto/rand"
	"io"
	"math/big"
	"sync"
)

// testDHGenerator is the generator this package always offers: g=4 is one
// of the protocol's allowed values and is the only one whose
// quadratic-residue condition holds unconditionally, regardless of which
// prime comes out of generateSafePrime (see exchange's checkGoodPrime).
const testDHGenerator = int32(4)

var (
	dhPrimeOnce sync.Once
	dhPrime     *big.Int
	dhPrimeErr  error
)

// sharedDHPrime returns a 2048-bit safe prime, generating it once per
// process and reusing it for every HandshakeServer after that. Real DH
// parameter generators (e.g. openssl dhparam) pay this same one-time cost;
// a handshake demonstration tool is exactly the kind of caller that can
// afford it.
func sharedDHPrime() (*big.Int, error) {
	dhPrimeOnce.Do(func() {
		dhPrime, dhPrimeErr = generateSafePrime(2048)
	})
	return dhPrime, dhPrimeErr
}

// generateSafePrime searches for a prime p of exactly bits length such
// that q = (p-1)/2 is also prime, by drawing prime candidates for q
// straight out of crypto/rand (which already sieves out obviously
// composite candidates before running Miller-Rabin) and checking whether
// 2q+1 is prime too. q is generated with bit length bits-1 and its top bit
// set, so p=2q+1 always lands at exactly bits bits long.
func generateSafePrime(bits int) (*big.Int, error) {
	one := big.NewInt(1)
	for {
		q, err := rand.Prime(rand.Reader, bits-1)
		if err != nil {
			return nil, err
		}
		p := new(big.Int).Lsh(q, 1)
		p.Add(p, one)
		if p.ProbablyPrime(64) {
			return p, nil
		}
	}
}

// generateSemiprime draws two distinct ~31-bit primes and returns their
// product as an 8-byte big-endian pq, the form resPQ carries and
// exchange.Authorization.Step2 factors with crypto.Factorize. Keeping the
// factors this small (rather than drawing from the same 2048-bit territory
// as the DH prime) is what makes Step2's Pollard's-rho factorization
// tractable, exactly as it is against a real datacenter.
func generateSemiprime(random io.Reader) ([]byte, error) {
	const primeBits = 31
	for {
		p, err := rand.Prime(random, primeBits)
		if err != nil {
			return nil, err
		}
		q, err := rand.Prime(random, primeBits)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		pq := new(big.Int).Mul(p, q)
		out := make([]byte, 8)
		pq.FillBytes(out)
		return out, nil
	}
}
