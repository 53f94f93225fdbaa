package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFactorizeSpecVector(t *testing.T) {
	p, q, err := Factorize(0x17ED48941A08F981)
	require.NoError(t, err)
	require.Equal(t, uint64(0x494C553B), p)
	require.Equal(t, uint64(0x53911073), q)
	require.Less(t, p, q)
	require.Equal(t, uint64(0x17ED48941A08F981), p*q)
}

func TestFactorizeOriginalSourceVectors(t *testing.T) {
	cases := []struct {
		pq, p, q uint64
	}{
		{1470626929934143021, 1206429347, 1218991343},
		{2363612107535801713, 1518968219, 1556064227},
	}
	for _, c := range cases {
		p, q, err := Factorize(c.pq)
		require.NoError(t, err)
		require.Equal(t, c.p, p)
		require.Equal(t, c.q, q)
	}
}

func TestFactorizeEven(t *testing.T) {
	p, q, err := Factorize(2 * 7)
	require.NoError(t, err)
	require.Equal(t, uint64(2), p)
	require.Equal(t, uint64(7), q)
}
