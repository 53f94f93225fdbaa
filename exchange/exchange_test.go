package exchange

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/clock"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/mt"
)

func newTestAuth(t *testing.T) *Authorization {
	return New(Options{Random: crypto.SeededRand(1), Clock: clock.Frozen{At: time.Unix(1700000000, 0)}})
}

func TestStep1SetsNonceAndAdvancesPhase(t *testing.T) {
	a := newTestAuth(t)
	req, err := a.Step1()
	require.NoError(t, err)
	require.NotZero(t, req.Nonce)
	require.Equal(t, a.nonce, req.Nonce)
	require.Equal(t, phaseAwaitingResPQ, a.ph)
}

func TestStep1RejectsTemporary(t *testing.T) {
	a := New(Options{Temporary: true})
	_, err := a.Step1()
	require.ErrorIs(t, err, ErrTempAuthKeyUnsupported)
}

func TestStep1RejectsDoubleCall(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Step1()
	require.NoError(t, err)
	_, err = a.Step1()
	require.ErrorIs(t, err, ErrUnexpectedState)
}

func TestStep2RejectsWrongPhase(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Step2(&mt.ResPQ{})
	require.ErrorIs(t, err, ErrUnexpectedState)
}

// knownFingerprint picks a fingerprint from crypto's baked-in public key
// table, so Step2's key lookup succeeds without inventing a fake key.
func knownFingerprint(t *testing.T) int64 {
	for fp := range crypto.PublicKeys {
		return fp
	}
	t.Fatal("no baked-in RSA public keys available")
	return 0
}

func TestStep2RejectsNonceMismatch(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Step1()
	require.NoError(t, err)

	resPQ := &mt.ResPQ{
		Nonce:                       [16]byte{1},
		PQ:                          []byte{0, 0, 0, 0, 0, 0, 1, 67}, // 17*19 = 323
		ServerPublicKeyFingerprints: []int64{knownFingerprint(t)},
	}
	_, err = a.Step2(resPQ)
	require.Error(t, err)
}

func TestStep2RejectsBadPQLength(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Step1()
	require.NoError(t, err)

	resPQ := &mt.ResPQ{Nonce: a.nonce, PQ: []byte{1, 2, 3}}
	_, err = a.Step2(resPQ)
	require.Error(t, err)
}

func TestStep2RejectsUnknownFingerprint(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Step1()
	require.NoError(t, err)

	resPQ := &mt.ResPQ{
		Nonce:                       a.nonce,
		PQ:                          []byte{0, 0, 0, 0, 0, 0, 1, 67},
		ServerPublicKeyFingerprints: []int64{123456789},
	}
	_, err = a.Step2(resPQ)
	require.Error(t, err)
}

func TestStep2Success(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Step1()
	require.NoError(t, err)

	fp := knownFingerprint(t)
	resPQ := &mt.ResPQ{
		Nonce:                       a.nonce,
		ServerNonce:                 [16]byte{9, 9, 9},
		PQ:                          []byte{0, 0, 0, 0, 0, 0, 1, 67}, // 323 = 17*19
		ServerPublicKeyFingerprints: []int64{fp},
	}
	req, err := a.Step2(resPQ)
	require.NoError(t, err)
	require.Equal(t, a.nonce, req.Nonce)
	require.Equal(t, resPQ.ServerNonce, req.ServerNonce)
	require.Equal(t, fp, req.PublicKeyFingerprint)
	require.Len(t, req.EncryptedData, 256)
	require.Equal(t, phaseAwaitingDHParams, a.ph)
	require.NotZero(t, a.newNonce)
}

func TestStep3RejectsWrongPhase(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Step3(&mt.ServerDHParamsOk{})
	require.ErrorIs(t, err, ErrUnexpectedState)
}

func step2Auth(t *testing.T) (*Authorization, *mt.ResPQ) {
	a := newTestAuth(t)
	_, err := a.Step1()
	require.NoError(t, err)
	resPQ := &mt.ResPQ{
		Nonce:                       a.nonce,
		ServerNonce:                 [16]byte{9, 9, 9},
		PQ:                          []byte{0, 0, 0, 0, 0, 0, 1, 67},
		ServerPublicKeyFingerprints: []int64{knownFingerprint(t)},
	}
	_, err = a.Step2(resPQ)
	require.NoError(t, err)
	return a, resPQ
}

func TestStep3RejectsFailNonceMismatch(t *testing.T) {
	a, _ := step2Auth(t)
	fail := &mt.ServerDHParamsFail{Nonce: [16]byte{99}, ServerNonce: a.serverNonce}
	_, err := a.Step3(fail)
	require.Error(t, err)
}

func TestStep3HonorsWellFormedFail(t *testing.T) {
	a, _ := step2Auth(t)
	hash := crypto.SHA1(a.newNonce[:])
	var nonceHash [16]byte
	copy(nonceHash[:], hash[4:20])
	fail := &mt.ServerDHParamsFail{Nonce: a.nonce, ServerNonce: a.serverNonce, NewNonceHash: nonceHash}
	_, err := a.Step3(fail)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrProtocol)
}

func TestStep3RejectsOkNonceMismatch(t *testing.T) {
	a, _ := step2Auth(t)
	ok := &mt.ServerDHParamsOk{Nonce: [16]byte{7}, ServerNonce: a.serverNonce, EncryptedAnswer: make([]byte, 16)}
	_, err := a.Step3(ok)
	require.Error(t, err)
}

func TestStep3RejectsMisalignedEncryptedAnswer(t *testing.T) {
	a, _ := step2Auth(t)
	ok := &mt.ServerDHParamsOk{Nonce: a.nonce, ServerNonce: a.serverNonce, EncryptedAnswer: make([]byte, 17)}
	_, err := a.Step3(ok)
	require.Error(t, err)
}

func TestFinishRejectsWrongPhase(t *testing.T) {
	a := newTestAuth(t)
	_, err := a.Finish(&mt.DHGenOk{})
	require.ErrorIs(t, err, ErrUnexpectedState)
}

// readyForFinish builds an Authorization already parked in
// phaseAwaitingDHAnswer with a fixed gab, bypassing Step3's DH-parameter
// validation (which needs a real 2048-bit safe prime this test doesn't
// need to reconstruct) so Finish's own nonce/hash/variant logic can be
// exercised directly.
func readyForFinish(gab int64) *Authorization {
	return &Authorization{
		opts:        Options{Logger: zap.NewNop(), Clock: clock.System, Random: crypto.DefaultRand()},
		ph:          phaseAwaitingDHAnswer,
		nonce:       [16]byte{1, 2, 3},
		serverNonce: [16]byte{4, 5, 6},
		newNonce:    [32]byte{7, 8, 9},
		gab:         big.NewInt(gab),
	}
}

func TestFinishSuccess(t *testing.T) {
	a := readyForFinish(424242)

	var keyBytes [256]byte
	gabBytes := a.gab.Bytes()
	copy(keyBytes[256-len(gabBytes):], gabBytes)
	authKey := crypto.NewAuthKey(keyBytes)
	hash := authKey.CalcNewNonceHash(a.newNonce, 1)

	ok := &mt.DHGenOk{Nonce: a.nonce, ServerNonce: a.serverNonce, NewNonceHash1: hash}
	result, err := a.Finish(ok)
	require.NoError(t, err)
	require.Equal(t, authKey, result.AuthKey)
	require.Equal(t, phaseDone, a.ph)
}

func TestFinishRejectsNonceMismatch(t *testing.T) {
	a := readyForFinish(1)
	ok := &mt.DHGenOk{Nonce: [16]byte{0xff}, ServerNonce: a.serverNonce}
	_, err := a.Finish(ok)
	require.Error(t, err)
}

func TestFinishRejectsHashMismatch(t *testing.T) {
	a := readyForFinish(1)
	ok := &mt.DHGenOk{Nonce: a.nonce, ServerNonce: a.serverNonce, NewNonceHash1: [16]byte{1, 2, 3}}
	_, err := a.Finish(ok)
	require.Error(t, err)
}

func TestFinishHonorsDHGenRetry(t *testing.T) {
	a := readyForFinish(555)
	var keyBytes [256]byte
	gabBytes := a.gab.Bytes()
	copy(keyBytes[256-len(gabBytes):], gabBytes)
	authKey := crypto.NewAuthKey(keyBytes)
	hash := authKey.CalcNewNonceHash(a.newNonce, 2)

	retry := &mt.DHGenRetry{Nonce: a.nonce, ServerNonce: a.serverNonce, NewNonceHash2: hash}
	_, err := a.Finish(retry)
	require.ErrorIs(t, err, ErrDHGenRetry)
}

func TestFinishHonorsDHGenFail(t *testing.T) {
	a := readyForFinish(777)
	var keyBytes [256]byte
	gabBytes := a.gab.Bytes()
	copy(keyBytes[256-len(gabBytes):], gabBytes)
	authKey := crypto.NewAuthKey(keyBytes)
	hash := authKey.CalcNewNonceHash(a.newNonce, 3)

	fail := &mt.DHGenFail{Nonce: a.nonce, ServerNonce: a.serverNonce, NewNonceHash3: hash}
	_, err := a.Finish(fail)
	require.ErrorIs(t, err, ErrDHGenFail)
}

func TestCheckGoodPrimeRejectsWrongBitLength(t *testing.T) {
	small := big.NewInt(23)
	err := checkGoodPrime(small, 3)
	require.Error(t, err)
}

func TestCheckGoodPrimeRejectsBadGenerator(t *testing.T) {
	p := new(big.Int).Lsh(big.NewInt(1), 2047)
	err := checkGoodPrime(p, 8)
	require.Error(t, err)
}

func TestQuadraticResidueOK(t *testing.T) {
	// 23 mod 8 == 7, satisfying g=2's condition.
	require.True(t, quadraticResidueOK(big.NewInt(23), 2))
	// 22 mod 8 == 6, failing it.
	require.False(t, quadraticResidueOK(big.NewInt(22), 2))
	// 11 mod 3 == 2, satisfying g=3's condition.
	require.True(t, quadraticResidueOK(big.NewInt(11), 3))
	require.False(t, quadraticResidueOK(big.NewInt(10), 3))
}

func TestDhParamRangeAndCheck(t *testing.T) {
	prime := new(big.Int).Lsh(big.NewInt(1), 2048)
	low, high := dhParamRange(prime)
	require.Equal(t, new(big.Int).Lsh(big.NewInt(1), 1984), low)

	require.NoError(t, checkDHParamInRange("g_a", new(big.Int).Lsh(big.NewInt(1), 2000), low, high))
	require.Error(t, checkDHParamInRange("g_a", big.NewInt(1), low, high))
	require.Error(t, checkDHParamInRange("g_a", high, low, high))
}

func TestEncodeDecodeHandshakeRoundTrip(t *testing.T) {
	req := &mt.ReqDHParams{Nonce: [16]byte{1}, ServerNonce: [16]byte{2}, P: []byte{1}, Q: []byte{2}, PublicKeyFingerprint: 7, EncryptedData: make([]byte, 256)}
	var buf bin.Buffer
	require.NoError(t, req.Encode(&buf))

	var got mt.ReqDHParams
	require.NoError(t, got.Decode(bin.NewBuffer(buf.Buf)))
	require.Equal(t, req, &got)
}
