package exchange

import (
	"math/big"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/mt"
)

// phase identifies which step of the handshake an Authorization is waiting
// on. Go has no sum types, so this is modeled as a tagged struct instead:
// exactly the fields relevant to the current phase are populated.
type phase int

const (
	phaseStart phase = iota
	phaseAwaitingResPQ
	phaseAwaitingDHParams
	phaseAwaitingDHAnswer
	phaseDone
)

// Result is the output of a completed handshake (server_dc is the caller's
// own Options.DC field, since the core never learns it independently from the
// server).
type Result struct {
	AuthKey    crypto.AuthKey
	FirstSalt  int64
	TimeOffset int32
}

// Authorization drives one client-side handshake attempt. It is a value
// type in spirit — each Step consumes the previous state and produces the
// next — but is implemented as a struct with an internal phase tag so Go
// callers get a single long-lived receiver instead of chaining return
// values by hand.
//
// A Authorization must not be reused after it reaches Done or after any
// step returns a fatal error; construct a fresh one to retry.
type Authorization struct {
	opts Options

	ph phase

	nonce       [16]byte
	serverNonce [16]byte
	newNonce    [32]byte

	dhPrime *big.Int
	g       int32
	gA      *big.Int
	b       *big.Int
	gab     *big.Int

	timeOffset int32
}

// New creates a fresh Authorization ready for Step1.
func New(opts Options) *Authorization {
	opts.setDefaults()
	return &Authorization{opts: opts, ph: phaseStart}
}

// Step1 begins the handshake: Start -> AwaitingResPQ. It returns the
// req_pq_multi request to send.
func (a *Authorization) Step1() (*mt.ReqPqMulti, error) {
	if a.opts.Temporary {
		return nil, ErrTempAuthKeyUnsupported
	}
	if a.ph != phaseStart {
		return nil, ErrUnexpectedState
	}
	if err := crypto.ReadFull(a.opts.Random, a.nonce[:]); err != nil {
		return nil, errors.Wrap(err, "read nonce")
	}
	a.ph = phaseAwaitingResPQ
	a.opts.Logger.Debug("sending req_pq_multi")
	return &mt.ReqPqMulti{Nonce: a.nonce}, nil
}

// Step2 processes resPQ: AwaitingResPQ -> AwaitingDHParams. It factors pq,
// builds and RSA-encrypts p_q_inner_data_dc, and returns req_DH_params.
func (a *Authorization) Step2(resPQ *mt.ResPQ) (*mt.ReqDHParams, error) {
	if a.ph != phaseAwaitingResPQ {
		return nil, ErrUnexpectedState
	}
	if resPQ.Nonce != a.nonce {
		return nil, protocolErrorf("resPQ nonce mismatch")
	}
	if len(resPQ.PQ) != 8 {
		return nil, protocolErrorf("resPQ.pq has length %d, want 8", len(resPQ.PQ))
	}
	a.serverNonce = resPQ.ServerNonce

	pq := beBytesToUint64(resPQ.PQ)
	p, q, err := crypto.Factorize(pq)
	if err != nil {
		return nil, errors.Wrap(ErrFactorization, err.Error())
	}

	if err := crypto.ReadFull(a.opts.Random, a.newNonce[:]); err != nil {
		return nil, errors.Wrap(err, "read new_nonce")
	}

	fp, ok := a.opts.Keys.FirstKnownFingerprint(resPQ.ServerPublicKeyFingerprints)
	if !ok {
		return nil, protocolErrorf("no known RSA fingerprint among %v", resPQ.ServerPublicKeyFingerprints)
	}
	key, _ := a.opts.Keys.KeyForFingerprint(fp)

	pBytes := trimLeadingZeros(uint64ToBEBytes(p))
	qBytes := trimLeadingZeros(uint64ToBEBytes(q))

	inner := &mt.PQInnerDataDC{
		PQ:          resPQ.PQ,
		P:           pBytes,
		Q:           qBytes,
		Nonce:       a.nonce,
		ServerNonce: a.serverNonce,
		NewNonce:    a.newNonce,
		DC:          a.opts.DC,
	}
	innerBuf := new(bin.Buffer)
	if err := inner.Encode(innerBuf); err != nil {
		return nil, errors.Wrap(err, "encode p_q_inner_data_dc")
	}

	ciphertext, err := crypto.EncryptRSA(innerBuf.Raw(), key, a.opts.Random)
	if err != nil {
		return nil, errors.Wrap(ErrCrypto, err.Error())
	}

	a.ph = phaseAwaitingDHParams
	a.opts.Logger.Debug("sending req_DH_params", zap.Int64("fingerprint", fp))
	return &mt.ReqDHParams{
		Nonce:                a.nonce,
		ServerNonce:          a.serverNonce,
		P:                    pBytes,
		Q:                    qBytes,
		PublicKeyFingerprint: fp,
		EncryptedData:        ciphertext,
	}, nil
}

// Step3 processes server_DH_params_{ok,fail}: AwaitingDHParams ->
// AwaitingDHAnswer. It decrypts and validates server_DH_inner_data, picks
// the client's DH secret, and returns set_client_DH_params.
func (a *Authorization) Step3(params mt.ServerDHParams) (*mt.SetClientDHParams, error) {
	if a.ph != phaseAwaitingDHParams {
		return nil, ErrUnexpectedState
	}

	fail, isFail := params.(*mt.ServerDHParamsFail)
	if isFail {
		if fail.Nonce != a.nonce || fail.ServerNonce != a.serverNonce {
			return nil, protocolErrorf("server_DH_params_fail nonce mismatch")
		}
		expected := crypto.SHA1(a.newNonce[:])
		if !bytesEqual16(fail.NewNonceHash[:], expected[4:20]) {
			return nil, protocolErrorf("server_DH_params_fail new_nonce_hash mismatch")
		}
		return nil, protocolErrorf("server returned server_DH_params_fail")
	}

	ok, isOk := params.(*mt.ServerDHParamsOk)
	if !isOk {
		return nil, protocolErrorf("unexpected server_DH_params variant %T", params)
	}
	if ok.Nonce != a.nonce || ok.ServerNonce != a.serverNonce {
		return nil, protocolErrorf("server_DH_params_ok nonce mismatch")
	}
	if len(ok.EncryptedAnswer)%16 != 0 {
		return nil, protocolErrorf("encrypted_answer length %d not 16-byte aligned", len(ok.EncryptedAnswer))
	}

	key, iv := crypto.KeyFromNonces(a.newNonce, a.serverNonce)
	plain, err := crypto.IGEDecrypt(ok.EncryptedAnswer, key[:], iv[:])
	if err != nil {
		return nil, errors.Wrap(ErrCrypto, err.Error())
	}
	if len(plain) < 20 {
		return nil, protocolErrorf("decrypted server_DH_params_ok answer too short")
	}
	gotHash := plain[:20]
	innerBuf := bin.NewBuffer(append([]byte(nil), plain[20:]...))

	inner := new(mt.ServerDHInnerData)
	if err := inner.Decode(innerBuf); err != nil {
		return nil, errors.Wrap(ErrProtocol, err.Error())
	}
	consumed := len(plain) - 20 - innerBuf.Len()
	expectedHash := crypto.SHA1(plain[20 : 20+consumed])
	if !bytesEqual20(gotHash, expectedHash[:]) {
		return nil, protocolErrorf("server_DH_inner_data hash mismatch")
	}
	if inner.Nonce != a.nonce || inner.ServerNonce != a.serverNonce {
		return nil, protocolErrorf("server_DH_inner_data nonce mismatch")
	}

	dhPrime := new(big.Int).SetBytes(inner.DHPrime)
	gA := new(big.Int).SetBytes(inner.GA)
	if err := checkGoodPrime(dhPrime, inner.G); err != nil {
		return nil, err
	}
	low, high := dhParamRange(dhPrime)
	if err := checkDHParamInRange("g_a", gA, low, high); err != nil {
		return nil, err
	}

	bBytes := make([]byte, 256)
	if err := crypto.ReadFull(a.opts.Random, bBytes); err != nil {
		return nil, errors.Wrap(err, "read DH secret b")
	}
	b := new(big.Int).SetBytes(bBytes)
	gBig := big.NewInt(int64(inner.G))

	gB := new(big.Int).Exp(gBig, b, dhPrime)
	if err := checkDHParamInRange("g_b", gB, low, high); err != nil {
		return nil, err
	}
	gab := new(big.Int).Exp(gA, b, dhPrime)

	a.dhPrime = dhPrime
	a.g = inner.G
	a.gA = gA
	a.b = b
	a.gab = gab
	a.timeOffset = inner.ServerTime - int32(a.opts.Clock.Now().Unix())

	clientInner := &mt.ClientDHInnerData{
		Nonce:       a.nonce,
		ServerNonce: a.serverNonce,
		RetryID:     0,
		GB:          gB.Bytes(),
	}
	clientInnerBuf := new(bin.Buffer)
	if err := clientInner.Encode(clientInnerBuf); err != nil {
		return nil, errors.Wrap(err, "encode client_DH_inner_data")
	}
	hash := crypto.SHA1(clientInnerBuf.Raw())

	unpadded := len(hash) + clientInnerBuf.Len()
	padLen := (16 - unpadded%16) % 16
	pad := make([]byte, padLen)
	if err := crypto.ReadFull(a.opts.Random, pad); err != nil {
		return nil, errors.Wrap(err, "read DH-inner padding")
	}
	toEncrypt := make([]byte, 0, unpadded+padLen)
	toEncrypt = append(toEncrypt, hash[:]...)
	toEncrypt = append(toEncrypt, clientInnerBuf.Raw()...)
	toEncrypt = append(toEncrypt, pad...)

	encrypted, err := crypto.IGEEncrypt(toEncrypt, key[:], iv[:])
	if err != nil {
		return nil, errors.Wrap(ErrCrypto, err.Error())
	}

	a.ph = phaseAwaitingDHAnswer
	a.opts.Logger.Debug("sending set_client_DH_params")
	return &mt.SetClientDHParams{
		Nonce:         a.nonce,
		ServerNonce:   a.serverNonce,
		EncryptedData: encrypted,
	}, nil
}

// Finish processes dh_gen_{ok,retry,fail}: AwaitingDHAnswer -> Done. On
// success it returns the derived Result.
func (a *Authorization) Finish(answer mt.SetClientDHParamsAnswer) (Result, error) {
	if a.ph != phaseAwaitingDHAnswer {
		return Result{}, ErrUnexpectedState
	}

	var keyBytes [256]byte
	gabBytes := a.gab.Bytes()
	copy(keyBytes[256-len(gabBytes):], gabBytes)
	authKey := crypto.NewAuthKey(keyBytes)

	if answer.DHGenNonce() != a.nonce || answer.DHGenServerNonce() != a.serverNonce {
		return Result{}, protocolErrorf("dh_gen answer nonce mismatch")
	}

	expectedHash := authKey.CalcNewNonceHash(a.newNonce, answer.DHGenNumber())
	if answer.DHGenHash() != expectedHash {
		return Result{}, protocolErrorf("dh_gen hash mismatch")
	}

	switch answer.(type) {
	case *mt.DHGenOk:
		// fall through to the success path below.
	case *mt.DHGenRetry:
		return Result{}, ErrDHGenRetry
	case *mt.DHGenFail:
		return Result{}, ErrDHGenFail
	default:
		return Result{}, protocolErrorf("unexpected SetClientDHParamsAnswer variant %T", answer)
	}

	a.ph = phaseDone
	a.opts.Logger.Debug("handshake complete")
	return Result{
		AuthKey:    authKey,
		FirstSalt:  crypto.FirstSalt(a.newNonce, a.serverNonce),
		TimeOffset: a.timeOffset,
	}, nil
}

func beBytesToUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func uint64ToBEBytes(v uint64) []byte {
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func bytesEqual16(a, b []byte) bool { return len(a) == 16 && len(b) == 16 && string(a) == string(b) }
func bytesEqual20(a, b []byte) bool { return len(a) == 20 && len(b) == 20 && string(a) == string(b) }
