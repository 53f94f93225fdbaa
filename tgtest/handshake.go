package tgtest

import (
	"bytes"
	"context"
	"crypto/rsa"
	"math/big"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/clock"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/mt"
	"go.mau.fi/mtproto-core/mtproto"
	"go.mau.fi/mtproto-core/transport"
)

// HandshakeOptions configures a HandshakeServer.
type HandshakeOptions struct {
	// Logger receives diagnostic output. Defaults to zap.NewNop().
	Logger *zap.Logger
	// Clock supplies the server_time carried in server_DH_inner_data.
	// Defaults to clock.System.
	Clock clock.Clock
	// Random supplies entropy for nonces, the pq factors, DH secrets, the
	// DH answer's padding and the RSA key itself. Defaults to crypto.DefaultRand().
	Random crypto.RandomSource
}

func (o *HandshakeOptions) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = clock.System
	}
	if o.Random == nil {
		o.Random = crypto.DefaultRand()
	}
}

// HandshakeResult is what a completed handshake produced, read from the
// server's side of the exchange.
type HandshakeResult struct {
	AuthKey   crypto.AuthKey
	FirstSalt int64
}

// HandshakeServer plays the RSA/DH side of the authorization handshake a
// real datacenter plays: it answers req_pq_multi, req_DH_params and
// set_client_DH_params in order and derives the same auth key an
// unmodified exchange.Authorization on the other end of t would land on.
// It mints its own throwaway 2048-bit RSA key and reuses a process-wide
// generated 2048-bit safe prime rather than any of Telegram's real keys —
// crypto.PublicKeys only ever carries public moduli, so a caller wiring an
// Authorization against this server passes its Key() through
// crypto.WithExtraKeys instead of it ever entering the baked-in table.
type HandshakeServer struct {
	opts HandshakeOptions
	t    transport.Transport
	pt   *mtproto.PlainSession

	priv *rsa.PrivateKey
	pub  crypto.RSAPublicKey

	dhPrime *big.Int
	g       int32
}

// NewHandshakeServer mints a throwaway RSA key and fetches this process's
// shared safe prime (generating it on first use — see generateSafePrime)
// to build a server ready to drive one handshake over t.
func NewHandshakeServer(t transport.Transport, opts HandshakeOptions) (*HandshakeServer, error) {
	opts.setDefaults()

	priv, err := rsa.GenerateKey(opts.Random, 2048)
	if err != nil {
		return nil, errors.Wrap(err, "generate throwaway RSA key")
	}
	prime, err := sharedDHPrime()
	if err != nil {
		return nil, errors.Wrap(err, "generate DH prime")
	}

	e := big.NewInt(int64(priv.PublicKey.E))
	pub := crypto.RSAPublicKey{
		Fingerprint: crypto.Fingerprint(priv.PublicKey.N, e),
		N:           priv.PublicKey.N,
		E:           e,
	}
	return &HandshakeServer{
		opts:    opts,
		t:       t,
		pt:      mtproto.NewPlainSession(mtproto.Options{Clock: opts.Clock, Random: opts.Random}),
		priv:    priv,
		pub:     pub,
		dhPrime: prime,
		g:       testDHGenerator,
	}, nil
}

// Key returns the fingerprinted public key this server offers, for wiring
// into exchange.Options via crypto.WithExtraKeys(crypto.DefaultKeys, ...).
func (s *HandshakeServer) Key() crypto.RSAPublicKey { return s.pub }

// Serve drives exactly one handshake to completion and returns the
// resulting auth key and initial salt, or the first error encountered.
func (s *HandshakeServer) Serve(ctx context.Context) (HandshakeResult, error) {
	nonce, serverNonce, err := s.answerReqPQ(ctx)
	if err != nil {
		return HandshakeResult{}, errors.Wrap(err, "req_pq_multi")
	}
	newNonce, secretA, err := s.answerReqDHParams(ctx, nonce, serverNonce)
	if err != nil {
		return HandshakeResult{}, errors.Wrap(err, "req_DH_params")
	}
	result, err := s.answerSetClientDHParams(ctx, nonce, serverNonce, newNonce, secretA)
	if err != nil {
		return HandshakeResult{}, errors.Wrap(err, "set_client_DH_params")
	}
	return result, nil
}

func (s *HandshakeServer) recv(ctx context.Context) ([]byte, error) {
	frame, err := s.t.Recv(ctx)
	if err != nil {
		return nil, err
	}
	return s.pt.Unpack(frame)
}

func (s *HandshakeServer) send(ctx context.Context, obj bin.Encoder) error {
	var buf bin.Buffer
	if err := obj.Encode(&buf); err != nil {
		return err
	}
	return s.t.Send(ctx, s.pt.Pack(buf.Raw()))
}

func (s *HandshakeServer) answerReqPQ(ctx context.Context) (nonce, serverNonce [16]byte, err error) {
	body, err := s.recv(ctx)
	if err != nil {
		return nonce, serverNonce, err
	}
	var req mt.ReqPqMulti
	if err := req.Decode(bin.NewBuffer(body)); err != nil {
		return nonce, serverNonce, err
	}
	if err := crypto.ReadFull(s.opts.Random, serverNonce[:]); err != nil {
		return nonce, serverNonce, err
	}
	pq, err := generateSemiprime(s.opts.Random)
	if err != nil {
		return nonce, serverNonce, err
	}
	resPQ := &mt.ResPQ{
		Nonce:                       req.Nonce,
		ServerNonce:                 serverNonce,
		PQ:                          pq,
		ServerPublicKeyFingerprints: []int64{s.pub.Fingerprint},
	}
	if err := s.send(ctx, resPQ); err != nil {
		return nonce, serverNonce, err
	}
	s.opts.Logger.Debug("tgtest: answered req_pq_multi", zap.Int64("fingerprint", s.pub.Fingerprint))
	return req.Nonce, serverNonce, nil
}

func (s *HandshakeServer) answerReqDHParams(ctx context.Context, nonce, serverNonce [16]byte) (newNonce [32]byte, secretA *big.Int, err error) {
	body, err := s.recv(ctx)
	if err != nil {
		return newNonce, nil, err
	}
	var req mt.ReqDHParams
	if err := req.Decode(bin.NewBuffer(body)); err != nil {
		return newNonce, nil, err
	}
	if req.Nonce != nonce || req.ServerNonce != serverNonce {
		return newNonce, nil, errors.New("tgtest: req_DH_params nonce mismatch")
	}
	if req.PublicKeyFingerprint != s.pub.Fingerprint {
		return newNonce, nil, errors.New("tgtest: req_DH_params fingerprint mismatch")
	}

	inner, err := s.decryptPQInnerData(req.EncryptedData)
	if err != nil {
		return newNonce, nil, errors.Wrap(err, "decrypt p_q_inner_data")
	}
	if inner.Nonce != nonce || inner.ServerNonce != serverNonce {
		return newNonce, nil, errors.New("tgtest: p_q_inner_data nonce mismatch")
	}
	newNonce = inner.NewNonce

	aBytes := make([]byte, 256)
	if err := crypto.ReadFull(s.opts.Random, aBytes); err != nil {
		return newNonce, nil, errors.Wrap(err, "read DH secret a")
	}
	secretA = new(big.Int).SetBytes(aBytes)
	gA := new(big.Int).Exp(big.NewInt(int64(s.g)), secretA, s.dhPrime)

	dhInner := &mt.ServerDHInnerData{
		Nonce:       nonce,
		ServerNonce: serverNonce,
		G:           s.g,
		DHPrime:     s.dhPrime.Bytes(),
		GA:          gA.Bytes(),
		ServerTime:  int32(s.opts.Clock.Now().Unix()),
	}
	var dhInnerBuf bin.Buffer
	if err := dhInner.Encode(&dhInnerBuf); err != nil {
		return newNonce, nil, err
	}
	hash := crypto.SHA1(dhInnerBuf.Raw())

	key, iv := crypto.KeyFromNonces(newNonce, serverNonce)
	unpadded := len(hash) + dhInnerBuf.Len()
	padLen := (16 - unpadded%16) % 16
	pad := make([]byte, padLen)
	if err := crypto.ReadFull(s.opts.Random, pad); err != nil {
		return newNonce, nil, errors.Wrap(err, "read server_DH_inner_data padding")
	}
	toEncrypt := make([]byte, 0, unpadded+padLen)
	toEncrypt = append(toEncrypt, hash[:]...)
	toEncrypt = append(toEncrypt, dhInnerBuf.Raw()...)
	toEncrypt = append(toEncrypt, pad...)

	encrypted, err := crypto.IGEEncrypt(toEncrypt, key[:], iv[:])
	if err != nil {
		return newNonce, nil, err
	}

	ok := &mt.ServerDHParamsOk{Nonce: nonce, ServerNonce: serverNonce, EncryptedAnswer: encrypted}
	if err := s.send(ctx, ok); err != nil {
		return newNonce, nil, err
	}
	s.opts.Logger.Debug("tgtest: answered req_DH_params")
	return newNonce, secretA, nil
}

func (s *HandshakeServer) answerSetClientDHParams(ctx context.Context, nonce, serverNonce [16]byte, newNonce [32]byte, secretA *big.Int) (HandshakeResult, error) {
	body, err := s.recv(ctx)
	if err != nil {
		return HandshakeResult{}, err
	}
	var req mt.SetClientDHParams
	if err := req.Decode(bin.NewBuffer(body)); err != nil {
		return HandshakeResult{}, err
	}
	if req.Nonce != nonce || req.ServerNonce != serverNonce {
		return HandshakeResult{}, errors.New("tgtest: set_client_DH_params nonce mismatch")
	}

	key, iv := crypto.KeyFromNonces(newNonce, serverNonce)
	plain, err := crypto.IGEDecrypt(req.EncryptedData, key[:], iv[:])
	if err != nil {
		return HandshakeResult{}, errors.Wrap(err, "ige decrypt")
	}
	if len(plain) < 20 {
		return HandshakeResult{}, errors.New("tgtest: client_DH_inner_data too short")
	}
	gotHash := plain[:20]
	innerBuf := bin.NewBuffer(append([]byte(nil), plain[20:]...))
	inner := new(mt.ClientDHInnerData)
	if err := inner.Decode(innerBuf); err != nil {
		return HandshakeResult{}, err
	}
	consumed := len(plain) - 20 - innerBuf.Len()
	expectedHash := crypto.SHA1(plain[20 : 20+consumed])
	if !bytes.Equal(gotHash, expectedHash[:]) {
		return HandshakeResult{}, errors.New("tgtest: client_DH_inner_data hash mismatch")
	}
	if inner.Nonce != nonce || inner.ServerNonce != serverNonce {
		return HandshakeResult{}, errors.New("tgtest: client_DH_inner_data nonce mismatch")
	}

	gB := new(big.Int).SetBytes(inner.GB)
	gab := new(big.Int).Exp(gB, secretA, s.dhPrime)

	var keyBytes [256]byte
	gabBytes := gab.Bytes()
	copy(keyBytes[256-len(gabBytes):], gabBytes)
	authKey := crypto.NewAuthKey(keyBytes)

	dhGenOk := &mt.DHGenOk{
		Nonce:         nonce,
		ServerNonce:   serverNonce,
		NewNonceHash1: authKey.CalcNewNonceHash(newNonce, 1),
	}
	if err := s.send(ctx, dhGenOk); err != nil {
		return HandshakeResult{}, err
	}
	s.opts.Logger.Debug("tgtest: answered set_client_DH_params with dh_gen_ok")

	return HandshakeResult{
		AuthKey:   authKey,
		FirstSalt: crypto.FirstSalt(newNonce, serverNonce),
	}, nil
}

// decryptPQInnerData reverses crypto.EncryptRSA/BuildRSAPayload: raw modexp
// with the private exponent recovers the 256-byte padded block, whose
// first byte is always zero, next 20 are SHA1(inner), and the rest is
// inner followed by random padding.
func (s *HandshakeServer) decryptPQInnerData(ciphertext []byte) (*mt.PQInnerDataDC, error) {
	c := new(big.Int).SetBytes(ciphertext)
	m := new(big.Int).Exp(c, s.priv.D, s.priv.N)

	var padded [256]byte
	m.FillBytes(padded[:])
	hash := padded[1:21]
	rest := append([]byte(nil), padded[21:]...)

	buf := bin.NewBuffer(rest)
	inner := new(mt.PQInnerDataDC)
	if err := inner.Decode(buf); err != nil {
		return nil, err
	}
	consumed := len(rest) - buf.Len()
	got := crypto.SHA1(rest[:consumed])
	if !bytes.Equal(got[:], hash) {
		return nil, errors.New("tgtest: p_q_inner_data hash mismatch")
	}
	return inner, nil
}
