package mt

import "go.mau.fi/mtproto-core/bin"

// ResPQ is the server's answer to req_pq_multi.
type ResPQ struct {
	Nonce                       [16]byte
	ServerNonce                 [16]byte
	PQ                          []byte
	ServerPublicKeyFingerprints []int64
}

// TypeID implements bin.Object.
func (*ResPQ) TypeID() uint32 { return IDResPQ }

// Encode implements bin.Encoder.
func (m *ResPQ) Encode(b *bin.Buffer) error {
	b.PutUint32(IDResPQ)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutBytes(m.PQ)
	putLongVector(b, m.ServerPublicKeyFingerprints)
	return nil
}

// Decode implements bin.Decoder.
func (m *ResPQ) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDResPQ); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	if m.PQ, err = b.Bytes(); err != nil {
		return err
	}
	m.ServerPublicKeyFingerprints, err = getLongVector(b)
	return err
}

// ReqPqMulti is the client's first handshake message.
type ReqPqMulti struct {
	Nonce [16]byte
}

// TypeID implements bin.Object.
func (*ReqPqMulti) TypeID() uint32 { return IDReqPqMulti }

// Encode implements bin.Encoder.
func (m *ReqPqMulti) Encode(b *bin.Buffer) error {
	b.PutUint32(IDReqPqMulti)
	b.PutInt128(m.Nonce)
	return nil
}

// Decode implements bin.Decoder.
func (m *ReqPqMulti) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDReqPqMulti); err != nil {
		return err
	}
	var err error
	m.Nonce, err = b.Int128()
	return err
}

// PQInnerDataDC is the RSA-encrypted inner payload of req_DH_params. The
// "_dc" variant carries the target datacenter, used by multi-DC clients;
// single-DC callers may leave DC at 0.
type PQInnerDataDC struct {
	PQ          []byte
	P           []byte
	Q           []byte
	Nonce       [16]byte
	ServerNonce [16]byte
	NewNonce    [32]byte
	DC          int32
}

// TypeID implements bin.Object.
func (*PQInnerDataDC) TypeID() uint32 { return IDPQInnerDataDC }

// Encode implements bin.Encoder.
func (m *PQInnerDataDC) Encode(b *bin.Buffer) error {
	b.PutUint32(IDPQInnerDataDC)
	b.PutBytes(m.PQ)
	b.PutBytes(m.P)
	b.PutBytes(m.Q)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutInt256(m.NewNonce)
	b.PutInt32(m.DC)
	return nil
}

// Decode implements bin.Decoder.
func (m *PQInnerDataDC) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDPQInnerDataDC); err != nil {
		return err
	}
	var err error
	if m.PQ, err = b.Bytes(); err != nil {
		return err
	}
	if m.P, err = b.Bytes(); err != nil {
		return err
	}
	if m.Q, err = b.Bytes(); err != nil {
		return err
	}
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	if m.NewNonce, err = b.Int256(); err != nil {
		return err
	}
	m.DC, err = b.Int32()
	return err
}

// ReqDHParams is the client's second handshake message.
type ReqDHParams struct {
	Nonce                 [16]byte
	ServerNonce           [16]byte
	P                     []byte
	Q                     []byte
	PublicKeyFingerprint  int64
	EncryptedData         []byte
}

// TypeID implements bin.Object.
func (*ReqDHParams) TypeID() uint32 { return IDReqDHParams }

// Encode implements bin.Encoder.
func (m *ReqDHParams) Encode(b *bin.Buffer) error {
	b.PutUint32(IDReqDHParams)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutBytes(m.P)
	b.PutBytes(m.Q)
	b.PutLong(m.PublicKeyFingerprint)
	b.PutBytes(m.EncryptedData)
	return nil
}

// Decode implements bin.Decoder.
func (m *ReqDHParams) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDReqDHParams); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	if m.P, err = b.Bytes(); err != nil {
		return err
	}
	if m.Q, err = b.Bytes(); err != nil {
		return err
	}
	if m.PublicKeyFingerprint, err = b.Long(); err != nil {
		return err
	}
	m.EncryptedData, err = b.Bytes()
	return err
}

// ServerDHParams is the sum type server_DH_params_{ok,fail}.
type ServerDHParams interface {
	bin.Object
	isServerDHParams()
}

// ServerDHParamsOk carries the encrypted server_DH_inner_data.
type ServerDHParamsOk struct {
	Nonce           [16]byte
	ServerNonce     [16]byte
	EncryptedAnswer []byte
}

func (*ServerDHParamsOk) isServerDHParams() {}

// TypeID implements bin.Object.
func (*ServerDHParamsOk) TypeID() uint32 { return IDServerDHParamsOk }

// Encode implements bin.Encoder.
func (m *ServerDHParamsOk) Encode(b *bin.Buffer) error {
	b.PutUint32(IDServerDHParamsOk)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutBytes(m.EncryptedAnswer)
	return nil
}

// Decode implements bin.Decoder.
func (m *ServerDHParamsOk) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDServerDHParamsOk); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	m.EncryptedAnswer, err = b.Bytes()
	return err
}

// ServerDHParamsFail signals the server rejected our req_DH_params.
type ServerDHParamsFail struct {
	Nonce         [16]byte
	ServerNonce   [16]byte
	NewNonceHash  [16]byte
}

func (*ServerDHParamsFail) isServerDHParams() {}

// TypeID implements bin.Object.
func (*ServerDHParamsFail) TypeID() uint32 { return IDServerDHParamsFail }

// Encode implements bin.Encoder.
func (m *ServerDHParamsFail) Encode(b *bin.Buffer) error {
	b.PutUint32(IDServerDHParamsFail)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutInt128(m.NewNonceHash)
	return nil
}

// Decode implements bin.Decoder.
func (m *ServerDHParamsFail) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDServerDHParamsFail); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	m.NewNonceHash, err = b.Int128()
	return err
}

// DecodeServerDHParams peeks the constructor ID and decodes the matching
// variant.
func DecodeServerDHParams(b *bin.Buffer) (ServerDHParams, error) {
	id, err := b.PeekID()
	if err != nil {
		return nil, err
	}
	switch id {
	case IDServerDHParamsOk:
		v := new(ServerDHParamsOk)
		return v, v.Decode(b)
	case IDServerDHParamsFail:
		v := new(ServerDHParamsFail)
		return v, v.Decode(b)
	default:
		return nil, unknownConstructor(id)
	}
}

// ServerDHInnerData is the plaintext recovered by decrypting
// ServerDHParamsOk.EncryptedAnswer.
type ServerDHInnerData struct {
	Nonce       [16]byte
	ServerNonce [16]byte
	G           int32
	DHPrime     []byte
	GA          []byte
	ServerTime  int32
}

// TypeID implements bin.Object.
func (*ServerDHInnerData) TypeID() uint32 { return IDServerDHInnerData }

// Encode implements bin.Encoder.
func (m *ServerDHInnerData) Encode(b *bin.Buffer) error {
	b.PutUint32(IDServerDHInnerData)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutInt32(m.G)
	b.PutBytes(m.DHPrime)
	b.PutBytes(m.GA)
	b.PutInt32(m.ServerTime)
	return nil
}

// Decode implements bin.Decoder.
func (m *ServerDHInnerData) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDServerDHInnerData); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	if m.G, err = b.Int32(); err != nil {
		return err
	}
	if m.DHPrime, err = b.Bytes(); err != nil {
		return err
	}
	if m.GA, err = b.Bytes(); err != nil {
		return err
	}
	m.ServerTime, err = b.Int32()
	return err
}

// ClientDHInnerData is encrypted and sent as set_client_DH_params'
// encrypted_data.
type ClientDHInnerData struct {
	Nonce       [16]byte
	ServerNonce [16]byte
	RetryID     int64
	GB          []byte
}

// TypeID implements bin.Object.
func (*ClientDHInnerData) TypeID() uint32 { return IDClientDHInnerData }

// Encode implements bin.Encoder.
func (m *ClientDHInnerData) Encode(b *bin.Buffer) error {
	b.PutUint32(IDClientDHInnerData)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutLong(m.RetryID)
	b.PutBytes(m.GB)
	return nil
}

// Decode implements bin.Decoder.
func (m *ClientDHInnerData) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDClientDHInnerData); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	if m.RetryID, err = b.Long(); err != nil {
		return err
	}
	m.GB, err = b.Bytes()
	return err
}

// SetClientDHParams is the client's third handshake message.
type SetClientDHParams struct {
	Nonce         [16]byte
	ServerNonce   [16]byte
	EncryptedData []byte
}

// TypeID implements bin.Object.
func (*SetClientDHParams) TypeID() uint32 { return IDSetClientDHParams }

// Encode implements bin.Encoder.
func (m *SetClientDHParams) Encode(b *bin.Buffer) error {
	b.PutUint32(IDSetClientDHParams)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutBytes(m.EncryptedData)
	return nil
}

// Decode implements bin.Decoder.
func (m *SetClientDHParams) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDSetClientDHParams); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	m.EncryptedData, err = b.Bytes()
	return err
}

// SetClientDHParamsAnswer is the sum type dh_gen_{ok,retry,fail}. Its
// accessors are exported (unlike ServerDHParams's marker method) because
// callers outside this package need to read the nonce/hash/number fields
// generically to verify the handshake, rather than switching on the
// concrete type.
type SetClientDHParamsAnswer interface {
	bin.Object
	DHGenNonce() [16]byte
	DHGenServerNonce() [16]byte
	DHGenHash() [16]byte
	DHGenNumber() byte
}

// DHGenOk signals a successful handshake.
type DHGenOk struct {
	Nonce         [16]byte
	ServerNonce   [16]byte
	NewNonceHash1 [16]byte
}

// TypeID implements bin.Object.
func (*DHGenOk) TypeID() uint32               { return IDDHGenOk }
func (m *DHGenOk) DHGenNonce() [16]byte       { return m.Nonce }
func (m *DHGenOk) DHGenServerNonce() [16]byte { return m.ServerNonce }
func (m *DHGenOk) DHGenHash() [16]byte        { return m.NewNonceHash1 }
func (*DHGenOk) DHGenNumber() byte            { return 1 }

// Encode implements bin.Encoder.
func (m *DHGenOk) Encode(b *bin.Buffer) error {
	b.PutUint32(IDDHGenOk)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutInt128(m.NewNonceHash1)
	return nil
}

// Decode implements bin.Decoder.
func (m *DHGenOk) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDDHGenOk); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	m.NewNonceHash1, err = b.Int128()
	return err
}

// DHGenRetry signals the server wants the client to retry key derivation.
type DHGenRetry struct {
	Nonce         [16]byte
	ServerNonce   [16]byte
	NewNonceHash2 [16]byte
}

// TypeID implements bin.Object.
func (*DHGenRetry) TypeID() uint32               { return IDDHGenRetry }
func (m *DHGenRetry) DHGenNonce() [16]byte       { return m.Nonce }
func (m *DHGenRetry) DHGenServerNonce() [16]byte { return m.ServerNonce }
func (m *DHGenRetry) DHGenHash() [16]byte        { return m.NewNonceHash2 }
func (*DHGenRetry) DHGenNumber() byte            { return 2 }

// Encode implements bin.Encoder.
func (m *DHGenRetry) Encode(b *bin.Buffer) error {
	b.PutUint32(IDDHGenRetry)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutInt128(m.NewNonceHash2)
	return nil
}

// Decode implements bin.Decoder.
func (m *DHGenRetry) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDDHGenRetry); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	m.NewNonceHash2, err = b.Int128()
	return err
}

// DHGenFail signals the handshake failed irrecoverably.
type DHGenFail struct {
	Nonce         [16]byte
	ServerNonce   [16]byte
	NewNonceHash3 [16]byte
}

// TypeID implements bin.Object.
func (*DHGenFail) TypeID() uint32               { return IDDHGenFail }
func (m *DHGenFail) DHGenNonce() [16]byte       { return m.Nonce }
func (m *DHGenFail) DHGenServerNonce() [16]byte { return m.ServerNonce }
func (m *DHGenFail) DHGenHash() [16]byte        { return m.NewNonceHash3 }
func (*DHGenFail) DHGenNumber() byte            { return 3 }

// Encode implements bin.Encoder.
func (m *DHGenFail) Encode(b *bin.Buffer) error {
	b.PutUint32(IDDHGenFail)
	b.PutInt128(m.Nonce)
	b.PutInt128(m.ServerNonce)
	b.PutInt128(m.NewNonceHash3)
	return nil
}

// Decode implements bin.Decoder.
func (m *DHGenFail) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDDHGenFail); err != nil {
		return err
	}
	var err error
	if m.Nonce, err = b.Int128(); err != nil {
		return err
	}
	if m.ServerNonce, err = b.Int128(); err != nil {
		return err
	}
	m.NewNonceHash3, err = b.Int128()
	return err
}

// DecodeSetClientDHParamsAnswer peeks the constructor ID and decodes the
// matching dh_gen_* variant.
func DecodeSetClientDHParamsAnswer(b *bin.Buffer) (SetClientDHParamsAnswer, error) {
	id, err := b.PeekID()
	if err != nil {
		return nil, err
	}
	switch id {
	case IDDHGenOk:
		v := new(DHGenOk)
		return v, v.Decode(b)
	case IDDHGenRetry:
		v := new(DHGenRetry)
		return v, v.Decode(b)
	case IDDHGenFail:
		v := new(DHGenFail)
		return v, v.Decode(b)
	default:
		return nil, unknownConstructor(id)
	}
}

func putLongVector(b *bin.Buffer, v []int64) {
	const vectorID = 0x1cb5c415
	b.PutUint32(vectorID)
	b.PutInt32(int32(len(v)))
	for _, x := range v {
		b.PutLong(x)
	}
}

func getLongVector(b *bin.Buffer) ([]int64, error) {
	const vectorID = 0x1cb5c415
	if err := b.ConsumeID(vectorID); err != nil {
		return nil, err
	}
	n, err := b.Int32()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, n)
	for i := int32(0); i < n; i++ {
		v, err := b.Long()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
