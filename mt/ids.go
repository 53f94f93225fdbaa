// Package mt implements the hand-written MTProto service schema: the small,
// stable set of constructors used by the handshake and by service-message
// dispatch. This mirrors the real gotd/td "mt" package's role — MTProto-
// level types, distinct from the generated full Telegram API schema in
// "tg".
//
// These constructor IDs are Telegram's own protocol constants, unchanged
// for the lifetime of MTProto 2.0; they are not an implementation choice.
package mt

// Constructor IDs, in the order they appear in the handshake and in
// service-message dispatch.
const (
	IDResPQ                = 0x05162463
	IDReqPqMulti           = 0xbe7e8ef1
	IDPQInnerDataDC        = 0xa9f55f95
	IDReqDHParams          = 0xd712e4be
	IDServerDHParamsFail   = 0x79cb045d
	IDServerDHParamsOk     = 0xd0e8075c
	IDServerDHInnerData    = 0xb5890dba
	IDClientDHInnerData    = 0x6643b654
	IDSetClientDHParams    = 0xf5045f1f
	IDDHGenOk              = 0x3bcbf734
	IDDHGenRetry           = 0x46dc1fb9
	IDDHGenFail            = 0xa69dae02
	IDRPCResult            = 0xf35c6d01
	IDRPCError             = 0x2144ca19
	IDMsgContainer         = 0x73f1f8dc
	IDMsgsAck              = 0x62d6b459
	IDBadMsgNotification   = 0xa7eff811
	IDBadServerSalt        = 0xedab447b
	IDNewSessionCreated    = 0x9ec20908
	IDPing                 = 0x7abe77ec
	IDPong                 = 0x347773c5
	IDGzipPacked           = 0x3072cfa1
	IDFutureSalt           = 0x0949d9dc
	IDFutureSalts          = 0xae500895
)
