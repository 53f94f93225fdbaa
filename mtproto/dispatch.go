package mtproto

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
	"go.mau.fi/mtproto-core/tmap"
)

// dispatch classifies a decrypted message by its leading constructor ID
// and routes it to the matching handle_*.go function. Bodies this package
// doesn't specifically know about — including any updates* constructor
// from the full Telegram API schema — are delivered to the host
// unmodified: the "do not drop" rule for unknown bodies is satisfied by
// passthrough rather than by re-wrapping them in a duplicate data model
// the host's own TL layer already owns.
func (s *EncryptedSession) dispatch(msg MtpMessage, depth int) ([]MtpMessage, []ServiceSignal, error) {
	id, err := bin.NewBuffer(msg.Body).PeekID()
	if err != nil {
		return nil, nil, errors.Wrap(ErrMalformedFrame, "message body too short to carry a constructor ID")
	}

	switch id {
	case mt.IDMsgContainer:
		return s.handleMsgContainer(msg.Body, depth)
	case mt.IDGzipPacked:
		return s.handleGzipPacked(msg.Body, msg, depth)
	case mt.IDBadServerSalt:
		sig, err := s.handleBadServerSalt(msg.Body)
		return nil, sig, err
	case mt.IDBadMsgNotification:
		sig, err := s.handleBadMsgNotification(msg.Body, msg)
		return nil, sig, err
	case mt.IDNewSessionCreated:
		sig, err := s.handleNewSessionCreated(msg.Body)
		return nil, sig, err
	case mt.IDFutureSalts:
		return nil, nil, s.handleFutureSalts(msg.Body)
	case mt.IDPong:
		s.handlePong(msg.Body)
		return []MtpMessage{msg}, nil, nil
	case mt.IDMsgsAck:
		s.handleMsgsAck(msg.Body)
		return []MtpMessage{msg}, nil, nil
	case mt.IDRPCResult:
		s.handleRPCResult(msg.Body)
		return []MtpMessage{msg}, nil, nil
	default:
		s.opts.Logger.Debug("delivering message with an unrecognized constructor",
			zap.String("constructor", tmap.MT.GetOrHex(id)))
		return []MtpMessage{msg}, nil, nil
	}
}
