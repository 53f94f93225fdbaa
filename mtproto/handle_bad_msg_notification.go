package mtproto

import (
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleBadMsgNotification reacts to a bad_msg_notification. Codes 16/17
// mean our clock is off: the server's corrected view of
// "now" is encoded in the upper 32 bits of msg.MsgID, the msg_id the server
// itself assigned to the message carrying this notification. Codes 32/33
// signal seq_no desync, which this session cannot repair on its own.
//
// Code 48 ("incorrect server salt") is sometimes sent by servers in place
// of a proper bad_server_salt, but bad_msg_notification's wire layout
// carries no replacement salt — per the design decision to treat "no salt
// present" as fatal rather than guess one, it falls into the same default
// handling as any other unrecoverable code.
func (s *EncryptedSession) handleBadMsgNotification(body []byte, msg MtpMessage) ([]ServiceSignal, error) {
	var note mt.BadMsgNotification
	if err := note.Decode(bin.NewBuffer(body)); err != nil {
		return nil, errors.Wrap(err, "decode bad_msg_notification")
	}

	switch note.ErrorCode {
	case 16, 17:
		serverSeconds := msg.MsgID >> 32
		localSeconds := s.opts.Clock.Now().Unix()
		newOffset := int32(serverSeconds - localSeconds)
		s.msgIDGen.SetTimeOffset(int64(newOffset) * int64(time.Second))
		s.msgIDGen.ResetLastMsgID()
		s.opts.Logger.Debug("bad_msg_notification: corrected time_offset",
			zap.Int32("code", note.ErrorCode), zap.Int32("new_offset", newOffset))
		return []ServiceSignal{TimeSkew{NewOffset: newOffset}}, nil
	default:
		s.opts.Logger.Warn("bad_msg_notification: unrecoverable", zap.Int32("code", note.ErrorCode))
		return []ServiceSignal{BadMsgFatal{Code: note.ErrorCode}}, nil
	}
}
