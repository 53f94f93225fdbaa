package mtproto

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleBadServerSalt adopts the corrected salt immediately, so the next
// outgoing frame carries it. The host is responsible for re-sending the
// message bad_msg_id named.
func (s *EncryptedSession) handleBadServerSalt(body []byte) ([]ServiceSignal, error) {
	var note mt.BadServerSalt
	if err := note.Decode(bin.NewBuffer(body)); err != nil {
		return nil, errors.Wrap(err, "decode bad_server_salt")
	}
	s.salt.Store(note.NewServerSalt)
	s.opts.Logger.Debug("bad_server_salt: adopted corrected salt",
		zap.Int64("bad_msg_id", note.BadMsgID), zap.Int64("new_salt", note.NewServerSalt))
	return []ServiceSignal{SaltCorrected{NewSalt: note.NewServerSalt}}, nil
}
