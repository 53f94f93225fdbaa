package mtproto

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleNewSessionCreated accepts the new salt the server reports; the
// host discards pending requests older than FirstMsgID.
func (s *EncryptedSession) handleNewSessionCreated(body []byte) ([]ServiceSignal, error) {
	var note mt.NewSessionCreated
	if err := note.Decode(bin.NewBuffer(body)); err != nil {
		return nil, errors.Wrap(err, "decode new_session_created")
	}
	s.salt.Store(note.ServerSalt)
	s.opts.Logger.Debug("new_session_created",
		zap.Int64("first_msg_id", note.FirstMsgID), zap.Int64("salt", note.ServerSalt))
	return []ServiceSignal{
		SaltCorrected{NewSalt: note.ServerSalt},
		SessionReset{FirstMsgID: note.FirstMsgID},
	}, nil
}
