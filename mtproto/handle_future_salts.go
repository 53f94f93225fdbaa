package mtproto

import (
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleFutureSalts records the salts the server offered for future use.
// future_salts is advisory bookkeeping for salt rotation: it is stored for
// the host to consult via EncryptedSession.FutureSalts and never delivered
// to the host as a message of its own.
func (s *EncryptedSession) handleFutureSalts(body []byte) error {
	var res mt.FutureSalts
	if err := res.Decode(bin.NewBuffer(body)); err != nil {
		return errors.Wrap(err, "decode future_salts")
	}
	s.futureSalts.Store(res.Salts)
	s.opts.Logger.Debug("got future salts", zap.Time("server_time", time.Unix(int64(res.Now), 0)))
	return nil
}
