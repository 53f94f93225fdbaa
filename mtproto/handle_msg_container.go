package mtproto

import (
	"github.com/go-faster/errors"
	"go.uber.org/multierr"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleMsgContainer unwraps a msg_container and dispatches each entry in
// turn. Container-in-container nesting is forbidden by the protocol;
// depth > 0 here means we're already inside one, so it's rejected rather
// than silently flattened.
func (s *EncryptedSession) handleMsgContainer(body []byte, depth int) ([]MtpMessage, []ServiceSignal, error) {
	if depth > 0 {
		return nil, nil, errors.Wrap(ErrMalformedFrame, "nested msg_container")
	}
	var container mt.MsgContainer
	if err := container.Decode(bin.NewBuffer(body)); err != nil {
		return nil, nil, errors.Wrap(err, "decode msg_container")
	}

	var (
		messages []MtpMessage
		signals  []ServiceSignal
		errs     error
	)
	for _, entry := range container.Messages {
		inner := MtpMessage{MsgID: entry.MsgID, SeqNo: entry.Seqno, Body: entry.Body}
		m, sg, err := s.dispatch(inner, depth+1)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		messages = append(messages, m...)
		signals = append(signals, sg...)
	}
	return messages, signals, errs
}
