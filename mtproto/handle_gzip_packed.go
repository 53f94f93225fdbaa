package mtproto

import (
	"bytes"
	"io"

	"github.com/go-faster/errors"
	"github.com/klauspost/compress/gzip"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleGzipPacked decompresses a gzip_packed wrapper and redispatches its
// contents, preserving the carrying message's msg_id/seq_no since
// the decompressed body is logically that same message.
func (s *EncryptedSession) handleGzipPacked(body []byte, msg MtpMessage, depth int) ([]MtpMessage, []ServiceSignal, error) {
	var packed mt.GzipPacked
	if err := packed.Decode(bin.NewBuffer(body)); err != nil {
		return nil, nil, errors.Wrap(err, "decode gzip_packed")
	}
	zr, err := gzip.NewReader(bytes.NewReader(packed.PackedData))
	if err != nil {
		return nil, nil, errors.Wrap(err, "open gzip stream")
	}
	defer zr.Close()
	decompressed, err := io.ReadAll(zr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decompress gzip_packed body")
	}
	return s.dispatch(MtpMessage{MsgID: msg.MsgID, SeqNo: msg.SeqNo, Body: decompressed}, depth)
}
