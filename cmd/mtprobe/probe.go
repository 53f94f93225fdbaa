package main

import (
	"context"
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/exchange"
	"go.mau.fi/mtproto-core/mt"
	"go.mau.fi/mtproto-core/mtproto"
	"go.mau.fi/mtproto-core/tgtest"
	"go.mau.fi/mtproto-core/transport"
)

// Run drives one full authorization handshake — req_pq_multi through
// set_client_DH_params — between a real exchange.Authorization and a
// tgtest.HandshakeServer over an in-process transport.Loopback pair, then
// writes the auth key fingerprint and initial salt both sides derived to
// out. It fails if the two sides land on different keys.
func Run(out io.Writer, logger *zap.Logger) error {
	ctx := context.Background()
	clientTransport, serverTransport := transport.NewLoopbackPair()

	server, err := tgtest.NewHandshakeServer(serverTransport, tgtest.HandshakeOptions{Logger: logger})
	if err != nil {
		return errors.Wrap(err, "start handshake server")
	}

	type serverOutcome struct {
		result tgtest.HandshakeResult
		err    error
	}
	serverDone := make(chan serverOutcome, 1)
	go func() {
		result, err := server.Serve(ctx)
		serverDone <- serverOutcome{result, err}
	}()

	keys := crypto.WithExtraKeys(crypto.DefaultKeys, server.Key())
	auth := exchange.New(exchange.Options{Logger: logger, Keys: keys})
	clientResult, err := driveHandshake(ctx, clientTransport, auth)
	if err != nil {
		return errors.Wrap(err, "client handshake")
	}

	outcome := <-serverDone
	if outcome.err != nil {
		return errors.Wrap(outcome.err, "server handshake")
	}
	if clientResult.AuthKey.KeyID() != outcome.result.AuthKey.KeyID() {
		return errors.New("mtprobe: client and server derived different auth keys")
	}

	fmt.Fprintf(out, "auth_key_fingerprint=%x\n", clientResult.AuthKey.KeyID())
	fmt.Fprintf(out, "salt=%d\n", clientResult.FirstSalt)
	return nil
}

// driveHandshake walks an Authorization through Step1..Finish, framing
// each request/response with a PlainSession exactly as a real client would
// over its transport.
func driveHandshake(ctx context.Context, t transport.Transport, auth *exchange.Authorization) (exchange.Result, error) {
	plain := mtproto.NewPlainSession(mtproto.Options{})

	req1, err := auth.Step1()
	if err != nil {
		return exchange.Result{}, err
	}
	if err := sendPlain(ctx, t, plain, req1); err != nil {
		return exchange.Result{}, err
	}

	resPQBody, err := recvPlain(ctx, t, plain)
	if err != nil {
		return exchange.Result{}, err
	}
	var resPQ mt.ResPQ
	if err := resPQ.Decode(bin.NewBuffer(resPQBody)); err != nil {
		return exchange.Result{}, err
	}

	req2, err := auth.Step2(&resPQ)
	if err != nil {
		return exchange.Result{}, err
	}
	if err := sendPlain(ctx, t, plain, req2); err != nil {
		return exchange.Result{}, err
	}

	dhParamsBody, err := recvPlain(ctx, t, plain)
	if err != nil {
		return exchange.Result{}, err
	}
	dhParams, err := mt.DecodeServerDHParams(bin.NewBuffer(dhParamsBody))
	if err != nil {
		return exchange.Result{}, err
	}

	req3, err := auth.Step3(dhParams)
	if err != nil {
		return exchange.Result{}, err
	}
	if err := sendPlain(ctx, t, plain, req3); err != nil {
		return exchange.Result{}, err
	}

	answerBody, err := recvPlain(ctx, t, plain)
	if err != nil {
		return exchange.Result{}, err
	}
	answer, err := mt.DecodeSetClientDHParamsAnswer(bin.NewBuffer(answerBody))
	if err != nil {
		return exchange.Result{}, err
	}

	return auth.Finish(answer)
}

func sendPlain(ctx context.Context, t transport.Transport, p *mtproto.PlainSession, obj bin.Encoder) error {
	var buf bin.Buffer
	if err := obj.Encode(&buf); err != nil {
		return err
	}
	return t.Send(ctx, p.Pack(buf.Raw()))
}

func recvPlain(ctx context.Context, t transport.Transport, p *mtproto.PlainSession) ([]byte, error) {
	frame, err := t.Recv(ctx)
	if err != nil {
		return nil, err
	}
	return p.Unpack(frame)
}
