// Command mtprobe runs one authorization handshake against an in-process
// fake datacenter and prints the derived auth key fingerprint and initial
// salt, as a runnable proof that the handshake and session core work end
// to end.
package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit.

	if err := Run(os.Stdout, logger); err != nil {
		logger.Fatal("mtprobe: handshake failed", zap.Error(err))
	}
}
