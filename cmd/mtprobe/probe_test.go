package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunPrintsFingerprintAndSalt(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(&out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "auth_key_fingerprint="))
	require.True(t, strings.HasPrefix(lines[1], "salt="))
}
