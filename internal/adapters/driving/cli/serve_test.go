package cli

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_Flags(t *testing.T) {
	addr := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, "", addr.DefValue)

	auto := serveCmd.Flags().Lookup("auto-port")
	require.NotNil(t, auto)
	assert.Equal(t, "false", auto.DefValue)

	assert.Equal(t, "true", serveCmd.Annotations[annotationDotEnv])
}

func TestNextFreeAddr(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	got, err := nextFreeAddr("127.0.0.1:" + strconv.Itoa(busy))
	require.NoError(t, err)

	host, portStr, err := net.SplitHostPort(got)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	assert.Greater(t, port, busy)
	assert.LessOrEqual(t, port, busy+portSearchRange)
}

func TestNextFreeAddr_Passthrough(t *testing.T) {
	got, err := nextFreeAddr(":0")
	require.NoError(t, err)
	assert.Equal(t, ":0", got)

	_, err = nextFreeAddr("no-port")
	assert.Error(t, err)
}

func TestServeCmd_RequiresServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	formatService = nil

	_, _, err := execute(t, "serve", "--addr", "127.0.0.1:0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "format service is required")
}

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	searchService = nil

	_, _, err := execute(t, "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service")
}
