package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil analysis service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{}, "")
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingAnalysisService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}}, "")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

// connect runs an in-memory client session against the server.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestServer_Initialize(t *testing.T) {
	t.Run("reports metadata and instructions", func(t *testing.T) {
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}}, "1.4.0")
		require.NoError(t, err)

		result := connect(t, server).InitializeResult()

		require.NotNil(t, result.ServerInfo)
		assert.Equal(t, "threadsense", result.ServerInfo.Name)
		assert.Equal(t, "1.4.0", result.ServerInfo.Version)
		assert.Contains(t, result.Instructions, "analyze_video")
		assert.Contains(t, result.Instructions, "ask_question")
		assert.NotContains(t, result.Instructions, "threadsense://history")
	})

	t.Run("mentions history when enabled", func(t *testing.T) {
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}, History: &mockHistoryService{}}, "")
		require.NoError(t, err)

		result := connect(t, server).InitializeResult()

		assert.Equal(t, DefaultVersion, result.ServerInfo.Version)
		assert.Contains(t, result.Instructions, "threadsense://history")
	})
}

func TestServer_ListTools(t *testing.T) {
	server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}}, "")
	require.NoError(t, err)

	tools, err := connect(t, server).ListTools(context.Background(), nil)

	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"analyze_video", "ask_question", "get_session"}, names)
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}}, "")
	require.NoError(t, err)
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + EndpointPath)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil analysis service returns error", func(t *testing.T) {
		ports := &Ports{History: &mockHistoryService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingAnalysisService)
	})

	t.Run("analysis only is valid", func(t *testing.T) {
		ports := &Ports{Analysis: &mockAnalysisService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Analysis: &mockAnalysisService{},
			History:  &mockHistoryService{},
		}
		assert.NoError(t, ports.Validate())
	})
}
