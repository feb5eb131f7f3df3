package mcp

import (
	"context"
	"encoding/json"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"stroke-mcs/internal/config"
	"stroke-mcs/internal/simulation"
)

const serverName = "stroke-mcs"

// Server holds the state for the MCP server.
type Server struct {
	cfg     *config.AppConfig
	metrics *simulation.Metrics
	server  *sdk.Server
}

// NewServer creates a new MCP server with every routing tool registered. metrics may be nil.
func NewServer(cfg *config.AppConfig, metrics *simulation.Metrics, version string) *Server {
	s := &Server{
		cfg:     cfg,
		metrics: metrics,
		server:  sdk.NewServer(&sdk.Implementation{Name: serverName, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the protocol over stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("server", serverName).Msg("Serving MCP over stdio")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport, e.g. an in-memory pipe.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) formatResult(data interface{}) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

// textResult wraps handler output as a single JSON text block.
func (s *Server) textResult(data interface{}, err error) (*sdk.CallToolResult, any, error) {
	if err != nil {
		return nil, nil, err
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: s.formatResult(data)}},
	}, nil, nil
}
