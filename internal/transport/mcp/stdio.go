package mcp

import (
	"context"
	"errors"
	"io"
	stdlog "log"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/stravamcp/pkg/log"
	"github.com/sandevgo/stravamcp/pkg/srv"
)

var _ srv.Service = (*StdioService)(nil)

// StdioService serves the MCP server on a pair of streams, normally the
// process stdin and stdout.
type StdioService struct {
	server *mcpserver.StdioServer
	in     io.Reader
	out    io.Writer
}

func NewStdioService(s *mcpserver.MCPServer, in io.Reader, out io.Writer) *StdioService {
	return &StdioService{
		server: mcpserver.NewStdioServer(s),
		in:     in,
		out:    out,
	}
}

// Start blocks until the client closes the input stream or ctx is done.
// A closed input stream ends the process with srv.ErrStopped.
func (s *StdioService) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	s.server.SetErrorLogger(stdlog.New(logger, "", 0))

	logger.Info().Msg("mcp server listening on stdio")

	err := s.server.Listen(ctx, s.in, s.out)
	if ctx.Err() != nil {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return srv.ErrStopped
	}
	return err
}

func (s *StdioService) Shutdown(context.Context) error {
	return nil
}
