// Package toolutil provides shared helpers for go_vidsum MCP tools.
package toolutil

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// slowTool is the duration after which a tool call is logged as slow.
const slowTool = 90 * time.Second

// Handler adapts fn into a typed MCP tool handler. Failures are returned as
// *engine.Error so clients see the stable error code in the tool result.
func Handler[In, Out any](tool string, fn func(context.Context, In) (Out, error)) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		var out Out
		err := engine.TrackOperation(ctx, tool, slowTool, func(ctx context.Context) error {
			var err error
			out, err = fn(ctx, input)
			return err
		})
		if err != nil {
			var zero Out
			e := engine.AsError(err)
			slog.Debug("tool failed", slog.String("tool", tool), slog.String("code", string(e.Code)))
			return nil, zero, e
		}
		return nil, out, nil
	}
}

// Require returns ERR_INVALID_INPUT when value is blank.
func Require(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return engine.Errorf(engine.CodeInvalidInput, "%s is required", field)
	}
	return nil
}
