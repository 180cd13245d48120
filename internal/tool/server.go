// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the citation pipeline as MCP tools.
package tool

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tenderkit/tender-citations/internal/config"
	"github.com/tenderkit/tender-citations/internal/evidence"
	"github.com/tenderkit/tender-citations/internal/evidence/loaders"
	"github.com/tenderkit/tender-citations/internal/logging"
)

// Toolset holds what the configurable tools need: server settings, the
// document loaders and a logger.
type Toolset struct {
	cfg      *config.Config
	log      logging.Logger
	pipeline *evidence.Pipeline
}

func NewToolset(cfg *config.Config, log logging.Logger) *Toolset {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Toolset{
		cfg:      cfg,
		log:      log.Named("tool"),
		pipeline: evidence.NewPipeline(loaders.Default()...),
	}
}

// Register adds every tool to server.
func (ts *Toolset) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataConvertCitationMarks, logged(ts.log, MetadataConvertCitationMarks.Name, ConvertCitationMarks))
	mcp.AddTool(server, MetadataCollectEvidences, logged(ts.log, MetadataCollectEvidences.Name, CollectEvidences))
	mcp.AddTool(server, MetadataAppendSource, logged(ts.log, MetadataAppendSource.Name, AppendSource))
	mcp.AddTool(server, MetadataExtractSource, logged(ts.log, MetadataExtractSource.Name, ExtractSource))
	mcp.AddTool(server, MetadataFormatRequirements, logged(ts.log, MetadataFormatRequirements.Name, FormatRequirements))
	mcp.AddTool(server, MetadataLocateQuote, logged(ts.log, MetadataLocateQuote.Name, ts.LocateQuote))
	mcp.AddTool(server, MetadataResolveEvidence, logged(ts.log, MetadataResolveEvidence.Name, ts.ResolveEvidence))
}

// NewServer builds an MCP server with all tools registered.
func NewServer(cfg *config.Config, log logging.Logger) *mcp.Server {
	ts := NewToolset(cfg, log)
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ts.cfg.Server.Name,
		Version: ts.cfg.Server.Version,
	}, nil)
	ts.Register(server)
	return server
}

func logged[In, Out any](log logging.Logger, name string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		res, out, err := h(ctx, req, in)
		if err != nil {
			log.Warn("tool call failed",
				logging.String("tool", name),
				logging.Duration("elapsed", time.Since(start)),
				logging.Err(err),
			)
			return res, out, err
		}
		log.Debug("tool call",
			logging.String("tool", name),
			logging.Duration("elapsed", time.Since(start)),
		)
		return res, out, nil
	}
}
