package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	statsURI     = "filmvault://catalog/stats"
	moviePrefix  = "filmvault://movies/"
	movieURITmpl = moviePrefix + "{movie_id}"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {
	srv.AddResource(
		mcp.NewResource(
			statsURI,
			"Catalogue Statistics",
			mcp.WithResourceDescription(
				"Row counts of every catalogue table: movies, directors, actors, "+
					"their links and movie facts.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleStatsResource,
	)

	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			movieURITmpl,
			"Movie With Facts",
			mcp.WithTemplateDescription("A movie together with its trivia facts."),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleMovieResource,
	)
}

// handleStatsResource returns the table row counts.
func (s *MCPServer) handleStatsResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalogue: %w", err)
	}
	return jsonResource(statsURI, counts)
}

// handleMovieResource resolves filmvault://movies/{movie_id}.
func (s *MCPServer) handleMovieResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	raw := strings.TrimPrefix(uri, moviePrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if raw == uri || err != nil {
		return nil, fmt.Errorf("invalid movie URI %q: expected %s", uri, movieURITmpl)
	}

	movie, err := s.catalog.Movies.WithFacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, movie)
}

func jsonResource(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
