package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for jesoes resources.
	uriScheme = "jesoes://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Document sets loaded from the local cache",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recently visited positions, most recent first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "selection",
		Name:        "selection",
		Description: "Primary and secondary document sets, current position and tab",
		MIMEType:    "application/json",
	}, s.handleSelectionResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{code}",
		Name:        "document-outline",
		Description: "Collections and section counts of one document set",
		MIMEType:    "application/json",
	}, s.handleOutlineResource)
}

// handleDocumentsResource lists the loaded document sets.
func (s *Server) handleDocumentsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type docInfo struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		Language    string `json:"language"`
		Locale      string `json:"locale"`
		Year        int    `json:"year"`
		Version     string `json:"version"`
		Collections int    `json:"collections"`
	}

	docs := s.ports.Reader.Documents()
	infos := make([]docInfo, len(docs))
	for i, d := range docs {
		infos[i] = docInfo{
			Code:        d.Code,
			Name:        d.DisplayName,
			Language:    d.Language,
			Locale:      d.Locale,
			Year:        d.Year,
			Version:     d.LastUpdatedAt,
			Collections: len(d.Collections),
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleHistoryResource returns the reading history.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type visit struct {
		Position       string    `json:"position"`
		CollectionName string    `json:"collection_name,omitempty"`
		VisitedAt      time.Time `json:"visited_at"`
	}

	history := s.ports.Selection.PositionHistory(ctx)
	visits := make([]visit, len(history))
	for i, h := range history {
		name, _ := s.ports.Reader.GetCollectionName(h.Collection)
		visits[i] = visit{
			Position:       h.Position.String(),
			CollectionName: name,
			VisitedAt:      h.VisitedAt,
		}
	}

	return jsonResult(req.Params.URI, visits)
}

// handleSelectionResource returns the current selection.
func (s *Server) handleSelectionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type selectionInfo struct {
		SelectionOutput
		Position string `json:"position"`
		Tab      string `json:"tab"`
		Ready    *bool  `json:"ready,omitempty"`
	}

	info := selectionInfo{
		SelectionOutput: s.selection(ctx),
		Position:        s.ports.Selection.CurrentPosition(ctx).String(),
		Tab:             s.ports.Selection.SelectedTab(ctx).String(),
	}
	if s.ports.Sync != nil {
		ready := s.ports.Sync.Status().Ready
		info.Ready = &ready
	}

	return jsonResult(req.Params.URI, info)
}

// handleOutlineResource returns the collections of one document set.
func (s *Server) handleOutlineResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	code := extractCode(req.Params.URI)
	if code == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type collectionInfo struct {
		Number   int    `json:"number"`
		Name     string `json:"name"`
		Sections int    `json:"sections"`
	}

	for _, d := range s.ports.Reader.Documents() {
		if !d.MatchesCode(code) {
			continue
		}
		outline := make([]collectionInfo, len(d.Collections))
		for i, c := range d.Collections {
			outline[i] = collectionInfo{Number: i + 1, Name: c.Name, Sections: len(c.Sections)}
		}
		return jsonResult(req.Params.URI, outline)
	}

	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// jsonResult renders v as an indented JSON resource.
func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCode extracts the set code from a URI like jesoes://documents/{code}.
func extractCode(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	code := strings.TrimPrefix(uri, prefix)
	if strings.Contains(code, "/") {
		return ""
	}
	return code
}
