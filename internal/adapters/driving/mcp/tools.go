package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

// PositionInput addresses a single item.
type PositionInput struct {
	Collection int `json:"collection" jsonschema:"1-based collection (book) number"`
	Section    int `json:"section" jsonschema:"1-based section (chapter) number"`
	Item       int `json:"item" jsonschema:"1-based item (verse) number"`
}

func (p PositionInput) position() domain.Position {
	return domain.Position{Collection: p.Collection, Section: p.Section, Item: p.Item}
}

// SecondaryOutput is one secondary set's text for an item.
type SecondaryOutput struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// ItemOutput is the output schema for the get_item tool.
type ItemOutput struct {
	Position       string            `json:"position"`
	CollectionName string            `json:"collection_name,omitempty"`
	PrimaryCode    string            `json:"primary_code,omitempty"`
	Text           string            `json:"text"`
	Found          bool              `json:"found"`
	Secondary      []SecondaryOutput `json:"secondary,omitempty"`
}

// SectionInput addresses a section.
type SectionInput struct {
	Collection int `json:"collection" jsonschema:"1-based collection (book) number"`
	Section    int `json:"section" jsonschema:"1-based section (chapter) number"`
}

// RowOutput is one item of a section.
type RowOutput struct {
	Item      int               `json:"item"`
	Text      string            `json:"text"`
	Secondary []SecondaryOutput `json:"secondary,omitempty"`
}

// SectionOutput is the output schema for the read_section tool.
type SectionOutput struct {
	PrimaryCode    string      `json:"primary_code"`
	CollectionName string      `json:"collection_name"`
	Collection     int         `json:"collection"`
	Section        int         `json:"section"`
	SectionCount   int         `json:"section_count"`
	Items          []RowOutput `json:"items"`
}

// RecordOutput is the output schema for the record_position tool.
type RecordOutput struct {
	Recorded      bool `json:"recorded"`
	HistoryLength int  `json:"history_length"`
}

// PrimaryInput is the input schema for the set_primary tool.
type PrimaryInput struct {
	Code string `json:"code" jsonschema:"code of a loaded document set, case-insensitive"`
}

// SecondaryInput is the input schema for the set_secondary tool.
type SecondaryInput struct {
	Codes []string `json:"codes" jsonschema:"codes to show beside the primary; unknown codes and the primary are dropped"`
}

// SelectionOutput reports the selection after a change.
type SelectionOutput struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_item",
		Description: "Get the text of one item (verse) from the primary and secondary document sets",
	}, s.handleGetItem)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_section",
		Description: "Read a whole section (chapter) with secondary texts beside each item",
	}, s.handleReadSection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "record_position",
		Description: "Record a position in the reading history and make it the current position",
	}, s.handleRecordPosition)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_primary",
		Description: "Select the primary document set",
	}, s.handleSetPrimary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_secondary",
		Description: "Select the document sets shown beside the primary",
	}, s.handleSetSecondary)
}

// handleGetItem handles the get_item tool invocation.
func (s *Server) handleGetItem(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input PositionInput,
) (*mcp.CallToolResult, ItemOutput, error) {
	pos := input.position()

	primary, ok := s.ports.Reader.Primary()
	if !ok {
		return nil, ItemOutput{}, domain.ErrNotReady
	}
	if clamped, ok := primary.Clamp(pos); ok {
		pos = clamped
	}

	output := ItemOutput{
		Position:    pos.String(),
		PrimaryCode: primary.Code,
	}
	output.Text, output.Found = s.ports.Reader.GetItemText(pos)
	output.CollectionName, _ = s.ports.Reader.GetCollectionName(pos.Collection)

	for _, set := range s.ports.Reader.Secondaries() {
		if text, ok := s.ports.Reader.GetSecondaryItemText(set.Code, pos); ok {
			output.Secondary = append(output.Secondary, SecondaryOutput{Code: set.Code, Text: text})
		}
	}

	return nil, output, nil
}

// handleReadSection handles the read_section tool invocation.
func (s *Server) handleReadSection(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SectionInput,
) (*mcp.CallToolResult, SectionOutput, error) {
	view, err := s.ports.Reader.ReadSection(input.Collection, input.Section)
	if err != nil {
		return nil, SectionOutput{}, fmt.Errorf("reading section: %w", err)
	}

	output := SectionOutput{
		PrimaryCode:    view.PrimaryCode,
		CollectionName: view.CollectionName,
		Collection:     view.Position.Collection,
		Section:        view.Position.Section,
		SectionCount:   view.SectionCount,
		Items:          make([]RowOutput, len(view.Rows)),
	}
	for i, row := range view.Rows {
		out := RowOutput{Item: row.Item, Text: row.Text}
		for _, sec := range row.Secondary {
			out.Secondary = append(out.Secondary, SecondaryOutput{Code: sec.Code, Text: sec.Text})
		}
		output.Items[i] = out
	}

	return nil, output, nil
}

// handleRecordPosition handles the record_position tool invocation.
// Invalid positions are ignored and reported as not recorded.
func (s *Server) handleRecordPosition(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PositionInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	pos := input.position()

	s.ports.Selection.RecordPosition(ctx, pos)
	recorded := pos.Valid()
	if recorded {
		if err := s.ports.Selection.SetCurrentPosition(ctx, pos); err != nil {
			return nil, RecordOutput{}, fmt.Errorf("setting current position: %w", err)
		}
	}

	return nil, RecordOutput{
		Recorded:      recorded,
		HistoryLength: len(s.ports.Selection.PositionHistory(ctx)),
	}, nil
}

// handleSetPrimary handles the set_primary tool invocation.
func (s *Server) handleSetPrimary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PrimaryInput,
) (*mcp.CallToolResult, SelectionOutput, error) {
	if !s.ports.Selection.SetPrimaryCode(ctx, input.Code) {
		return nil, SelectionOutput{}, fmt.Errorf("%w: %q is not loaded", domain.ErrInvalidSelection, input.Code)
	}
	return nil, s.selection(ctx), nil
}

// handleSetSecondary handles the set_secondary tool invocation.
func (s *Server) handleSetSecondary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SecondaryInput,
) (*mcp.CallToolResult, SelectionOutput, error) {
	if _, ok := s.ports.Selection.SetSecondaryCodes(ctx, input.Codes); !ok {
		return nil, SelectionOutput{}, errors.New("secondary codes could not be saved")
	}
	return nil, s.selection(ctx), nil
}

func (s *Server) selection(ctx context.Context) SelectionOutput {
	secondary := s.ports.Selection.SecondaryCodes(ctx)
	if secondary == nil {
		secondary = []string{}
	}
	return SelectionOutput{
		Primary:   s.ports.Selection.PrimaryCode(ctx),
		Secondary: secondary,
	}
}
