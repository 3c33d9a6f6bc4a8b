package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HMaxF/jesoes.com/internal/core/domain"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached document sets",
	Long: `Lists the document sets loaded from the cache.
The primary set is marked with * and secondary sets with +.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var readCmd = &cobra.Command{
	Use:   "read <collection> <section> [item]",
	Short: "Read a section with secondary sets alongside",
	Long: `Prints a whole section of the primary set. Each item is followed by
the same item from every secondary set that has it.
Out-of-range numbers are clamped. When an item is given it is recorded
in the reading history.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRead,
}

var textCmd = &cobra.Command{
	Use:   "text <collection> <section> <item>",
	Short: "Print one item of the primary set",
	Args:  cobra.ExactArgs(3),
	RunE:  runText,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(textCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if readerService == nil || selectionService == nil {
		return errors.New("reader service not configured")
	}
	if err := ensureLoaded(cmd); err != nil {
		return err
	}

	docs := readerService.Documents()
	if listJSON {
		return outputDocumentsJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No document sets cached. Run 'jesoes sync'.")
		return nil
	}

	primary, _ := readerService.Primary()
	secondary := make(map[string]bool)
	for _, s := range readerService.Secondaries() {
		secondary[strings.ToLower(s.Code)] = true
	}

	for _, d := range docs {
		mark := " "
		switch {
		case primary != nil && primary.MatchesCode(d.Code):
			mark = "*"
		case secondary[strings.ToLower(d.Code)]:
			mark = "+"
		}
		cmd.Printf("%s %-8s %-40s %-10s %d\n", mark, d.Code, d.DisplayName, d.Language, d.Year)
	}
	return nil
}

func outputDocumentsJSON(cmd *cobra.Command, docs []*domain.DocumentSet) error {
	type entry struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		Language string `json:"language"`
		Locale   string `json:"locale"`
		Year     int    `json:"year"`
		Version  string `json:"version"`
	}

	out := make([]entry, len(docs))
	for i, d := range docs {
		out[i] = entry{
			Code:     d.Code,
			Name:     d.DisplayName,
			Language: d.Language,
			Locale:   d.Locale,
			Year:     d.Year,
			Version:  d.LastUpdatedAt,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runRead(cmd *cobra.Command, args []string) error {
	if readerService == nil || selectionService == nil {
		return errors.New("reader service not configured")
	}

	collection, section, err := parseCoordinates(args[0], args[1])
	if err != nil {
		return err
	}
	if err := ensureLoaded(cmd); err != nil {
		return err
	}

	view, err := readerService.ReadSection(collection, section)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	ctx := cmd.Context()
	current := domain.Position{Collection: view.Position.Collection, Section: view.Position.Section, Item: 1}
	if len(args) == 3 {
		item, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: item %q is not a number", domain.ErrInvalidInput, args[2])
		}
		current.Item = max(1, min(item, len(view.Rows)))
		selectionService.RecordPosition(ctx, current)
	}
	if err := selectionService.SetCurrentPosition(ctx, current); err != nil {
		return err
	}

	render := newRenderer(cmd.OutOrStdout())
	cmd.Println(render.heading(fmt.Sprintf("%s %d (%s)", view.CollectionName, view.Position.Section, view.PrimaryCode)))
	for _, row := range view.Rows {
		cmd.Printf("%3d  %s\n", row.Item, render.item(row.Text))
		for _, s := range row.Secondary {
			cmd.Printf("     %s\n", render.secondary(s.Code, s.Text))
		}
	}
	return nil
}

func runText(cmd *cobra.Command, args []string) error {
	if readerService == nil {
		return errors.New("reader service not configured")
	}

	pos, err := domain.ParsePosition(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if err := ensureLoaded(cmd); err != nil {
		return err
	}

	text, ok := readerService.GetItemText(pos)
	if !ok {
		return fmt.Errorf("%w: no text at %s", domain.ErrNotFound, pos)
	}
	cmd.Println(newRenderer(cmd.OutOrStdout()).item(text))
	return nil
}

// parseCoordinates parses a collection and section pair.
func parseCoordinates(collection, section string) (int, int, error) {
	c, err := strconv.Atoi(collection)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: collection %q is not a number", domain.ErrInvalidInput, collection)
	}
	s, err := strconv.Atoi(section)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: section %q is not a number", domain.ErrInvalidInput, section)
	}
	return c, s, nil
}

// renderer styles item text for a terminal. Writers that are not
// terminals get plain text.
type renderer struct {
	styled bool
	title  lipgloss.Style
	marker lipgloss.Style
	code   lipgloss.Style
	muted  lipgloss.Style
}

func newRenderer(w io.Writer) renderer {
	f, ok := w.(*os.File)
	return renderer{
		styled: ok && term.IsTerminal(int(f.Fd())),
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		marker: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6B7280")),
		code:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
	}
}

func (r renderer) heading(s string) string {
	if !r.styled {
		return s
	}
	return r.title.Render(s)
}

// item renders text with pericope markers set apart.
func (r renderer) item(text string) string {
	if !r.styled {
		return text
	}
	var b strings.Builder
	for _, tok := range domain.Tokenize(text) {
		if tok.Marker {
			b.WriteString(r.marker.Render(tok.Text))
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

func (r renderer) secondary(code, text string) string {
	if !r.styled {
		return fmt.Sprintf("[%s] %s", code, text)
	}
	return r.code.Render("["+code+"]") + " " + r.muted.Render(r.item(text))
}
