// Package highlight renders directive TOML with syntax coloring for
// terminal listings.
package highlight

import (
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/toml"
)

// kind classifies a source span for styling.
type kind string

const (
	kindKey     kind = "key"
	kindString  kind = "string"
	kindNumber  kind = "number"
	kindBoolean kind = "boolean"
	kindComment kind = "comment"
)

var kindStyles = map[kind]lipgloss.Style{
	kindKey:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	kindString:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	kindNumber:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	kindBoolean: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	kindComment: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

// span is a half-open byte range of the source with one classification.
type span struct {
	start, end uint32
	kind       kind
}

// TOML returns source with terminal styling applied to keys, values, and
// comments. Unparseable input comes back unchanged.
func TOML(source []byte) string {
	parser := sitter.NewParser()
	parser.SetLanguage(toml.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return string(source)
	}
	defer tree.Close()

	return render(source, collectSpans(tree.RootNode()))
}

// collectSpans walks the syntax tree and records every classifiable span in
// document order.
func collectSpans(root *sitter.Node) []span {
	var spans []span
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if k, ok := kindOf(node.Type()); ok {
			spans = append(spans, span{start: node.StartByte(), end: node.EndByte(), kind: k})
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return spans
}

func kindOf(nodeType string) (kind, bool) {
	switch nodeType {
	case "bare_key", "quoted_key":
		return kindKey, true
	case "string":
		return kindString, true
	case "integer", "float", "offset_date_time", "local_date", "local_time", "local_date_time":
		return kindNumber, true
	case "boolean":
		return kindBoolean, true
	case "comment":
		return kindComment, true
	default:
		return "", false
	}
}

func render(source []byte, spans []span) string {
	var b strings.Builder
	var pos uint32
	for _, s := range spans {
		if s.start < pos || s.end > uint32(len(source)) {
			continue
		}
		b.Write(source[pos:s.start])
		b.WriteString(kindStyles[s.kind].Render(string(source[s.start:s.end])))
		pos = s.end
	}
	b.Write(source[pos:])
	return b.String()
}
