package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/creachadair/jrpc2"

	"github.com/vito/shape/pkg/format"
	"github.com/vito/shape/pkg/js"
)

func (h *Handler) handleTextDocumentFormatting(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentFormattingParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	f, ok := h.file(params.TextDocument.URI)
	if !ok {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "document not found: %v", params.TextDocument.URI)
	}

	opts := h.options(params.TextDocument.URI, params.Options)
	formatted, err := js.Format(string(params.TextDocument.URI), []byte(f.Text), opts)
	if err != nil {
		// Parse errors are already shown as diagnostics.
		slog.WarnContext(ctx, "formatting failed", "uri", params.TextDocument.URI, "error", err)
		if len(f.Diagnostics) == 0 {
			h.logMessage(ctx, MTError, fmt.Sprintf("shape: %v", err))
		}
		return []TextEdit{}, nil
	}

	if formatted == f.Text {
		return []TextEdit{}, nil
	}

	// Replace the entire document.
	return []TextEdit{
		{
			Range: Range{
				Start: Position{Line: 0, Character: 0},
				End:   endOf(f.Text),
			},
			NewText: formatted,
		},
	}, nil
}

// options combines the document's configuration with the client's
// indentation settings.
func (h *Handler) options(uri DocumentURI, client FormattingOptions) format.Options {
	opts := h.configFor(uri).Options()
	if client.TabSize > 0 {
		opts.IndentWidth = client.TabSize
		if client.InsertSpaces {
			opts.IndentStyle = format.IndentSpaces
		} else {
			opts.IndentStyle = format.IndentTabs
		}
	}
	return opts
}

// endOf returns the position just past the last character of text.
func endOf(text string) Position {
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return Position{
		Line:      strings.Count(text, "\n"),
		Character: utf16Len(last),
	}
}
