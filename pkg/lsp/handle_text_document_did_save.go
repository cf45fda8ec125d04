package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDidSave(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidSaveTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	// A save may change which config applies, e.g. when shape.toml itself
	// was saved.
	h.mu.Lock()
	clear(h.configs)
	h.mu.Unlock()

	if params.Text == nil {
		return nil, nil
	}
	return nil, h.updateFile(ctx, params.TextDocument.URI, *params.Text, nil)
}
