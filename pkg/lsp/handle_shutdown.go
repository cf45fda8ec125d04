package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleShutdown(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	h.files = make(map[DocumentURI]*File)
	slog.InfoContext(ctx, "shutdown requested")
	return nil, nil
}

func (h *Handler) handleExit(ctx context.Context, req *jrpc2.Request) (any, error) {
	if srv := h.server(); srv != nil {
		// Stop cancels in-flight handlers, this one included.
		go srv.Stop()
	}
	return nil, nil
}
