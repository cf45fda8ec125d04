// Package lsp serves document formatting over the Language Server Protocol.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/creachadair/jrpc2"

	"github.com/vito/shape/pkg/config"
	"github.com/vito/shape/pkg/js"
)

// Handler assigns LSP methods to their handlers and holds the open
// documents.
type Handler struct {
	mu       sync.Mutex
	files    map[DocumentURI]*File
	configs  map[string]*config.Config // directory -> config
	srv      *jrpc2.Server
	rootPath string
	shutdown bool
}

// File is an open document.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic
}

// NewHandler returns a Handler with no open documents.
func NewHandler(ctx context.Context) *Handler {
	return &Handler{
		files:   make(map[DocumentURI]*File),
		configs: make(map[string]*config.Config),
	}
}

// SetServer gives the handler the server to push notifications through. The
// server must allow push.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.srv = srv
}

var methods = map[string]func(*Handler) jrpc2.Handler{
	"initialize":              func(h *Handler) jrpc2.Handler { return h.handleInitialize },
	"initialized":             func(h *Handler) jrpc2.Handler { return h.handleInitialized },
	"shutdown":                func(h *Handler) jrpc2.Handler { return h.handleShutdown },
	"exit":                    func(h *Handler) jrpc2.Handler { return h.handleExit },
	"textDocument/didOpen":    func(h *Handler) jrpc2.Handler { return h.handleTextDocumentDidOpen },
	"textDocument/didChange":  func(h *Handler) jrpc2.Handler { return h.handleTextDocumentDidChange },
	"textDocument/didSave":    func(h *Handler) jrpc2.Handler { return h.handleTextDocumentDidSave },
	"textDocument/didClose":   func(h *Handler) jrpc2.Handler { return h.handleTextDocumentDidClose },
	"textDocument/formatting": func(h *Handler) jrpc2.Handler { return h.handleTextDocumentFormatting },
}

// Assign implements jrpc2.Assigner.
func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "handle", "method", method)

	mk, ok := methods[method]
	if !ok {
		return nil
	}
	h.mu.Lock()
	down := h.shutdown
	h.mu.Unlock()
	if down && method != "exit" {
		return func(context.Context, *jrpc2.Request) (any, error) {
			return nil, jrpc2.Errorf(jrpc2.InvalidRequest, "server is shutting down")
		}
	}
	return mk(h)
}

// Names implements jrpc2.Namer.
func (h *Handler) Names() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) DocumentURI {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return DocumentURI((&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String())
}

func (h *Handler) server() *jrpc2.Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.srv
}

func (h *Handler) logMessage(ctx context.Context, typ MessageType, message string) {
	srv := h.server()
	if srv == nil {
		return
	}
	if err := srv.Notify(ctx, "window/logMessage", &LogMessageParams{
		Type:    typ,
		Message: message,
	}); err != nil {
		slog.DebugContext(ctx, "failed to send log message", "error", err)
	}
}

func (h *Handler) file(uri DocumentURI) (File, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[uri]
	if !ok {
		return File{}, false
	}
	return *f, true
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
	}
}

func (h *Handler) closeFile(uri DocumentURI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, uri)
}

// updateFile stores the new text of an open document, parses it and
// publishes its syntax errors.
func (h *Handler) updateFile(ctx context.Context, uri DocumentURI, text string, version *int) error {
	var diagnostics []Diagnostic
	if _, _, err := js.Parse(string(uri), []byte(text)); err != nil {
		diagnostics = errorToDiagnostics(text, err)
	}

	h.mu.Lock()
	f, ok := h.files[uri]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("document not found: %v", uri)
	}
	f.Text = text
	if version != nil {
		f.Version = *version
	}
	f.Diagnostics = diagnostics
	params := &PublishDiagnosticsParams{
		URI:         uri,
		Version:     f.Version,
		Diagnostics: diagnostics,
	}
	h.mu.Unlock()

	slog.DebugContext(ctx, "file updated", "uri", uri, "diagnostics", len(diagnostics))
	h.publishDiagnostics(ctx, params)
	return nil
}

func (h *Handler) publishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) {
	srv := h.server()
	if srv == nil {
		return
	}
	if params.Diagnostics == nil {
		params.Diagnostics = []Diagnostic{}
	}
	if err := srv.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}

// errorToDiagnostics converts a parse error to LSP diagnostics.
func errorToDiagnostics(text string, err error) []Diagnostic {
	start, end := 0, 0
	message := err.Error()
	var syntax *js.SyntaxError
	if errors.As(err, &syntax) {
		start = min(syntax.Offset, len(text))
		end = min(syntax.Offset+max(syntax.Length, 1), len(text))
		message = syntax.Message
	}
	return []Diagnostic{{
		Range: Range{
			Start: position(text, start),
			End:   position(text, end),
		},
		Severity: SeverityError,
		Source:   "shape",
		Message:  message,
	}}
}

// position converts a byte offset in text to an LSP position.
func position(text string, offset int) Position {
	before := text[:offset]
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:      strings.Count(before, "\n"),
		Character: utf16Len(before[lineStart:]),
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// configFor returns the configuration governing the document, cached per
// directory.
func (h *Handler) configFor(uri DocumentURI) *config.Config {
	path, err := fromURI(uri)
	if err != nil {
		return config.Default()
	}
	dir := filepath.Dir(path)

	h.mu.Lock()
	cached, ok := h.configs[dir]
	h.mu.Unlock()
	if ok {
		return cached
	}

	_, cfg, err := config.Find(dir)
	if err != nil {
		slog.Warn("failed to load config", "dir", dir, "error", err)
		cfg = config.Default()
	}
	h.mu.Lock()
	h.configs[dir] = cfg
	h.mu.Unlock()
	return cfg
}
