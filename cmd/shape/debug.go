package main

import (
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/vito/shape/pkg/doc"
	"github.com/vito/shape/pkg/ioctx"
	"github.com/vito/shape/pkg/js"
)

// fmtStats counts per-file outcomes of fmt runs. It is served under
// /debug/vars alongside the runtime's own variables.
var fmtStats = expvar.NewMap("fmt")

// debugProfiles are the named runtime profiles exposed next to the pprof
// index.
var debugProfiles = []string{"heap", "goroutine", "allocs", "block", "mutex"}

func debugMux() *http.ServeMux {
	m := http.NewServeMux()
	m.Handle("GET /debug/vars", expvar.Handler())
	m.HandleFunc("GET /debug/pprof/", pprof.Index)
	m.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	m.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	m.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	m.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	for _, name := range debugProfiles {
		m.Handle("GET /debug/pprof/"+name, pprof.Handler(name))
	}
	m.HandleFunc("POST /debug/gc", func(rw http.ResponseWriter, req *http.Request) {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		runtime.GC()
		runtime.ReadMemStats(&after)
		slog.Debug("forced collection", "heapBefore", before.HeapAlloc, "heapAfter", after.HeapAlloc)
		fmt.Fprintf(rw, "heap %d -> %d bytes\n", before.HeapAlloc, after.HeapAlloc)
	})
	return m
}

// serveDebug starts the debug handlers in the background and returns the
// address they are bound to, which differs from addr when its port is 0.
func serveDebug(addr string) (net.Addr, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("debug listener: %w", err)
	}
	srv := &http.Server{Handler: debugMux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("debug server stopped", "err", err)
		}
	}()
	slog.Debug("serving debug handlers", "addr", l.Addr().String())
	return l.Addr(), nil
}

func debugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Inspect how a file is formatted",
	}

	var outline bool
	astCmd := &cobra.Command{
		Use:   "ast FILE",
		Short: "Print the syntax tree of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			prog, _, err := js.Parse(args[0], src)
			if err != nil {
				return err
			}
			stdout := ioctx.StdoutFromContext(cmd.Context())
			if outline {
				_, err = fmt.Fprint(stdout, js.Outline(prog))
				return err
			}
			_, err = pretty.Fprintf(stdout, "%# v\n", prog)
			return err
		},
	}
	astCmd.Flags().BoolVar(&outline, "outline", false, "Print one line per node instead of the full structure")

	docCmd := &cobra.Command{
		Use:   "doc FILE",
		Short: "Print the document a file is laid out from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := newResolver(fmtOptions{}).forPath(args[0])
			if err != nil {
				return err
			}
			d, err := js.Document(args[0], src, cfg.Options())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(ioctx.StdoutFromContext(cmd.Context()), doc.Dump(d))
			return err
		},
	}

	cmd.AddCommand(astCmd, docCmd)
	return cmd
}
