package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/shape/pkg/cache"
	"github.com/vito/shape/pkg/config"
	"github.com/vito/shape/pkg/format"
	"github.com/vito/shape/pkg/ioctx"
	"github.com/vito/shape/pkg/js"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

type fmtOptions struct {
	write bool
	list  bool
	diff  bool
	check bool
	watch bool

	width       int
	indentWidth int
	useTabs     bool
	configPath  string
	cachePath   string
	jobs        int
}

func fmtCmd() *cobra.Command {
	var opts fmtOptions

	cmd := &cobra.Command{
		Use:   "fmt [flags] [path ...]",
		Short: "Format source files",
		Long: `Format JavaScript files. Directories are walked for files with the
configured extensions; "-" formats stdin. With no flags the formatted
source is written to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "List files whose formatting differs")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false, "Print a unified diff instead of the formatted source")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Exit with an error if any file is not formatted")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Keep running and format files as they change")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Override the configured line width")
	cmd.Flags().IntVar(&opts.indentWidth, "indent-width", 0, "Override the configured indent width")
	cmd.Flags().BoolVar(&opts.useTabs, "use-tabs", false, "Indent with tabs")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Use this configuration file instead of searching for one")
	cmd.Flags().StringVar(&opts.cachePath, "cache", "", "Skip files recorded as formatted in this cache file")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of files to format concurrently")

	return cmd
}

// resolver finds the configuration for each file, reading each directory's
// configuration at most once.
type resolver struct {
	opts fmtOptions

	mu    sync.Mutex
	byDir map[string]*config.Config
}

func newResolver(opts fmtOptions) *resolver {
	return &resolver{opts: opts, byDir: map[string]*config.Config{}}
}

func (r *resolver) forPath(path string) (*config.Config, error) {
	return r.forDir(filepath.Dir(path))
}

func (r *resolver) forDir(dir string) (*config.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg, ok := r.byDir[dir]; ok {
		return cfg, nil
	}

	var cfg *config.Config
	var err error
	if r.opts.configPath != "" {
		cfg, err = config.Load(r.opts.configPath)
	} else {
		_, cfg, err = config.Find(dir)
	}
	if err != nil {
		return nil, err
	}

	if r.opts.width > 0 {
		cfg.LineWidth = r.opts.width
	}
	if r.opts.indentWidth > 0 {
		cfg.IndentWidth = r.opts.indentWidth
	}
	if r.opts.useTabs {
		cfg.IndentStyle = format.IndentTabs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.byDir[dir] = cfg
	return cfg, nil
}

// result is the outcome of formatting one file.
type result struct {
	path      string
	source    []byte
	formatted string
	opts      format.Options
	cached    bool
	err       error
}

func (r result) changed() bool {
	return !r.cached && r.err == nil && r.formatted != string(r.source)
}

type formatter struct {
	opts     fmtOptions
	resolver *resolver
	cache    *cache.Cache

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	color  bool
}

func runFmt(ctx context.Context, opts fmtOptions, args []string) error {
	if opts.watch && slices.Contains(args, "-") {
		return errors.New("cannot watch stdin")
	}

	f := &formatter{
		opts:     opts,
		resolver: newResolver(opts),
		stdin:    ioctx.StdinFromContext(ctx),
		stdout:   ioctx.StdoutFromContext(ctx),
		stderr:   ioctx.StderrFromContext(ctx),
	}
	f.color = ioctx.IsTerminal(f.stderr)

	if opts.cachePath != "" {
		c, err := cache.Open(opts.cachePath)
		if err != nil {
			return err
		}
		f.cache = c
	}

	paths, err := f.collect(args)
	if err != nil {
		return err
	}

	failed, unformatted := f.process(ctx, paths)

	if err := f.cache.Save(); err != nil {
		slog.Warn("failed to save cache", "path", opts.cachePath, "error", err)
	}

	if opts.watch {
		return f.watch(ctx, args)
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d files failed to format", failed, len(paths))
	case opts.check && unformatted > 0:
		return fmt.Errorf("%d of %d files are not formatted", unformatted, len(paths))
	}
	return nil
}

// collect expands directories into the files they contain that match their
// configuration. Paths named explicitly are always formatted.
func (f *formatter) collect(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == "-" {
			paths = append(paths, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			cfg, err := f.resolver.forPath(path)
			if err != nil {
				return err
			}
			if cfg.Matches(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// process formats paths concurrently and reports the results in order. It
// returns the number of files that failed and the number that were not
// already formatted.
func (f *formatter) process(ctx context.Context, paths []string) (failed, unformatted int) {
	results := make([]result, len(paths))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(f.opts.jobs, 1))
	for i, path := range paths {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = result{path: path, err: err}
				return nil
			}
			results[i] = f.formatPath(path)
			return nil
		})
	}
	_ = eg.Wait()

	for _, res := range results {
		if res.err != nil {
			failed++
			fmtStats.Add("failed", 1)
			f.cache.Forget(res.path)
			f.reportError(res)
			continue
		}
		switch {
		case res.cached:
			fmtStats.Add("cached", 1)
		case res.changed():
			unformatted++
			fmtStats.Add("changed", 1)
		default:
			fmtStats.Add("unchanged", 1)
		}
		if err := f.emit(res); err != nil {
			failed++
			f.reportError(result{path: res.path, err: err})
		}
	}
	return failed, unformatted
}

func (f *formatter) formatPath(path string) result {
	res := result{path: path}

	var cfg *config.Config
	if path == "-" {
		res.path = "<stdin>"
		res.source, res.err = io.ReadAll(f.stdin)
		if res.err != nil {
			return res
		}
		cfg, res.err = f.resolver.forDir(".")
	} else {
		res.source, res.err = os.ReadFile(path)
		if res.err != nil {
			return res
		}
		cfg, res.err = f.resolver.forPath(path)
	}
	if res.err != nil {
		return res
	}
	res.opts = cfg.Options()

	if path != "-" && f.cache.Formatted(path, res.source, res.opts) {
		slog.Debug("skipping cached file", "path", path)
		res.cached = true
		res.formatted = string(res.source)
		return res
	}

	res.formatted, res.err = js.Format(res.path, res.source, res.opts)
	return res
}

// emit writes the outcome of a successful result according to the output
// flags.
func (f *formatter) emit(res result) error {
	stdin := res.path == "<stdin>"
	changed := res.changed()
	if !changed && !stdin {
		f.cache.Record(res.path, res.source, res.opts)
	}

	if !f.opts.write && !f.opts.list && !f.opts.diff && !f.opts.check {
		_, err := io.WriteString(f.stdout, res.formatted)
		return err
	}

	if !changed {
		return nil
	}

	if f.opts.list {
		if _, err := fmt.Fprintln(f.stdout, res.path); err != nil {
			return err
		}
	}

	if f.opts.diff {
		if err := f.printDiff(res); err != nil {
			return err
		}
	}

	if f.opts.check && !f.opts.list {
		f.notice("%s is not formatted", res.path)
	}

	if f.opts.write {
		if stdin {
			_, err := io.WriteString(f.stdout, res.formatted)
			return err
		}
		info, err := os.Stat(res.path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(res.path, []byte(res.formatted), info.Mode().Perm()); err != nil {
			return err
		}
		f.cache.Record(res.path, []byte(res.formatted), res.opts)
		slog.Debug("formatted", "path", res.path)
	}
	return nil
}

func (f *formatter) printDiff(res result) error {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(string(res.source)),
		B:        splitLines(res.formatted),
		FromFile: res.path + ".orig",
		ToFile:   res.path,
		Context:  3,
	})
	if err != nil {
		return err
	}
	if ioctx.IsTerminal(f.stdout) {
		diff = colorDiff(diff)
	}
	_, err = io.WriteString(f.stdout, diff)
	return err
}

// splitLines splits s after each newline. Unlike difflib.SplitLines it does
// not add an empty line after a final newline, and a last line without one
// is terminated so that it prints on its own line.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	switch {
	case lines[last] == "":
		lines = lines[:last]
	default:
		lines[last] += "\n"
	}
	return lines
}

func colorDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "---"), strings.HasPrefix(body, "+++"):
		case strings.HasPrefix(body, "@@"):
			lines[i] = hunkStyle.Render(body) + nl
		case strings.HasPrefix(body, "-"):
			lines[i] = removedStyle.Render(body) + nl
		case strings.HasPrefix(body, "+"):
			lines[i] = addedStyle.Render(body) + nl
		}
	}
	return strings.Join(lines, "")
}

func (f *formatter) notice(msg string, args ...any) {
	text := fmt.Sprintf(msg, args...)
	if f.color {
		text = noticeStyle.Render(text)
	}
	fmt.Fprintln(f.stderr, text) //nolint:errcheck
}

func (f *formatter) reportError(res result) {
	var syntaxErr *js.SyntaxError
	if errors.As(res.err, &syntaxErr) {
		if f.color {
			fmt.Fprint(f.stderr, syntaxErr.FormatWithHighlighting()) //nolint:errcheck
		} else {
			fmt.Fprint(f.stderr, syntaxErr.Excerpt()) //nolint:errcheck
		}
		return
	}
	text := fmt.Sprintf("%s: %s", res.path, res.err)
	if f.color {
		text = errorStyle.Render(text)
	}
	fmt.Fprintln(f.stderr, text) //nolint:errcheck
}
