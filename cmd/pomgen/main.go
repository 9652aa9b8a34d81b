/*
pomgen records user flows in a browser and turns them into page object
locator tables and replay scripts.

Have a look at the README.md for more information.
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/jakopako/pomgen/internal/artifact"
	"github.com/jakopako/pomgen/internal/browser"
	"github.com/jakopako/pomgen/internal/codegen"
	"github.com/jakopako/pomgen/internal/config"
	"github.com/jakopako/pomgen/internal/consolidate"
	"github.com/jakopako/pomgen/internal/dom"
	"github.com/jakopako/pomgen/internal/fetch"
	"github.com/jakopako/pomgen/internal/generate"
	"github.com/jakopako/pomgen/internal/ingest"
	"github.com/jakopako/pomgen/internal/inspect"
	"github.com/jakopako/pomgen/internal/log"
	"github.com/jakopako/pomgen/internal/output"
	"github.com/jakopako/pomgen/internal/recording"
	"github.com/jakopako/pomgen/internal/store"
	"github.com/jakopako/pomgen/internal/types"
)

var version = "dev"

type VersionFlag string

func (v VersionFlag) Decode(_ *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                       { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

type cli struct {
	Version VersionFlag `short:"v" long:"version" help:"Print the version and exit."`
	Debug   bool        `short:"d" long:"debug" help:"Set log level to 'debug' and store additional helpful debugging data."`

	Record   RecordCmd   `cmd:"" help:"Open a browser and record the actions performed on the given URL"`
	Watch    WatchCmd    `cmd:"" help:"Watch the drop directory and generate code for every new session artifact"`
	Generate GenerateCmd `cmd:"" help:"Generate code for the given session artifact"`
	Locate   LocateCmd   `cmd:"" help:"Show the locators and names that would be recorded for the elements of the given URL"`
	Table    TableCmd    `cmd:"" help:"Show the actions of the current recording or of a session artifact"`
	Config   ConfigCmd   `cmd:"" help:"Print the effective configuration"`
}

// signalContext returns a context that is cancelled on Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.NewConfig(path)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return nil, err
	}
	return cfg, nil
}

type RecordCmd struct {
	URL      string `short:"u" long:"url" help:"The URL to start recording on." required:""`
	Config   string `short:"c" long:"config" default:"./pomgen.yaml" help:"The configuration file to use."`
	Label    string `short:"l" long:"label" help:"The test name the recorded session is exported with."`
	Reset    bool   `short:"r" help:"Discard a previously interrupted recording instead of continuing it."`
	Generate bool   `short:"g" help:"If set to true, code is generated right after the recording is stopped."`
}

func (r *RecordCmd) Run() error {
	cfg, err := loadConfig(r.Config)
	if err != nil {
		return err
	}

	rec, err := recording.NewRecorderFromConfig(&cfg.Recorder, &cfg.Enricher)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	defer rec.Close()

	ctx, stop := signalContext()
	defer stop()

	if r.Reset {
		if err := rec.Reset(ctx); err != nil {
			slog.Error(fmt.Sprintf("error resetting recording: %v", err))
			return err
		}
	}
	if err := rec.Start(ctx); err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}

	slog.Info("recording, close the browser or hit Ctrl-C to stop")
	session := browser.NewSession(&cfg.Browser, rec)
	if err := session.Run(ctx, r.URL); err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		// the actions recorded so far are still exported below
	}

	// ctx is done at this point
	export, path, err := rec.Stop(context.Background(), r.Label)
	if err != nil {
		slog.Error(fmt.Sprintf("error stopping recording: %v", err))
		return err
	}
	slog.Info(fmt.Sprintf("recorded %d actions on %d pages", len(export.Actions), len(export.VisitedPages)))

	if !r.Generate {
		return nil
	}
	p, err := generate.NewPipelineFromConfig(&cfg.Writer, &cfg.Codegen, generate.WithArchiveDir(archiveDir(cfg)))
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	return p.ProcessFile(context.Background(), path)
}

// archiveDir is where consumed artifacts are moved to.
func archiveDir(cfg *config.Config) string {
	if cfg.Watcher.ArchiveDir != "" {
		return cfg.Watcher.ArchiveDir
	}
	return cfg.Writer.FileDir
}

type WatchCmd struct {
	Config string `short:"c" long:"config" default:"./pomgen.yaml" help:"The configuration file to use."`
	Dir    string `long:"dir" help:"The directory to watch. Overrides the configuration."`
}

func (w *WatchCmd) Run() error {
	cfg, err := loadConfig(w.Config)
	if err != nil {
		return err
	}
	if w.Dir != "" {
		cfg.Watcher.Dir = w.Dir
	}
	if cfg.Watcher.Dir == "" {
		cfg.Watcher.Dir = cfg.Recorder.DropDir
	}
	if cfg.Watcher.Dir == "" {
		cfg.Watcher.Dir = recording.DefaultDropDir()
	}

	p, err := generate.NewPipelineFromConfig(&cfg.Writer, &cfg.Codegen, generate.WithArchiveDir(archiveDir(cfg)))
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	watcher := ingest.NewWatcher(&cfg.Watcher, p.ProcessFile)

	ctx, stop := signalContext()
	defer stop()

	return watcher.Run(ctx)
}

type GenerateCmd struct {
	File        string `arg:"" help:"The session artifact to generate code for." type:"existingfile"`
	Config      string `short:"c" long:"config" default:"./pomgen.yaml" help:"The configuration file to use."`
	Format      string `short:"f" long:"format" help:"The output format (cypress or chromedp). Overrides the configuration."`
	Stdout      bool   `short:"o" long:"stdout" help:"If set to true the generated code will be written to stdout."`
	Interactive bool   `short:"i" help:"If set to true, the user will be prompted to select which actions to include in the generated code interactively."`
	Clean       bool   `long:"clean" help:"Remove previously generated files before writing."`
	Archive     string `long:"archive" help:"Move the artifact to this directory once code was generated."`
}

func (g *GenerateCmd) Run() error {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return err
	}
	if g.Stdout {
		cfg.Writer.Type = output.STDOUT_WRITER_TYPE
	}
	if g.Format != "" {
		cfg.Codegen.Format = codegen.FormatType(g.Format)
	}

	opts := []generate.Option{generate.WithClean(g.Clean), generate.WithArchiveDir(g.Archive)}
	if g.Interactive {
		opts = append(opts, generate.WithReview(generate.InteractiveReview))
	}
	p, err := generate.NewPipelineFromConfig(&cfg.Writer, &cfg.Codegen, opts...)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	return p.ProcessFile(context.Background(), g.File)
}

type LocateCmd struct {
	URL      string `short:"u" long:"url" help:"The URL of the page to inspect." required:""`
	Config   string `short:"c" long:"config" default:"./pomgen.yaml" help:"The configuration file to use."`
	Selector string `short:"s" long:"selector" help:"The css selector of the elements to inspect." default:"${default_selector}"`
	Dynamic  bool   `short:"D" long:"dynamic" help:"If set to true the page is rendered in a browser before it is inspected."`
}

func (l *LocateCmd) Run() error {
	cfg, err := loadConfig(l.Config)
	if err != nil {
		return err
	}
	if l.Dynamic {
		cfg.Fetcher.Type = fetch.DYNAMIC_FETCHER_TYPE
	}
	f, err := fetch.NewFetcher(&cfg.Fetcher)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	defer f.Cancel()

	ctx, stop := signalContext()
	defer stop()
	body, err := f.Fetch(ctx, l.URL)
	if err != nil {
		slog.Error(fmt.Sprintf("error fetching %s: %v", l.URL, err))
		return err
	}
	doc, err := dom.ParseString(body)
	if err != nil {
		slog.Error(fmt.Sprintf("error parsing %s: %v", l.URL, err))
		return err
	}
	cands, err := inspect.Inspect(doc, l.Selector)
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	return inspect.WriteCandidates(os.Stdout, cands)
}

type TableCmd struct {
	Config       string `short:"c" long:"config" default:"./pomgen.yaml" help:"The configuration file to use."`
	File         string `short:"f" long:"file" help:"A session artifact to show instead of the current recording." type:"existingfile"`
	Consolidated bool   `long:"consolidated" help:"Show the actions the way they are passed to code generation."`
}

func (t *TableCmd) Run() error {
	actions, err := t.actions()
	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		return err
	}
	if t.Consolidated {
		actions = consolidate.Consolidate(actions)
	}
	return inspect.WriteActions(os.Stdout, actions)
}

func (t *TableCmd) actions() ([]types.Action, error) {
	if t.File != "" {
		e, err := artifact.ReadFile(t.File)
		if err != nil {
			return nil, err
		}
		return e.Actions, nil
	}
	cfg, err := config.NewConfig(t.Config)
	if err != nil {
		return nil, err
	}
	s, err := store.NewFromConfig(&cfg.Recorder.Store)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	st, err := s.Load(context.Background())
	if err != nil {
		return nil, err
	}
	return st.Actions, nil
}

type ConfigCmd struct {
	Config string `short:"c" long:"config" default:"./pomgen.yaml" help:"The configuration file to use."`
}

func (c *ConfigCmd) Run() error {
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}
	return cfg.Write(os.Stdout)
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			return buildInfo.Main.Version
		}
	}
	return version
}

func main() {
	cli := cli{
		Version: VersionFlag(getVersion()),
	}

	ctx := kong.Parse(&cli,
		kong.Description("Record browser flows and generate page objects from them."),
		kong.Vars{
			"version":          string(cli.Version),
			"default_selector": inspect.DefaultSelector,
		})

	log.Debug = cli.Debug
	// the default logger depends on log.Debug so it has to be set first
	log.InitializeDefaultLogger()

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
