// Package cmd implements the vuln-search command line.
package cmd

import (
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/client"
	"github.com/securesentinels/vuln-search/config"
	"github.com/securesentinels/vuln-search/export"
	"github.com/securesentinels/vuln-search/logger"
	"github.com/securesentinels/vuln-search/render"
	"github.com/securesentinels/vuln-search/types"
)

// errReported is returned after the failure has already been shown to the user.
var errReported = xerrors.New("search failed")

type globalFlags struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	debug      bool
	htmlPath   string
}

type app struct {
	flags globalFlags

	fs     afero.Fs
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	conf   config.Config
	client *client.Client
}

type option func(*app)

func WithFs(fs afero.Fs) option {
	return func(a *app) { a.fs = fs }
}

func WithIO(in io.Reader, out, errOut io.Writer) option {
	return func(a *app) {
		a.in = in
		a.out = out
		a.errOut = errOut
	}
}

// NewRootCommand builds the vuln-search command tree.
func NewRootCommand(opts ...option) *cobra.Command {
	a := &app{
		fs:     afero.NewOsFs(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "vuln-search",
		Short: "Search CVE data by keyword, severity, category, date or vendor",
		Long: `vuln-search queries a vulnerability search backend and prints the
matching CVE records as tables, or as an HTML report with --html.

Example:
  vuln-search keyword log4j
  vuln-search cvss --severity CRITICAL --page 2
  vuln-search category "SQL Injection"
  vuln-search date 2024-03-07
  vuln-search vendor --vendor apache --product log4j --version 2.14.1
  vuln-search cvss export --severity HIGH --output high.json.zst
  vuln-search show high.json.zst`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "backend base URL (default "+client.DefaultBaseURL+")")
	pf.DurationVar(&a.flags.timeout, "timeout", client.DefaultTimeout, "request timeout, 0 disables it")
	pf.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&a.flags.htmlPath, "html", "", "write an HTML report to this file instead of printing tables")

	root.AddCommand(
		a.newKeywordCommand(),
		a.newCVSSCommand(),
		a.newCategoryCommand(),
		a.newDateCommand(),
		a.newVendorCommand(),
		a.newShowCommand(),
	)
	return root
}

// Execute runs the command line against the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// Reported reports whether err has already been shown to the user.
func Reported(err error) bool {
	return xerrors.Is(err, errReported)
}

// setup resolves the configuration. Flags win over the environment, which
// wins over the config file.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	conf, err := config.Load(a.fs, a.flags.configPath)
	if err != nil {
		return xerrors.Errorf("config error: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		conf.BaseURL = a.flags.baseURL
	}
	if flags.Changed("timeout") {
		conf.Timeout = a.flags.timeout
	}
	if flags.Changed("debug") {
		conf.Debug = a.flags.debug
	}
	if flags.Changed("page-size") {
		n, err := flags.GetInt("page-size")
		if err != nil {
			return xerrors.Errorf("page size flag: %w", err)
		}
		conf.PageSize = n
	}

	if err = logger.Init(conf.Debug); err != nil {
		return err
	}
	a.conf = conf
	if a.client, err = conf.NewClient(); err != nil {
		return xerrors.Errorf("config error: %w", err)
	}
	logger.Logger.Debugw("Backend", "url", a.client.BaseURL(), "timeout", conf.Timeout)
	return nil
}

// show draws v with the text renderer, or into the HTML report when --html is set.
func (a *app) show(v render.View) error {
	if a.flags.htmlPath == "" {
		return render.NewText(a.out).Render(v)
	}

	f, err := a.fs.Create(a.flags.htmlPath)
	if err != nil {
		return xerrors.Errorf("unable to create HTML report: %w", err)
	}
	defer f.Close()
	if err = render.NewHTML(f).Render(v); err != nil {
		return xerrors.Errorf("unable to write HTML report: %w", err)
	}
	logger.Logger.Infow("Wrote HTML report", "path", a.flags.htmlPath)
	return nil
}

// showLoading prints the loading text while an interactive page waits for the
// backend. The HTML report only records final states.
func (a *app) showLoading() {
	if a.flags.htmlPath != "" {
		return
	}
	_ = render.NewText(a.out).Render(render.View{Status: types.Status{Kind: types.StatusLoading}})
}

// fail shows message as the page's error state and returns errReported.
func (a *app) fail(v render.View, message string, cause error) error {
	logger.Logger.Debugw("Search failed", "error", cause)
	v.Status = types.Status{Kind: types.StatusFailure, Message: message}
	if err := a.show(v); err != nil {
		return err
	}
	return errReported
}

func (a *app) save(records []types.Record, dest string) error {
	if dest == "" {
		return nil
	}
	e := export.New(export.WithFs(a.fs), export.WithProgressOutput(a.progressOutput()))
	if err := e.Save(records, dest); err != nil {
		return xerrors.Errorf("export failed: %w", err)
	}
	return nil
}

// progressOutput hides progress bars unless stderr is a terminal.
func (a *app) progressOutput() io.Writer {
	if isTerminal(a.errOut) {
		return a.errOut
	}
	return nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
