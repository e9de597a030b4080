// codeexplain explains source code snippets with a remote language model,
// falling back to rule-based analysis whenever the model cannot help.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phobologic/codeexplain/internal/config"
	"github.com/phobologic/codeexplain/internal/explain"
	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/llm"
	"github.com/phobologic/codeexplain/internal/logging"
	"github.com/phobologic/codeexplain/internal/metrics"
	"github.com/phobologic/codeexplain/internal/model"
	"github.com/phobologic/codeexplain/internal/prompt"
)

var version = "dev"

const defaultMaxFileSize = 100_000

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	return newApp(os.Stdin, stdout, stderr).execute(args)
}

// app carries the global flags and lazily built collaborators shared by
// every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	backend    string
	model      string
	logLevel   string
	offline    bool

	cfg      config.Config
	log      *logrus.Logger
	catalog  *lang.Catalog
	registry *prometheus.Registry
	recorder metrics.Recorder
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		catalog:  lang.Default(),
		registry: prometheus.NewRegistry(),
	}
}

func (a *app) execute(args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "codeexplain",
		Short:         "Explain source code with an LLM and rule-based fallbacks",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate("codeexplain {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	pf.StringVar(&a.backend, "backend", "", "model backend: gemini, openai, ollama or offline")
	pf.StringVar(&a.model, "model", "", "model name for the selected backend")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.offline, "offline", false, "skip the remote model and use rule-based analysis only")

	root.AddCommand(
		a.explainCommand(),
		a.detectCommand(),
		a.dirCommand(),
		a.initCommand(),
		a.serveCommand(),
	)
	return root
}

// setup resolves configuration: defaults, then the YAML file, then .env and
// the environment, then flags.
func (a *app) setup() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	path, required := a.configPath, true
	if path == "" {
		path, required = config.DefaultFile, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}

	cfg.ApplyEnv(func(key string) string {
		switch {
		case key == config.EnvBackend && a.backend != "":
			return a.backend
		case key == config.EnvModel && a.model != "":
			return a.model
		}
		return os.Getenv(key)
	})
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.offline {
		cfg.SetBackend(llm.BackendOffline)
	}

	log, err := logging.New(cfg.Logging, a.stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// engine builds the explanation engine for the resolved configuration. A
// missing credential is reported here, before any analysis starts.
func (a *app) engine() (*explain.Engine, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	var m llm.Model
	if a.cfg.Backend != llm.BackendOffline {
		opened, err := llm.Open(a.cfg.LLMSettings())
		if err != nil {
			return nil, err
		}
		m = opened
	}

	prompts, err := prompt.New(a.cfg.Prompts, a.catalog.Vocabulary())
	if err != nil {
		return nil, fmt.Errorf("prompt templates: %w", err)
	}

	if a.recorder == nil {
		a.recorder = metrics.NewPrometheus(a.registry)
	}

	return explain.New(explain.Config{
		Catalog: a.catalog,
		Model:   m,
		Prompts: prompts,
		Timeout: a.cfg.Timeout,
		Pacing:  a.cfg.Pacing,
		Logger:  a.log,
		Metrics: a.recorder,
	})
}

// parseLanguage accepts a tag or any alias the catalog knows.
func (a *app) parseLanguage(name string) (model.LanguageTag, error) {
	if tag, ok := model.ParseLanguageTag(name); ok {
		return tag, nil
	}
	if tag, ok := a.catalog.Alias(name); ok {
		return tag, nil
	}
	return model.Unknown, fmt.Errorf("unsupported language %q", name)
}

func (a *app) parseLanguages(list string) ([]model.LanguageTag, error) {
	var tags []model.LanguageTag
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := a.parseLanguage(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// readSource reads a file argument, or stdin for "-" or no argument.
func (a *app) readSource(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// colorEnabled reports whether w is an interactive terminal.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// userError rewrites sentinel errors into actionable messages.
func userError(err error) error {
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return fmt.Errorf("%w (run `codeexplain init` or use --backend offline)", err)
	case errors.Is(err, explain.ErrEmptyInput):
		return fmt.Errorf("%w: please enter some code", err)
	}
	return err
}
