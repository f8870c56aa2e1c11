package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/smileynet/storefront/internal/api"
	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/config"
	"github.com/smileynet/storefront/internal/listcache"
	"github.com/smileynet/storefront/internal/lists"
	"github.com/smileynet/storefront/internal/logger"
	"github.com/smileynet/storefront/internal/observability"
	"github.com/smileynet/storefront/internal/toast"
	"github.com/smileynet/storefront/internal/token"
	"github.com/smileynet/storefront/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// stdout is where command output goes. Tests replace it.
var stdout io.Writer = os.Stdout

// Globals are flags shared by every command.
type Globals struct {
	Config   string `help:"Project config file." default:".storefront/config.yaml" type:"path"`
	EnvFile  string `help:"Dotenv file loaded before environment overrides." default:".env" name:"env-file"`
	BaseURL  string `help:"Backend base URL, e.g. http://localhost:8080." name:"base-url"`
	LogLevel string `help:"Log level (debug, info, warn, error)." name:"log-level"`
	Plain    bool   `help:"Force plain text output even if stdout is a TTY."`
}

// CLI is the top-level command structure for storefront.
type CLI struct {
	Globals `embed:""`

	Version       kong.VersionFlag `help:"Show version." short:"V"`
	Login         LoginCmd         `cmd:"" help:"Sign in and store the access token."`
	Logout        LogoutCmd        `cmd:"" help:"Forget the stored access token."`
	Health        HealthCmd        `cmd:"" help:"Check the backend health endpoint."`
	Dashboard     DashboardCmd     `cmd:"" help:"Open the interactive admin dashboard."`
	Serve         ServeCmd         `cmd:"" help:"Serve the public catalog site."`
	Categories    CategoriesCmd    `cmd:"" help:"Manage categories."`
	Subcategories SubcategoriesCmd `cmd:"" help:"Manage subcategories."`
	Products      ProductsCmd      `cmd:"" help:"Manage products."`
}

const (
	exitSuccess   = 0
	exitOperation = 1
	exitSetup     = 2
)

// opError is an operation the backend or local validation refused. Anything
// else reaching main is a setup problem.
type opError struct {
	msg   string
	shown bool // already printed as a toast
}

func (e *opError) Error() string { return e.msg }

// failed converts an unsuccessful Result into an opError.
func failed(r lists.Result) error {
	if r.Success {
		return nil
	}
	if r.Field != "" {
		return &opError{msg: fmt.Sprintf("%s (%s)", r.Error, r.Field)}
	}
	return &opError{msg: r.Error}
}

// reportable reports whether main should still print err.
func reportable(err error) bool {
	var oe *opError
	return !errors.As(err, &oe) || !oe.shown
}

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var oe *opError
	if errors.As(err, &oe) {
		return exitOperation
	}
	return exitSetup
}

// loadConfig layers defaults, the user config, the project config, the dotenv
// file, STOREFRONT_* variables and finally command-line flags.
func loadConfig(g *Globals) (*config.Config, error) {
	home, _ := os.UserHomeDir()
	cfg, err := config.LoadLayered(
		home+"/.config/storefront/config.yaml",
		g.Config,
	)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(g.EnvFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.BaseURL != "" {
		cfg.API.BaseURL = g.BaseURL
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env is everything a command needs, built from config.
type env struct {
	cfg       *config.Config
	log       *logrus.Logger
	tokens    token.Store
	client    *api.Client
	toasts    *toast.Queue
	telemetry *observability.Config
	validator *catalog.Validator
	out       tui.Display
}

type envOptions struct {
	logToStderr bool
	out         io.Writer
}

// open builds the shared command environment. Callers must Close it.
func open(g *Globals, opts envOptions) (*env, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Stderr:     opts.logToStderr,
	})
	if err != nil {
		return nil, err
	}

	var telOpts []observability.Option
	if cfg.Observability.Global {
		telOpts = append(telOpts, observability.WithGlobalProviders())
	}
	telemetry := observability.New(telOpts...)

	tokens, err := token.NewRegistry().Open(cfg.Auth.TokenBackend, token.Options{
		Dir: cfg.Auth.TokenDir,
		Key: cfg.Auth.TokenKey,
	})
	if err != nil {
		return nil, err
	}

	client := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Version:   cfg.API.Version,
		Timeout:   cfg.API.Timeout,
		Tokens:    tokens,
		Logger:    log,
		Telemetry: telemetry,
	})

	if opts.out == nil {
		opts.out = stdout
	}
	return &env{
		cfg:       cfg,
		log:       log,
		tokens:    tokens,
		client:    client,
		toasts:    toast.New(toast.WithDuration(cfg.UI.ToastDuration)),
		telemetry: telemetry,
		validator: catalog.NewValidator(catalog.Limits{
			MaxColors:          cfg.Limits.MaxColors,
			SubcategoryNameMax: cfg.Limits.SubcategoryNameMax,
			MaxImageSize:       cfg.Upload.MaxSize,
			AllowedImageTypes:  cfg.Upload.AllowedTypes,
		}),
		out: tui.NewDisplay(tui.DisplayOptions{Writer: opts.out, ForcePlain: g.Plain}),
	}, nil
}

// Close releases the token store and the toast timers.
func (e *env) Close() {
	e.toasts.Close()
	if c, ok := e.tokens.(io.Closer); ok {
		_ = c.Close()
	}
}

// deps returns list manager dependencies publishing to n.
func (e *env) deps(n toast.Notifier) lists.Deps {
	return lists.Deps{
		Notifier:  n,
		Validator: e.validator,
		Logger:    e.log,
		Cache: []listcache.Option{
			listcache.WithTTL(e.cfg.Cache.TTL),
			listcache.WithLoadTimeout(e.cfg.API.Timeout),
			listcache.WithTelemetry(e.telemetry),
		},
	}
}

func (e *env) categories() *lists.Categories {
	return lists.NewCategories(e.client.Categories(), e.deps(e.toasts))
}

func (e *env) subcategories() *lists.Subcategories {
	return lists.NewSubcategories(e.client.Subcategories(), e.deps(e.toasts), e.cfg.Limits.MaxSubcategories)
}

func (e *env) products() *lists.Products {
	return lists.NewProducts(e.client.Products(), e.deps(e.toasts))
}

func (e *env) session() *lists.Session {
	return lists.NewSession(e.client.Auth(), e.tokens, e.deps(e.toasts))
}

// report prints the toasts an operation produced and converts its Result.
func (e *env) report(r lists.Result) error {
	shown := len(e.toasts.Snapshot()) > 0
	e.out.Toasts(e.toasts.Snapshot())
	e.toasts.Clear()
	err := failed(r)
	var oe *opError
	if errors.As(err, &oe) {
		oe.shown = shown
	}
	return err
}

// signalContext is cancelled on Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("storefront"),
		kong.Description("Admin console and catalog site for the storefront backend."),
		kong.UsageOnError(),
		kong.Vars{"version": version + " " + commit + " " + date},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	if err != nil {
		if reportable(err) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(exitCode(err))
	}
}
