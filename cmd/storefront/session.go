package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	storefront "github.com/smileynet/storefront"
	"github.com/smileynet/storefront/internal/dashboard"
	"github.com/smileynet/storefront/internal/health"
	"github.com/smileynet/storefront/internal/lists"
	"github.com/smileynet/storefront/internal/site"
	"github.com/smileynet/storefront/internal/toast"
)

// LoginCmd exchanges credentials for an access token.
type LoginCmd struct {
	Username string `help:"Admin username." env:"STOREFRONT_USERNAME" required:""`
	Password string `help:"Admin password." env:"STOREFRONT_PASSWORD" required:""`
}

// Run executes the login command.
func (l *LoginCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()
	return e.report(e.session().Login(ctx, l.Username, l.Password))
}

// LogoutCmd removes the stored token.
type LogoutCmd struct{}

// Run executes the logout command.
func (l *LogoutCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer e.Close()
	return e.report(e.session().Logout())
}

// HealthCmd probes the backend once.
type HealthCmd struct {
	Timeout time.Duration `help:"Give up after this long." default:"5s"`
}

// Run executes the health command.
func (h *HealthCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	mon := health.New(e.client.Health(), nil, 0, health.WithLogger(e.log))
	return h.report(e, mon.Check(ctx))
}

func (h *HealthCmd) report(e *env, st health.Status) error {
	e.out.Fields([][2]string{
		{"Backend", e.client.BaseURL()},
		{"Status", string(st.State)},
		{"Checked", st.CheckedAt.Format(time.RFC3339)},
		{"Error", st.Err},
	})
	if st.State != health.StateUp {
		return &opError{msg: fmt.Sprintf("backend is %s", st.State), shown: true}
	}
	return nil
}

// DashboardCmd opens the interactive admin dashboard.
type DashboardCmd struct{}

// Run builds real dependencies and launches the dashboard TUI.
func (d *DashboardCmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}

	e, err := open(g, envOptions{})
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	defer e.Close()

	ctx, stop := signalContext()
	defer stop()

	deps := dashboard.Deps{
		Context:       ctx,
		Categories:    e.categories(),
		Subcategories: e.subcategories(),
		Products:      e.products(),
		Session:       e.session(),
		Health:        health.New(e.client.Health(), e.tokens, e.cfg.UI.HealthInterval, health.WithLogger(e.log)),
		Toasts:        e.toasts,
		Debounce:      e.cfg.UI.DebounceDelay,
	}
	return d.run(isTTY, func() error { return dashboard.Run(deps) })
}

// run executes the dashboard, enabling testable wiring.
func (d *DashboardCmd) run(isTTY bool, start func() error) error {
	if !isTTY {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}
	return start()
}

// ServeCmd serves the public catalog site.
type ServeCmd struct {
	Address   string `help:"Listen address, e.g. :3000. Defaults to site.address."`
	Templates string `help:"Directory whose templates override the embedded ones." type:"existingdir"`
}

// Run executes the serve command.
func (s *ServeCmd) Run(g *Globals) error {
	e, err := open(g, envOptions{logToStderr: true})
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer e.Close()

	addr := e.cfg.Site.Address
	if s.Address != "" {
		addr = s.Address
	}

	ctx, stop := signalContext()
	defer stop()

	// The site has no one to show toasts to.
	d := e.deps(toast.Discard{})
	srv := site.New(site.Options{
		Categories:    lists.NewCategories(e.client.Categories(), d),
		Subcategories: lists.NewSubcategories(e.client.Subcategories(), d, e.cfg.Limits.MaxSubcategories),
		Products:      lists.NewProducts(e.client.Products(), d),
		Health:        e.client.Health(),
		PageSize:      e.cfg.Site.PageSize,
		Templates:     storefrontTemplates(s.Templates),
		Logger:        e.log,
	})

	mon := health.New(e.client.Health(), e.tokens, e.cfg.UI.HealthInterval, health.WithLogger(e.log))
	go mon.Run(ctx, nil)

	if err := srv.Listen(ctx, addr); err != nil {
		return &opError{msg: fmt.Sprintf("serve: %v", err)}
	}
	return nil
}

// storefrontTemplates returns the embedded templates, overlaid by dir when set.
func storefrontTemplates(dir string) fs.FS {
	return storefront.OverlayFS(dir, storefront.Templates)
}
