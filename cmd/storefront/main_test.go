package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/smileynet/storefront/internal/catalog"
	"github.com/smileynet/storefront/internal/lists"
)

// errExitCalled is a sentinel used to catch kong's os.Exit calls in tests.
var errExitCalled = errors.New("exit called")

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	k, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Bind(&cli.Globals))
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestCLI_Parse(t *testing.T) {
	t.Run("version flag prints version commit and date", func(t *testing.T) {
		// Given: a CLI parser with version, commit, and date fields
		var cli CLI
		var buf bytes.Buffer
		versionStr := "v1.0.0 abc1234 2026-01-01T00:00:00Z"
		k, err := kong.New(&cli,
			kong.Vars{"version": versionStr},
			kong.Writers(&buf, &buf),
			kong.Exit(func(int) { panic(errExitCalled) }),
		)
		if err != nil {
			t.Fatal(err)
		}

		// When: --version flag is passed
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic from --version flag")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, errExitCalled) {
				panic(r)
			}

			// Then: version, commit, and date are all present in output
			output := buf.String()
			for _, want := range []string{"v1.0.0", "abc1234", "2026-01-01T00:00:00Z"} {
				if !strings.Contains(output, want) {
					t.Errorf("version output = %q, want to contain %q", output, want)
				}
			}
		}()

		k.Parse([]string{"--version"}) //nolint:errcheck // --version triggers panic via Exit hook
	})

	t.Run("no args shows usage and errors", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{}); err == nil {
			t.Fatal("expected error when no command provided")
		}
	})

	t.Run("group without subcommand lists", func(t *testing.T) {
		// Given: a CLI parser
		var cli CLI
		k := newParser(t, &cli)

		// When: only the group is named, with list flags
		kctx, err := k.Parse([]string{"categories", "--status", "inactive", "-s", "lip"})
		if err != nil {
			t.Fatal(err)
		}

		// Then: the list command runs with the embedded flags populated
		if kctx.Command() != "categories list" {
			t.Errorf("got command %q, want %q", kctx.Command(), "categories list")
		}
		if cli.Categories.List.Status != "inactive" || cli.Categories.List.Search != "lip" {
			t.Errorf("list flags = %+v", cli.Categories.List.ListFlags)
		}
	})

	t.Run("status rejects unknown values", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"products", "list", "--status", "archived"}); err == nil {
			t.Fatal("expected enum error for --status archived")
		}
	})

	t.Run("global flags are accepted after the command", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		_, err := k.Parse([]string{"health", "--base-url", "http://api.test", "--log-level", "debug", "--timeout", "2s"})
		if err != nil {
			t.Fatal(err)
		}

		if cli.BaseURL != "http://api.test" || cli.LogLevel != "debug" {
			t.Errorf("globals = %+v", cli.Globals)
		}
		if cli.Health.Timeout != 2*time.Second {
			t.Errorf("timeout = %v, want 2s", cli.Health.Timeout)
		}
	})

	t.Run("product update takes id and repeatable flags", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		kctx, err := k.Parse([]string{
			"products", "update", "42",
			"--color", "Ruby=#9B111E", "--color", "gold",
			"--tag", "vegan", "--price", "39,90", "--deactivate",
		})
		if err != nil {
			t.Fatal(err)
		}

		if kctx.Command() != "products update <id>" {
			t.Errorf("got command %q", kctx.Command())
		}
		u := cli.Products.Update
		if u.ID != 42 {
			t.Errorf("ID = %d, want 42", u.ID)
		}
		if len(u.Color) != 2 || u.Color[1] != "gold" {
			t.Errorf("Color = %v", u.Color)
		}
		if !u.Deactivate || u.Activate {
			t.Errorf("active flags = %+v", u.ActiveFlags)
		}
	})

	t.Run("activate and deactivate are exclusive", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"categories", "update", "3", "--activate", "--deactivate"}); err == nil {
			t.Fatal("expected xor error")
		}
	})

	t.Run("category create requires an image", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"categories", "create", "--name", "Lips", "--description", "d"}); err == nil {
			t.Fatal("expected missing --image error")
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitSuccess},
		{"operation refused", &opError{msg: "nope"}, exitOperation},
		{"wrapped operation", fmt.Errorf("categories: %w", &opError{msg: "nope"}), exitOperation},
		{"setup problem", errors.New("config: bad"), exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailed(t *testing.T) {
	if err := failed(lists.OK); err != nil {
		t.Errorf("failed(OK) = %v, want nil", err)
	}

	err := failed(lists.Result{Error: "Name is required", Field: "name"})
	if err == nil || err.Error() != "Name is required (name)" {
		t.Errorf("failed(field) = %v", err)
	}
	if !reportable(err) {
		t.Error("unshown error should be reportable")
	}

	shown := &opError{msg: "x", shown: true}
	if reportable(shown) {
		t.Error("shown error should not be reported again")
	}
	if !reportable(errors.New("setup")) {
		t.Error("plain errors are always reportable")
	}
}

// isolate points HOME at a temp dir and clears STOREFRONT_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "STOREFRONT_") {
			t.Setenv(name, "")
		}
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_Layering(t *testing.T) {
	// Given: a user config, a project config, a dotenv file and an env var
	home := isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "storefront", "config.yaml"),
		"api:\n  base_url: http://user.test\ncache:\n  ttl: 10s\n")
	writeFile(t, filepath.Join(dir, "config.yaml"),
		"api:\n  base_url: http://project.test\nsite:\n  page_size: 24\n")
	writeFile(t, filepath.Join(dir, ".env"), "STOREFRONT_TOKEN_KEY=fromdotenv\n")
	_ = os.Unsetenv("STOREFRONT_TOKEN_KEY")
	t.Cleanup(func() { _ = os.Unsetenv("STOREFRONT_TOKEN_KEY") })
	t.Setenv("STOREFRONT_CACHE_TTL", "5s")

	// When: loading with a log level flag
	cfg, err := loadConfig(&Globals{
		Config:   filepath.Join(dir, "config.yaml"),
		EnvFile:  filepath.Join(dir, ".env"),
		LogLevel: "debug",
	})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	// Then: each layer contributes in priority order
	if cfg.API.BaseURL != "http://project.test" {
		t.Errorf("base_url = %q, want project value", cfg.API.BaseURL)
	}
	if cfg.Site.PageSize != 24 {
		t.Errorf("page_size = %d, want 24", cfg.Site.PageSize)
	}
	if cfg.Cache.TTL != 5*time.Second {
		t.Errorf("cache ttl = %v, want env value 5s", cfg.Cache.TTL)
	}
	if cfg.Auth.TokenKey != "fromdotenv" {
		t.Errorf("token_key = %q, want dotenv value", cfg.Auth.TokenKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want flag value", cfg.Log.Level)
	}
}

func TestLoadConfig_FlagBeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("STOREFRONT_API_BASE_URL", "http://env.test")

	cfg, err := loadConfig(&Globals{
		Config:  filepath.Join(t.TempDir(), "missing.yaml"),
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		BaseURL: "http://flag.test",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://flag.test" {
		t.Errorf("base_url = %q, want flag value", cfg.API.BaseURL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	isolate(t)

	_, err := loadConfig(&Globals{
		Config:  filepath.Join(t.TempDir(), "missing.yaml"),
		EnvFile: filepath.Join(t.TempDir(), "missing.env"),
		BaseURL: "not a url",
	})
	if err == nil {
		t.Fatal("expected validation error for relative base URL")
	}
	if exitCode(err) != exitSetup {
		t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
	}
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductFlags_Apply(t *testing.T) {
	base := func() catalog.ProductInput {
		return catalog.ProductInput{
			Name:   "Velvet",
			Price:  money("10"),
			Type:   catalog.TypeMultiColor,
			Colors: []catalog.Color{{Name: "Ruby", Hex: "#9B111E"}},
			Tags:   []string{"old"},
			Active: true,
		}
	}

	t.Run("untouched fields keep their values", func(t *testing.T) {
		in := base()
		if err := (ProductFlags{Name: "Satin"}).apply(&in); err != nil {
			t.Fatal(err)
		}
		if in.Name != "Satin" || !in.Price.Equal(money("10")) || len(in.Colors) != 1 || in.Tags[0] != "old" {
			t.Errorf("apply = %+v", in)
		}
	})

	t.Run("comma prices are parsed", func(t *testing.T) {
		in := base()
		if err := (ProductFlags{Price: "39,90", Discount: "29.9"}).apply(&in); err != nil {
			t.Fatal(err)
		}
		if !in.Price.Equal(money("39.9")) {
			t.Errorf("Price = %s, want 39.9", in.Price)
		}
		if in.DiscountPrice == nil || !in.DiscountPrice.Equal(money("29.9")) {
			t.Errorf("DiscountPrice = %v, want 29.9", in.DiscountPrice)
		}
	})

	t.Run("bad price is an operation error", func(t *testing.T) {
		in := base()
		err := (ProductFlags{Price: "cheap"}).apply(&in)
		if exitCode(err) != exitOperation {
			t.Errorf("apply error = %v, want opError", err)
		}
	})

	t.Run("colors imply multi-color", func(t *testing.T) {
		in := catalog.ProductInput{Type: catalog.TypeStatic}
		if err := (ProductFlags{Color: []string{"Ruby=#9B111E", "gold"}}).apply(&in); err != nil {
			t.Fatal(err)
		}
		if in.Type != catalog.TypeMultiColor {
			t.Errorf("Type = %q, want MULTI_COLOR", in.Type)
		}
		want := []catalog.Color{{Name: "Ruby", Hex: "#9B111E"}, {Name: "Gold", Hex: "#FFD700"}}
		if len(in.Colors) != 2 || in.Colors[0] != want[0] || in.Colors[1] != want[1] {
			t.Errorf("Colors = %v, want %v", in.Colors, want)
		}
	})

	t.Run("static type drops colors", func(t *testing.T) {
		in := base()
		if err := (ProductFlags{Type: "static"}).apply(&in); err != nil {
			t.Fatal(err)
		}
		if in.Type != catalog.TypeStatic || in.Colors != nil {
			t.Errorf("Type = %q Colors = %v", in.Type, in.Colors)
		}
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		in := base()
		if err := (ProductFlags{Type: "BUNDLE"}).apply(&in); err == nil {
			t.Fatal("expected error for unknown type")
		}
	})

	t.Run("subcategory is set by id", func(t *testing.T) {
		in := base()
		if err := (ProductFlags{Category: 2, Subcategory: 7}).apply(&in); err != nil {
			t.Fatal(err)
		}
		if in.CategoryID != 2 || in.SubcategoryID == nil || *in.SubcategoryID != 7 {
			t.Errorf("category = %d sub = %v", in.CategoryID, in.SubcategoryID)
		}
	})
}

func TestActiveFlags_Apply(t *testing.T) {
	active := true
	ActiveFlags{}.apply(&active)
	if !active {
		t.Error("no flag should leave active unchanged")
	}
	ActiveFlags{Deactivate: true}.apply(&active)
	if active {
		t.Error("--deactivate should clear active")
	}
	ActiveFlags{Activate: true}.apply(&active)
	if !active {
		t.Error("--activate should set active")
	}
}

func TestProductFields(t *testing.T) {
	discount := money("19.9")
	sub := int64(10)
	p := catalog.Product{
		ID:              101,
		Name:            "Satin",
		Price:           money("1234.5"),
		DiscountPrice:   &discount,
		CategoryID:      1,
		CategoryName:    "Lips",
		SubcategoryID:   &sub,
		SubcategoryName: "Matte",
		Type:            catalog.TypeMultiColor,
		Colors:          map[string]string{"Ruby": "#9B111E", "Nude": "#E3BC9A"},
		Tags:            []string{"vegan", "matte"},
		Active:          true,
		ImageURL:        "cdn.test/img/1?type=THUMB",
	}

	got := map[string]string{}
	for _, kv := range productFields(p) {
		got[kv[0]] = kv[1]
	}

	want := map[string]string{
		"ID":          "101",
		"Type":        "Multi-color product",
		"Category":    "Lips (1)",
		"Subcategory": "Matte (10)",
		"Price":       "R$ 1.234,50",
		"Discount":    "R$ 19,90",
		"Active":      "yes",
		"Colors":      "Nude #E3BC9A, Ruby #9B111E",
		"Tags":        "vegan, matte",
		"Image":       "http://cdn.test/img/1?type=DISPLAY",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestDashboardCmd_RequiresTTY(t *testing.T) {
	started := false
	err := (&DashboardCmd{}).run(false, func() error { started = true; return nil })
	if err == nil || !strings.Contains(err.Error(), "TTY") {
		t.Errorf("run(false) error = %v, want TTY error", err)
	}
	if started {
		t.Error("dashboard started without a TTY")
	}

	if err := (&DashboardCmd{}).run(true, func() error { started = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !started {
		t.Error("dashboard did not start with a TTY")
	}
}

// backend is a minimal stand-in for the catalog API.
func backend(t *testing.T, healthStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(healthStatus)
		fmt.Fprint(w, `{"status":"UP"}`)
	})
	mux.HandleFunc("GET /api/v1/categorias", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[
			{"id":1,"nome":"Lips","descricao":"Lipsticks","ativo":true},
			{"id":2,"nome":"Eyes","descricao":"Shadows","ativo":false}
		]}`)
	})
	mux.HandleFunc("DELETE /api/v1/categorias/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, `{"success":false,"errorCode":%q}`, catalog.CodeCategoryHasProducts)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// commandGlobals isolates a command run against url and captures its output.
func commandGlobals(t *testing.T, url string) (*Globals, *bytes.Buffer) {
	t.Helper()
	isolate(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, fmt.Sprintf(
		"api:\n  base_url: %s\n  timeout: 2s\nauth:\n  token_dir: %s\nlog:\n  file: %s\n",
		url, filepath.Join(dir, "auth"), filepath.Join(dir, "storefront.log")))

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })

	return &Globals{Config: cfgPath, EnvFile: filepath.Join(dir, ".env"), Plain: true}, &buf
}

func TestHealthCmd(t *testing.T) {
	t.Run("up backend succeeds", func(t *testing.T) {
		srv := backend(t, http.StatusOK)
		g, out := commandGlobals(t, srv.URL)

		if err := (&HealthCmd{Timeout: time.Second}).Run(g); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(out.String(), "UP") {
			t.Errorf("output = %q, want status UP", out.String())
		}
	})

	t.Run("failing backend is an operation error", func(t *testing.T) {
		srv := backend(t, http.StatusServiceUnavailable)
		g, out := commandGlobals(t, srv.URL)

		err := (&HealthCmd{Timeout: time.Second}).Run(g)
		if exitCode(err) != exitOperation {
			t.Fatalf("Run() error = %v, want operation error", err)
		}
		if reportable(err) {
			t.Error("status was already printed")
		}
		if !strings.Contains(out.String(), "DOWN") {
			t.Errorf("output = %q, want status DOWN", out.String())
		}
	})
}

func TestCategoriesListCmd(t *testing.T) {
	srv := backend(t, http.StatusOK)

	t.Run("lists filtered categories", func(t *testing.T) {
		g, out := commandGlobals(t, srv.URL)

		cmd := &CategoriesListCmd{ListFlags: ListFlags{Status: "active"}}
		if err := cmd.Run(g); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		got := out.String()
		if !strings.Contains(got, "Lips") || !strings.Contains(got, "Lipsticks") {
			t.Errorf("output = %q, want Lips row", got)
		}
		if strings.Contains(got, "Eyes") {
			t.Errorf("output = %q, inactive category should be filtered", got)
		}
	})

	t.Run("stats", func(t *testing.T) {
		g, out := commandGlobals(t, srv.URL)

		cmd := &CategoriesListCmd{ListFlags: ListFlags{Status: "all"}, Stats: true}
		if err := cmd.Run(g); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		for _, want := range []string{"Total", "2", "Active", "Inactive", "1"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output = %q, want %q", out.String(), want)
			}
		}
	})
}

func TestCategoryDeleteCmd_Refused(t *testing.T) {
	// Given: a backend that refuses to delete categories with products
	srv := backend(t, http.StatusOK)
	g, out := commandGlobals(t, srv.URL)

	// When: deleting one
	err := (&CategoryDeleteCmd{ID: 1}).Run(g)

	// Then: the domain message is printed once and the exit code is 1
	if exitCode(err) != exitOperation {
		t.Fatalf("Run() error = %v, want operation error", err)
	}
	if reportable(err) {
		t.Error("refusal was already printed as a toast")
	}
	if !strings.Contains(out.String(), catalog.MsgCategoryDeleteWithProducts) {
		t.Errorf("output = %q, want %q", out.String(), catalog.MsgCategoryDeleteWithProducts)
	}
}

func TestStorefrontTemplates_Override(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "home.html"), "custom home")

	data, err := fs.ReadFile(storefrontTemplates(dir), "home.html")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "custom home" {
		t.Errorf("home.html = %q, want override", data)
	}
	if _, err := fs.ReadFile(storefrontTemplates(dir), "layout.html"); err != nil {
		t.Errorf("layout.html should still come from the embedded set: %v", err)
	}
}
