package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cdkforge/cdkforge/internal/awsprofile"
	"github.com/cdkforge/cdkforge/internal/cli/wizard"
	"github.com/cdkforge/cdkforge/internal/config"
	"github.com/cdkforge/cdkforge/internal/scaffold"
	"github.com/cdkforge/cdkforge/internal/ui"
	"github.com/cdkforge/cdkforge/internal/update"
)

// fakeTools records tool invocations.
type fakeTools struct {
	calls      []string
	installErr error
}

func (f *fakeTools) InitRepository(_ context.Context, _ string, vcs string) error {
	f.calls = append(f.calls, "init:"+vcs)
	return nil
}

func (f *fakeTools) InstallDependencies(_ context.Context, _ string, pm string) error {
	f.calls = append(f.calls, "install:"+pm)
	return f.installErr
}

// fakeChecker returns a fixed release.
type fakeChecker struct {
	available bool
	info      *update.VersionInfo
	err       error
}

func (f *fakeChecker) CheckLatest(context.Context) (*update.VersionInfo, error) {
	return f.info, f.err
}

func (f *fakeChecker) IsUpdateAvailable(context.Context, string) (bool, *update.VersionInfo, error) {
	return f.available, f.info, f.err
}

// isolateAWS points the AWS SDK at an empty shared config.
func isolateAWS(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
}

// testEnv is a workspace with a templates root and preset dependencies.
type testEnv struct {
	deps      *Dependencies
	tools     *fakeTools
	recorder  *tracetest.SpanRecorder
	workDir   string
	templates string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	isolateAWS(t)

	base := t.TempDir()
	templates := filepath.Join(base, "templates")
	writeTemplate(t, templates, "typescript", "default", map[string]string{
		"package.json":          `{"name":"{{SERVICE_NAME}}"}`,
		"infra/config/index.ts": "account={{AWS_DEV_ACCOUNT}} region={{AWS_DEV_REGION}} profile={{PROFILE}} ns={{PROJECT_NAMESPACE}}\n",
		"lib/stack.ts":          "// {{SERVICE_NAME}} untouched\n",
	})
	writeTemplate(t, templates, "python", "default", map[string]string{
		"infra/config/index.py": "region = '{{AWS_DEV_REGION}}'\n",
	})

	workDir := filepath.Join(base, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatal(err)
	}

	headless := ui.NewHeadlessManager()
	headless.ForceHeadless(true)
	theme := ui.NewTheme()
	theme.NoColor = true

	tools := &fakeTools{}
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	deps := &Dependencies{
		Config:   config.NewDefaultConfig(),
		Logger:   slog.New(slog.DiscardHandler),
		Tracer:   provider.Tracer("test"),
		AWS:      awsprofile.NewResolver(nil),
		Headless: headless,
		Theme:    theme,
		Tools:    tools,
		Prompt: func([]wizard.Question) (*wizard.Result, error) {
			t.Error("unexpected prompt")
			return nil, wizard.ErrCancelled
		},
		NewChecker: func(config.UpdateConfig, *slog.Logger) update.Checker {
			return &fakeChecker{}
		},
		Getenv:     func(string) string { return "" },
		Getwd:      func() (string, error) { return workDir, nil },
		Executable: func() (string, error) { return filepath.Join(base, "bin", "cdkforge"), nil },
	}

	return &testEnv{deps: deps, tools: tools, recorder: recorder, workDir: workDir, templates: templates}
}

func writeTemplate(t *testing.T, root, lang, name string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, lang, name, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func (e *testEnv) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(e.deps)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.workDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", rel, err)
	}
	return string(data)
}

func TestCreate_NonInteractive(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("orders",
		"--templates-dir", env.templates,
		"--non-interactive",
		"--account", "123456789012",
		"--region", "eu-west-1",
	)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}

	if got := env.read(t, "orders/package.json"); got != `{"name":"orders"}` {
		t.Errorf("package.json = %q", got)
	}
	want := "account=123456789012 region=eu-west-1 profile=default ns=orders-organization\n"
	if got := env.read(t, "orders/infra/config/index.ts"); got != want {
		t.Errorf("index.ts = %q, want %q", got, want)
	}
	if got := env.read(t, "orders/lib/stack.ts"); !strings.Contains(got, "{{SERVICE_NAME}}") {
		t.Errorf("lib/stack.ts should keep its tokens, got %q", got)
	}

	if strings.Join(env.tools.calls, ",") != "init:git,install:npm" {
		t.Errorf("tool calls = %v", env.tools.calls)
	}
	for _, s := range []string{"[Copy] Copying template files...", "  Updated package.json", "  ok: Dependencies installed", "✓ Created", "Next steps", "cd orders"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	if len(env.recorder.Ended()) == 0 {
		t.Error("expected scaffold spans")
	}
}

func TestCreate_CreateAlias(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("create", "billing",
		"--templates-dir", env.templates,
		"--language", "python",
		"--skip-git", "--skip-install",
	)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if got := env.read(t, "billing/infra/config/index.py"); got != "region = 'us-east-1'\n" {
		t.Errorf("index.py = %q", got)
	}
	if len(env.tools.calls) != 0 {
		t.Errorf("tool calls = %v, want none", env.tools.calls)
	}
	if !strings.Contains(out, "AWS_DEV_ACCOUNT") || !strings.Contains(out, "index.py") {
		t.Errorf("next steps should mention the account token:\n%s", out)
	}
}

func TestCreate_ConfigDefaultsBelowFlags(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Config.Defaults = config.DefaultsConfig{
		Namespace: "acme",
		Region:    "ap-southeast-2",
		Profile:   "acme-dev",
	}
	env.deps.Config.Tools.PackageManager = "pnpm"
	env.deps.Config.Templates.Root = env.templates

	_, err := env.run("orders", "--namespace", "orders-team")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	want := "account={{AWS_DEV_ACCOUNT}} region=ap-southeast-2 profile=acme-dev ns=orders-team\n"
	if got := env.read(t, "orders/infra/config/index.ts"); got != want {
		t.Errorf("index.ts = %q, want %q", got, want)
	}
	if env.tools.calls[1] != "install:pnpm" {
		t.Errorf("tool calls = %v, want pnpm install", env.tools.calls)
	}
}

func TestCreate_ServiceNameRequiredWhenHeadless(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("--templates-dir", env.templates)
	if !errors.Is(err, ErrServiceNameRequired) {
		t.Errorf("run error = %v, want ErrServiceNameRequired", err)
	}
}

func TestCreate_WizardFillsMissingAnswers(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Headless.ForceHeadless(false)

	var asked []string
	env.deps.Prompt = func(qs []wizard.Question) (*wizard.Result, error) {
		for _, q := range qs {
			asked = append(asked, q.ID)
		}
		return &wizard.Result{
			ServiceName:   "billing",
			Language:      "typescript",
			Template:      "default",
			AWSDevAccount: "210987654321",
			AWSDevRegion:  "us-west-2",
		}, nil
	}

	out, err := env.run("--templates-dir", env.templates, "--profile", "billing-dev", "--skip-install")
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}

	if len(asked) == 0 || asked[0] != wizard.IDServiceName {
		t.Errorf("asked = %v, want service name first", asked)
	}
	for _, id := range asked {
		if id == wizard.IDProfile {
			t.Error("profile was given by flag and should not be asked")
		}
	}

	want := "account=210987654321 region=us-west-2 profile=billing-dev ns=billing-organization\n"
	if got := env.read(t, "billing/infra/config/index.ts"); got != want {
		t.Errorf("index.ts = %q, want %q", got, want)
	}
}

func TestCreate_WizardCancelled(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Headless.ForceHeadless(false)
	env.deps.Prompt = func([]wizard.Question) (*wizard.Result, error) {
		return nil, wizard.ErrCancelled
	}

	_, err := env.run("orders", "--templates-dir", env.templates)
	if !errors.Is(err, wizard.ErrCancelled) {
		t.Errorf("run error = %v, want ErrCancelled", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.workDir, "orders")); !os.IsNotExist(statErr) {
		t.Error("target should not be created after cancel")
	}
}

func TestCreate_UnknownRegionWarns(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("orders", "--templates-dir", env.templates, "--region", "mars-north-1", "--skip-install")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "! unknown AWS region") {
		t.Errorf("output missing region warning:\n%s", out)
	}
}

func TestCreate_TargetExists(t *testing.T) {
	env := newTestEnv(t)
	if err := os.MkdirAll(filepath.Join(env.workDir, "orders"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := env.run("orders", "--templates-dir", env.templates)
	if !errors.Is(err, scaffold.ErrTargetExists) {
		t.Errorf("run error = %v, want ErrTargetExists", err)
	}
	if !strings.Contains(out, "✗") {
		t.Errorf("output missing error line:\n%s", out)
	}

	var buf strings.Builder
	buf.WriteString(out)
	printError(&buf, err)
	if n := strings.Count(buf.String(), "directory already exists"); n != 1 {
		t.Errorf("error printed %d times, want once:\n%s", n, buf.String())
	}
}

func TestPrintError(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	printError(&buf, errors.New("unknown flag: --colour"))
	printError(&buf, &reportedError{err: scaffold.ErrInstallFailed})
	printError(&buf, nil)

	if got := buf.String(); got != "Error: unknown flag: --colour\n" {
		t.Errorf("output = %q", got)
	}
}

func TestCreate_TemplateNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("orders", "--templates-dir", env.templates, "--template", "missing")
	if !errors.Is(err, scaffold.ErrTemplateNotFound) {
		t.Errorf("run error = %v, want ErrTemplateNotFound", err)
	}
}

func TestCreate_InstallFailure(t *testing.T) {
	env := newTestEnv(t)
	env.tools.installErr = errors.New("exit status 1")

	_, err := env.run("orders", "--templates-dir", env.templates)
	if !errors.Is(err, scaffold.ErrInstallFailed) {
		t.Errorf("run error = %v, want ErrInstallFailed", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.workDir, "orders", "package.json")); statErr != nil {
		t.Errorf("target should remain after install failure: %v", statErr)
	}
}

func TestTemplatesCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("templates", "--templates-dir", env.templates)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	for _, s := range []string{"python/default", "typescript/default", "(flag)"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("version")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.HasPrefix(out, "cdkforge ") {
		t.Errorf("output = %q", out)
	}
}

func TestVersionCmd_Check(t *testing.T) {
	tests := []struct {
		name    string
		checker *fakeChecker
		want    string
		wantErr bool
	}{
		{
			name:    "newer_release",
			checker: &fakeChecker{available: true, info: &update.VersionInfo{Version: "v9.0.0", URL: "https://example.com/v9"}},
			want:    "! cdkforge v9.0.0 is available: https://example.com/v9",
		},
		{
			name:    "up_to_date",
			checker: &fakeChecker{},
			want:    "✓ cdkforge is up to date",
		},
		{
			name:    "check_failed",
			checker: &fakeChecker{err: update.ErrNoRelease},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.deps.NewChecker = func(config.UpdateConfig, *slog.Logger) update.Checker { return tt.checker }

			out, err := env.run("version", "--check")
			if tt.wantErr {
				if !errors.Is(err, update.ErrNoRelease) {
					t.Errorf("run error = %v, want ErrNoRelease", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("run error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRootCmd_Flags(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd(nil)
	for _, name := range []string{
		"template", "language", "templates-dir", "namespace", "account", "region", "profile",
		"package-manager", "skip-git", "skip-install", "non-interactive", "detect-account",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
	for _, name := range []string{"config", "verbose"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	if strings.Join(names, ",") != "create,templates,version" {
		t.Errorf("subcommands = %v", names)
	}
}
