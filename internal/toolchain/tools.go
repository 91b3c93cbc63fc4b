package toolchain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Default tools.
const (
	DefaultVCS            = "git"
	DefaultPackageManager = "npm"
)

// Command is a resolved binary invocation.
type Command struct {
	Name string
	Args []string
}

// String returns the command line.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// vcsInit maps a VCS to its repository initialization command.
var vcsInit = map[string]Command{
	"git": {Name: "git", Args: []string{"init"}},
	"hg":  {Name: "hg", Args: []string{"init"}},
	"jj":  {Name: "jj", Args: []string{"git", "init"}},
}

// pmInstall maps a package manager to its dependency installation command.
var pmInstall = map[string]Command{
	"npm":    {Name: "npm", Args: []string{"install"}},
	"yarn":   {Name: "yarn", Args: []string{"install"}},
	"pnpm":   {Name: "pnpm", Args: []string{"install"}},
	"bun":    {Name: "bun", Args: []string{"install"}},
	"pip":    {Name: "pip", Args: []string{"install", "-r", "requirements.txt"}},
	"poetry": {Name: "poetry", Args: []string{"install"}},
	"uv":     {Name: "uv", Args: []string{"sync"}},
}

// InitCommand returns the repository initialization command for vcs.
func InitCommand(vcs string) (Command, error) {
	if vcs == "" {
		vcs = DefaultVCS
	}
	cmd, ok := vcsInit[vcs]
	if !ok {
		return Command{}, fmt.Errorf("%w: vcs %q", ErrUnsupportedTool, vcs)
	}
	return cmd, nil
}

// InstallCommand returns the dependency installation command for pm.
func InstallCommand(pm string) (Command, error) {
	if pm == "" {
		pm = DefaultPackageManager
	}
	cmd, ok := pmInstall[pm]
	if !ok {
		return Command{}, fmt.Errorf("%w: package manager %q", ErrUnsupportedTool, pm)
	}
	return cmd, nil
}

// Toolchain runs the VCS and package manager of a generated project.
type Toolchain struct {
	runner Runner
	logger *slog.Logger
}

// New creates a Toolchain over runner. A nil logger discards output.
func New(runner Runner, logger *slog.Logger) *Toolchain {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Toolchain{runner: runner, logger: logger}
}

// InitRepository initializes a repository of the given vcs in dir.
func (t *Toolchain) InitRepository(ctx context.Context, dir, vcs string) error {
	return t.run(ctx, dir, InitCommand, vcs)
}

// InstallDependencies installs the project dependencies in dir with pm.
func (t *Toolchain) InstallDependencies(ctx context.Context, dir, pm string) error {
	return t.run(ctx, dir, InstallCommand, pm)
}

func (t *Toolchain) run(ctx context.Context, dir string, resolve func(string) (Command, error), tool string) error {
	cmd, err := resolve(tool)
	if err != nil {
		return err
	}
	t.logger.Debug("running command", "cmd", cmd.String(), "dir", dir)
	if err := t.runner.Run(ctx, dir, cmd.Name, cmd.Args...); err != nil {
		t.logger.Debug("command failed", "cmd", cmd.String(), "error", err)
		return err
	}
	return nil
}
