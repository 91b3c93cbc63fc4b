package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdkforge/cdkforge/pkg/version"
)

// Execute builds the command tree and runs it. A failure is printed once:
// either by the progress output of the failing step or here.
func Execute() error {
	root := newRootCmd(nil)
	err := root.Execute()
	printError(root.ErrOrStderr(), err)
	return err
}

// newRootCmd builds the command tree. When deps is nil the dependencies are
// created from the --config and --verbose flags before any command runs.
func newRootCmd(deps *Dependencies) *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	current := func() *Dependencies { return deps }

	opts := &createOptions{}
	root := &cobra.Command{
		Use:   "cdkforge [service-name]",
		Short: "Scaffold AWS CDK service projects from templates",
		Long: `cdkforge creates a new AWS CDK service project from a template.

It copies <templates>/<language>/<template> into ./<service-name>, fills in
the project answers, initializes a repository and installs dependencies.

Examples:
  cdkforge orders-service
  cdkforge orders-service --language python --region eu-west-1
  cdkforge templates`,
		Version:       version.GetVersion(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if deps != nil {
				return nil
			}
			d, err := newDependencies(configPath, verbose, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			deps = d
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, current(), opts)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("cdkforge %s\n", version.GetVersion()))

	root.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: $XDG_CONFIG_HOME/cdkforge/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write diagnostic logs to stderr")
	bindCreateFlags(root, opts)

	root.AddCommand(
		newCreateCmd(current),
		newTemplatesCmd(current),
		newVersionCmd(current),
	)

	return root
}
