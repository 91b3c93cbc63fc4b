package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdkforge/cdkforge/pkg/version"
)

// newVersionCmd returns the command printing version information.
func newVersionCmd(deps func() *Dependencies) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "cdkforge %s\n", version.Get())
			if !check {
				return nil
			}
			d := deps()
			if d == nil {
				return errors.New("dependencies not initialized")
			}
			return runVersionCheck(cmd, d)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check whether a newer release is available")
	return cmd
}

// runVersionCheck compares the running version with the latest release.
func runVersionCheck(cmd *cobra.Command, d *Dependencies) error {
	out := cmd.OutOrStdout()
	st := newStyles(d.Theme)
	cfg := d.Config.Update

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	checker := d.NewChecker(cfg, d.Logger)
	available, info, err := checker.IsUpdateAvailable(ctx, version.GetVersion())
	if err != nil {
		return fmt.Errorf("check latest release: %w", err)
	}
	if !available {
		_, _ = fmt.Fprintln(out, st.successLine("cdkforge is up to date"))
		return nil
	}

	msg := fmt.Sprintf("cdkforge %s is available", info.Version)
	if info.URL != "" {
		msg += ": " + info.URL
	}
	_, _ = fmt.Fprintln(out, st.warningLine(msg))
	return nil
}
