package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdkforge/cdkforge/internal/template"
)

// newTemplatesCmd returns the command listing available templates.
func newTemplatesCmd(deps func() *Dependencies) *cobra.Command {
	var templatesDir string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List available <language>/<template> pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := deps()
			if d == nil {
				return errors.New("dependencies not initialized")
			}
			return runTemplates(cmd, d, templatesDir)
		},
	}
	cmd.Flags().StringVar(&templatesDir, "templates-dir", "", "Templates root")
	return cmd
}

func runTemplates(cmd *cobra.Command, d *Dependencies, templatesDir string) error {
	out := cmd.OutOrStdout()
	st := newStyles(d.Theme)

	cwd, err := d.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	root, err := template.ResolveRoot(template.DefaultSources(template.SourceOptions{
		Flag:       templatesDir,
		ConfigRoot: d.Config.Templates.Root,
		WorkDir:    cwd,
		Getenv:     d.Getenv,
		Executable: d.Executable,
	})...)
	if err != nil {
		return err
	}

	refs, err := template.List(root.Path)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, st.muted.Render(fmt.Sprintf("Templates in %s (%s)", root.Path, root.Origin)))
	if len(refs) == 0 {
		_, _ = fmt.Fprintln(out, st.warningLine("no templates found"))
		return nil
	}
	for _, ref := range refs {
		_, _ = fmt.Fprintf(out, "  %s\n", ref)
	}
	return nil
}
