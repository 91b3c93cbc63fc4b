package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/cdkforge/cdkforge/internal/scaffold"
	"github.com/cdkforge/cdkforge/internal/toolchain"
)

// nextStepsMarkdown returns the follow-up instructions for a new project.
func nextStepsMarkdown(req scaffold.Request, result *scaffold.Result) string {
	var b strings.Builder
	b.WriteString("## Next steps\n\n")
	fmt.Fprintf(&b, "1. `cd %s`\n", req.ServiceName)

	n := 2
	if !result.DependenciesInstalled {
		if c, err := toolchain.InstallCommand(req.PackageManager); err == nil {
			fmt.Fprintf(&b, "%d. `%s`\n", n, c)
			n++
		}
	}
	if req.Answers.AWSDevAccount == "" {
		fmt.Fprintf(&b, "%d. Replace `%s` in `infra/config/index.%s`\n", n, scaffold.TokenAWSDevAccount, scaffold.Extension(req.Language))
		n++
	}
	fmt.Fprintf(&b, "%d. `cdk deploy --profile %s`\n", n, req.Answers.AWSDevProfile)
	return b.String()
}

// printNextSteps renders the next steps as markdown. Headless output uses
// the plain notty style.
func printNextSteps(out io.Writer, d *Dependencies, req scaffold.Request, result *scaffold.Result) error {
	md := nextStepsMarkdown(req, result)

	style := glamour.WithAutoStyle()
	if d.Headless.IsHeadless() || d.Theme.NoColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render next steps: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
