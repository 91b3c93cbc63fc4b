package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cdkforge/cdkforge/internal/awsprofile"
	"github.com/cdkforge/cdkforge/internal/cli/wizard"
	"github.com/cdkforge/cdkforge/internal/config"
	"github.com/cdkforge/cdkforge/internal/scaffold"
	"github.com/cdkforge/cdkforge/internal/template"
)

// ErrServiceNameRequired indicates no service name was given and none could
// be prompted for.
var ErrServiceNameRequired = errors.New("service name is required (pass it as an argument or run in a terminal)")

// createOptions holds the flags of the create command.
type createOptions struct {
	template       string
	language       string
	templatesDir   string
	namespace      string
	account        string
	region         string
	profile        string
	packageManager string
	skipGit        bool
	skipInstall    bool
	nonInteractive bool
	detectAccount  bool
}

// bindCreateFlags registers the create flags on cmd.
func bindCreateFlags(cmd *cobra.Command, o *createOptions) {
	f := cmd.Flags()
	f.StringVar(&o.template, "template", scaffold.DefaultTemplate, "Template name under the language directory")
	f.StringVar(&o.language, "language", scaffold.DefaultLanguage, "Template language: typescript, javascript or python")
	f.StringVar(&o.templatesDir, "templates-dir", "", "Templates root (default: $"+template.EnvTemplatesRoot+", config, <executable>/../templates, ./templates)")
	f.StringVar(&o.namespace, "namespace", "", "Project namespace (default: <service-name>-organization)")
	f.StringVar(&o.account, "account", "", "AWS dev account ID")
	f.StringVar(&o.region, "region", "", "AWS dev region (default: profile region or "+scaffold.DefaultRegion+")")
	f.StringVar(&o.profile, "profile", "", "AWS dev profile (default: $AWS_PROFILE or "+scaffold.DefaultProfile+")")
	f.StringVar(&o.packageManager, "package-manager", "", "Package manager used to install dependencies (default: npm)")
	f.BoolVar(&o.skipGit, "skip-git", false, "Do not initialize a repository")
	f.BoolVar(&o.skipInstall, "skip-install", false, "Do not install dependencies")
	f.BoolVar(&o.nonInteractive, "non-interactive", false, "Never prompt; use flags, config and defaults")
	f.BoolVar(&o.detectAccount, "detect-account", false, "Ask AWS STS for the account ID when none is given")
}

// newCreateCmd returns the create command, an alias of the root command.
func newCreateCmd(deps func() *Dependencies) *cobra.Command {
	opts := &createOptions{}
	cmd := &cobra.Command{
		Use:     "create [service-name]",
		Aliases: []string{"new"},
		Short:   "Create a new service project",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, deps(), opts)
		},
	}
	bindCreateFlags(cmd, opts)
	return cmd
}

// runCreate resolves the request and runs the scaffold pipeline.
func runCreate(cmd *cobra.Command, args []string, d *Dependencies, o *createOptions) error {
	if d == nil {
		return errors.New("dependencies not initialized")
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	st := newStyles(d.Theme)
	cfg := d.Config

	cwd, err := d.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	root, err := template.ResolveRoot(template.DefaultSources(template.SourceOptions{
		Flag:       o.templatesDir,
		ConfigRoot: cfg.Templates.Root,
		WorkDir:    cwd,
		Getenv:     d.Getenv,
		Executable: d.Executable,
	})...)
	if err != nil {
		return err
	}
	d.Logger.Debug("templates root resolved", "origin", root.Origin, "path", root.Path)

	var service string
	if len(args) > 0 {
		service = args[0]
	}
	known := knownAnswers(cmd, service, o, cfg)
	shared := d.AWS.SharedDefaults(known.AWSDevProfile)

	if !o.nonInteractive && !d.Headless.IsHeadless() {
		known, err = prompt(d, known, shared, root.Path)
		if err != nil {
			return err
		}
	}
	if known.ServiceName == "" {
		return ErrServiceNameRequired
	}

	answers := finalAnswers(known, shared)

	if answers.AWSDevAccount == "" && o.detectAccount {
		account, err := d.AWS.CallerAccount(ctx, answers.AWSDevProfile, answers.AWSDevRegion)
		if err != nil {
			_, _ = fmt.Fprintln(out, st.warningLine(fmt.Sprintf("could not detect AWS account: %v", err)))
		} else {
			answers.AWSDevAccount = account
		}
	}
	warnAnswers(out, st, answers)

	req := scaffold.Request{
		ServiceName:    known.ServiceName,
		Language:       first(known.Language, cfg.Templates.Language),
		Template:       first(known.Template, cfg.Templates.Name),
		Answers:        answers,
		WorkDir:        cwd,
		TemplatesRoot:  root.Path,
		SkipGit:        o.skipGit || cfg.Tools.SkipGit,
		SkipInstall:    o.skipInstall || cfg.Tools.SkipInstall,
		PackageManager: first(o.packageManager, cfg.Tools.PackageManager),
		VCS:            cfg.Tools.VCS,
	}

	s := scaffold.NewScaffolder(nil, d.Tools, d.Logger)
	s.SetTracer(d.Tracer)
	reporter := &trackingReporter{ProgressReporter: newReporter(out, d, o.nonInteractive)}
	s.SetReporter(reporter)

	_, _ = fmt.Fprintln(out, st.title.Render(fmt.Sprintf("Creating %s from %s/%s", req.ServiceName, req.Language, req.Template)))
	result, err := s.Scaffold(ctx, req)
	if err != nil {
		if reporter.failed {
			return &reportedError{err: err}
		}
		return err
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, st.successLine(fmt.Sprintf("Created %s", result.TargetDir)))
	for _, w := range result.Warnings {
		_, _ = fmt.Fprintln(out, st.warningLine(w))
	}
	return printNextSteps(out, d, req, result)
}

// knownAnswers collects the answers given by flags, falling back to the
// configuration defaults. Language and template count only when their flag
// was set so the wizard can still offer a choice.
func knownAnswers(cmd *cobra.Command, service string, o *createOptions, cfg *config.Config) wizard.Known {
	k := wizard.Known{
		ServiceName:      service,
		ProjectNamespace: first(o.namespace, cfg.Defaults.Namespace),
		AWSDevAccount:    first(o.account, cfg.Defaults.Account),
		AWSDevRegion:     first(o.region, cfg.Defaults.Region),
		AWSDevProfile:    first(o.profile, cfg.Defaults.Profile),
	}
	if cmd.Flags().Changed("language") {
		k.Language = o.language
	}
	if cmd.Flags().Changed("template") {
		k.Template = o.template
	}
	return k
}

// prompt asks for every answer still missing and merges the replies.
func prompt(d *Dependencies, known wizard.Known, shared awsprofile.Defaults, templatesRoot string) (wizard.Known, error) {
	qs := wizard.Questions(known, wizard.Suggestions{
		Language:        d.Config.Templates.Language,
		Template:        d.Config.Templates.Name,
		Region:          shared.Region,
		Profile:         shared.Profile,
		Templates:       templateIndex(d, templatesRoot),
		Regions:         awsprofile.KnownRegions(),
		ValidateAccount: awsprofile.ValidateAccount,
	})
	if len(qs) == 0 {
		return known, nil
	}

	r, err := d.Prompt(qs)
	if err != nil {
		return known, err
	}
	return mergeWizard(known, r), nil
}

// templateIndex maps each language to its template names. A root that
// cannot be listed yields nil.
func templateIndex(d *Dependencies, root string) map[string][]string {
	refs, err := template.List(root)
	if err != nil {
		d.Logger.Debug("list templates", "root", root, "error", err)
		return nil
	}
	index := make(map[string][]string)
	for _, ref := range refs {
		index[ref.Language] = append(index[ref.Language], ref.Name)
	}
	return index
}

// mergeWizard fills the empty fields of k from r.
func mergeWizard(k wizard.Known, r *wizard.Result) wizard.Known {
	if r == nil {
		return k
	}
	k.ServiceName = first(k.ServiceName, r.ServiceName)
	k.Language = first(k.Language, r.Language)
	k.Template = first(k.Template, r.Template)
	k.ProjectNamespace = first(k.ProjectNamespace, r.ProjectNamespace)
	k.AWSDevAccount = first(k.AWSDevAccount, r.AWSDevAccount)
	k.AWSDevRegion = first(k.AWSDevRegion, r.AWSDevRegion)
	k.AWSDevProfile = first(k.AWSDevProfile, r.AWSDevProfile)
	return k
}

// finalAnswers layers the AWS shared config and built-in defaults beneath
// the known answers.
func finalAnswers(k wizard.Known, shared awsprofile.Defaults) scaffold.Answers {
	a := scaffold.DefaultAnswers(k.ServiceName)
	a.ProjectNamespace = first(k.ProjectNamespace, a.ProjectNamespace)
	a.AWSDevAccount = k.AWSDevAccount
	a.AWSDevRegion = first(k.AWSDevRegion, shared.Region, a.AWSDevRegion)
	a.AWSDevProfile = first(k.AWSDevProfile, shared.Profile, a.AWSDevProfile)
	return a
}

// warnAnswers reports answers that look wrong but do not stop the run.
func warnAnswers(out io.Writer, st styles, a scaffold.Answers) {
	if err := awsprofile.ValidateRegion(a.AWSDevRegion); err != nil {
		_, _ = fmt.Fprintln(out, st.warningLine(err.Error()))
	}
	if a.AWSDevAccount != "" {
		if err := awsprofile.ValidateAccount(a.AWSDevAccount); err != nil {
			_, _ = fmt.Fprintln(out, st.warningLine(err.Error()))
		}
	}
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
