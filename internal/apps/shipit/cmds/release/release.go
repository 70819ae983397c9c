package releasecmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	hostappconfig "github.com/adatari/shipit/internal/apps/shipit/config"
	"github.com/adatari/shipit/internal/credentials"
	"github.com/adatari/shipit/internal/dockerclient"
	"github.com/adatari/shipit/internal/enginecheck"
	"github.com/adatari/shipit/internal/guardrails"
	"github.com/adatari/shipit/internal/imageref"
	"github.com/adatari/shipit/internal/logs"
	"github.com/adatari/shipit/internal/release"
	"github.com/adatari/shipit/internal/runtime"
	"github.com/adatari/shipit/internal/state"
)

// keepRunLogs is how many run log files survive the post-run pruning.
const keepRunLogs = 20

type releaseOptions struct {
	Registry   string
	Name       string
	Descriptor string
	SkipCheck  bool
}

type releaseOptionsKey struct{}

func withReleaseOptions(ctx context.Context, opts *releaseOptions) context.Context {
	return context.WithValue(ctx, releaseOptionsKey{}, opts)
}

func getReleaseOptions(ctx context.Context) *releaseOptions {
	opts, _ := ctx.Value(releaseOptionsKey{}).(*releaseOptions)
	return opts
}

// AttachReleaseCmdFlags attaches the "release" cmd flags to the given
// command and injects a releaseOptions instance into the command's
// context via PreRun.
func AttachReleaseCmdFlags(cmd *cobra.Command) {
	opts := &releaseOptions{}

	flags := cmd.Flags()
	flags.StringVar(&opts.Registry, "registry", "", "Registry host[:port] to push to (required)")
	flags.StringVar(&opts.Name, "name", "", "Image repository name (default: derived from the context directory)")
	flags.StringVar(&opts.Descriptor, "descriptor", "", "Deployment descriptor path (default deploy.env)")
	flags.BoolVar(&opts.SkipCheck, "skip-engine-check", false, "Skip the Docker engine version check")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(withReleaseOptions(cmd.Context(), opts))
	}
}

func NewReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release [PATH]",
		Short: "Build, version, push and describe an image",
		Long: `Build the Docker image at PATH, stamp a timestamp version, push the
versioned and latest tags to the registry, and write the deployment
descriptor.

If PATH is omitted, the current working directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: ReleaseCmdRunE,
	}

	AttachReleaseCmdFlags(cmd)

	return cmd
}

// ReleaseCmdRunE is a separate function so root can reuse it (default command)
func ReleaseCmdRunE(cmd *cobra.Command, args []string) error {
	rt := runtime.FromContextOrPanic(cmd.Context())
	opts := getReleaseOptions(cmd.Context())
	if opts == nil {
		// root attaches its own flags, but keep a safe fallback for tests
		opts = &releaseOptions{}
	}

	if opts.Registry == "" {
		opts.Registry = os.Getenv("SHIPIT_REGISTRY")
	}
	if opts.Registry == "" {
		return errors.New("--registry (or SHIPIT_REGISTRY) is required")
	}

	pathArg := "."
	if len(args) == 1 {
		pathArg = args[0]
	}
	contextDir, err := guardrails.ValidateContextDir(pathArg)
	if err != nil {
		return err
	}

	rt.OpenRunLog()

	signalsCtx, stopSignalsCtx := signal.NotifyContext(rt.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stopSignalsCtx()

	dockerClient, err := dockerclient.NewDockerClient()
	if err != nil {
		return err
	}

	if !opts.SkipCheck {
		if err := enginecheck.Verify(signalsCtx, dockerClient); err != nil {
			return err
		}
	}

	name := opts.Name
	if name == "" {
		name = imageref.NameFromPath(contextDir)
		logs.Infof("no --name given, using %s", name)
	}

	journal, err := state.DefaultJournal(signalsCtx)
	if err != nil {
		// releases still work without history
		logs.Warnf("release journal unavailable: %v", err)
	} else {
		rt.OnShutdown(func(context.Context) {
			if err := journal.Close(); err != nil {
				logs.Warnf("closing release journal: %v", err)
			}
		})
	}

	cfg := release.Config{
		Registry:       opts.Registry,
		ImageName:      name,
		ContextDir:     contextDir,
		DescriptorPath: opts.Descriptor,
	}
	deps := release.Deps{
		Builder:  dockerClient,
		Registry: dockerClient,
		Creds: credentials.Chain{
			credentials.EnvSource{},
			credentials.PromptSource{Registry: opts.Registry},
		},
		Hooks: release.Hooks{
			PostRelease: []func(context.Context, release.Result) error{
				journalHook(journal, rt.RunID()),
				func(context.Context, release.Result) error {
					return hostappconfig.PruneRunLogs(keepRunLogs)
				},
			},
		},
	}

	pipeline, err := release.New(cfg, deps)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(signalsCtx)
	if err != nil {
		return err
	}

	logs.Spacer()
	logs.Infof("released %s (descriptor %s)", res.VersionedRef, res.DescriptorPath)
	return nil
}

// journalHook records runs that actually published something: full
// releases and degraded ones. Aborted runs left no remote state worth
// remembering.
func journalHook(journal *state.Journal, runID string) func(context.Context, release.Result) error {
	return func(ctx context.Context, res release.Result) error {
		if journal == nil {
			return nil
		}
		if res.State != release.StateDescriptorWritten && res.State != release.StatePushed {
			return nil
		}

		outcome := state.OutcomeReleased
		if res.State != release.StateDescriptorWritten {
			outcome = state.OutcomeDegraded
		}
		return journal.Append(ctx, state.Release{
			RunID:      runID,
			Registry:   res.Registry,
			ImageName:  res.ImageName,
			Version:    res.Version,
			Outcome:    outcome,
			Descriptor: res.DescriptorPath,
		})
	}
}
