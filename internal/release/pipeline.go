// Package release runs the publish pipeline: stamp a version, build
// the image, tag it for the registry, push both tags and write the
// deployment descriptor. The pipeline is a straight line with no
// rollback; a failed step aborts the run and leaves whatever earlier
// steps produced in place.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/adatari/shipit/internal/credentials"
	"github.com/adatari/shipit/internal/descriptor"
	"github.com/adatari/shipit/internal/imageref"
	"github.com/adatari/shipit/internal/logs"
	"github.com/adatari/shipit/internal/stamp"
)

// Step names the pipeline phase an error came from.
type Step string

const (
	StepValidate     Step = "validate"
	StepAuthenticate Step = "authenticate"
	StepBuild        Step = "build"
	StepTag          Step = "tag"
	StepPush         Step = "push"
	StepDescriptor   Step = "descriptor"
)

// State is where a run currently stands. States only ever move forward,
// except Aborted which is reachable from any non-terminal state.
type State string

const (
	StateInit              State = "init"
	StateAuthenticated     State = "authenticated"
	StateBuilt             State = "built"
	StateTagged            State = "tagged"
	StatePushed            State = "pushed"
	StateDescriptorWritten State = "descriptor-written"
	StateAborted           State = "aborted"
)

// RegistryClient is the registry-facing surface the pipeline needs.
type RegistryClient interface {
	Authenticate(ctx context.Context, registryAddr string, creds credentials.Credentials) (string, error)
	TagImage(ctx context.Context, src, dst string) error
	PushImage(ctx context.Context, ref string, auth string, out io.Writer) error
}

// ImageBuilder builds a local image from a build context directory.
type ImageBuilder interface {
	BuildImage(ctx context.Context, contextDir string, tag string) (string, error)
}

// ProgressSink receives streamed daemon progress for one push.
type ProgressSink interface {
	io.Writer
	Close()
}

// Hooks run around the pipeline. They are best effort: a failing hook
// is logged and never aborts the release.
type Hooks struct {
	PreRelease  []func(ctx context.Context) error
	PostRelease []func(ctx context.Context, res Result) error
}

type Config struct {
	// Registry is the host[:port] to push to, e.g. registry.example.com.
	Registry string

	// ImageName is the repository part of the reference.
	ImageName string

	// ContextDir is the Docker build context. Must contain a Dockerfile
	// at its root.
	ContextDir string

	// DescriptorPath is where the deployment descriptor lands. Empty
	// means descriptor.DefaultPath.
	DescriptorPath string
}

// Deps are the pipeline's collaborators. Builder, Registry and Creds
// are required; the rest default in New.
type Deps struct {
	Builder  ImageBuilder
	Registry RegistryClient
	Creds    credentials.Source
	Stamper  stamp.Stamper
	Writer   descriptor.Writer
	Progress func(name string) ProgressSink
	Hooks    Hooks
}

// Result reports what a run produced, even when it failed partway.
type Result struct {
	State          State
	Registry       string
	ImageName      string
	Version        string
	VersionedRef   string
	LatestRef      string
	DescriptorPath string
}

type Pipeline struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) (*Pipeline, error) {
	if deps.Builder == nil {
		return nil, errors.New("release: Builder is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("release: Registry is required")
	}
	if deps.Creds == nil {
		return nil, errors.New("release: Creds is required")
	}
	if deps.Stamper == nil {
		deps.Stamper = stamp.NewStamper(nil)
	}
	if cfg.DescriptorPath == "" {
		cfg.DescriptorPath = descriptor.DefaultPath
	}
	if deps.Writer == nil {
		deps.Writer = descriptor.NewFileWriter(cfg.DescriptorPath)
	}
	if deps.Progress == nil {
		deps.Progress = func(name string) ProgressSink {
			return logs.NewTailBox(name)
		}
	}
	return &Pipeline{cfg: cfg, deps: deps}, nil
}

// Run executes the pipeline once. The returned Result is meaningful on
// every path, including failures: State says how far the run got.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{
		State:     StateInit,
		Registry:  p.cfg.Registry,
		ImageName: p.cfg.ImageName,
	}

	version := p.deps.Stamper.NextVersion()
	res.Version = version

	// Assemble and validate every reference up front, before any work
	// or network traffic happens.
	local, err := imageref.Local(p.cfg.ImageName, version)
	if err != nil {
		return p.abort(ctx, &res, StepValidate, fmt.Errorf("%w: %v", ErrInvalidReference, err))
	}
	versioned, err := imageref.New(p.cfg.Registry, p.cfg.ImageName, version)
	if err != nil {
		return p.abort(ctx, &res, StepValidate, fmt.Errorf("%w: %v", ErrInvalidReference, err))
	}
	latest := versioned.WithTag(imageref.LatestTag)
	if err := latest.Validate(); err != nil {
		return p.abort(ctx, &res, StepValidate, fmt.Errorf("%w: %v", ErrInvalidReference, err))
	}
	res.VersionedRef = versioned.String()
	res.LatestRef = latest.String()

	p.runPreHooks(ctx)

	logs.Banner("Authenticate")
	creds, err := p.deps.Creds.Resolve()
	if err != nil {
		return p.abort(ctx, &res, StepAuthenticate, fmt.Errorf("%w: %v", ErrAuth, err))
	}
	auth, err := p.deps.Registry.Authenticate(ctx, p.cfg.Registry, creds)
	if err != nil {
		return p.abort(ctx, &res, StepAuthenticate, err)
	}
	res.State = StateAuthenticated
	logs.Infof("authenticated to %s as %s", p.cfg.Registry, creds.Username)

	logs.Banner("Build")
	logs.Infof("building %s from %s", local.String(), p.cfg.ContextDir)
	if _, err := p.deps.Builder.BuildImage(ctx, p.cfg.ContextDir, local.String()); err != nil {
		return p.abort(ctx, &res, StepBuild, err)
	}
	res.State = StateBuilt

	logs.Banner("Tag")
	for _, dst := range []string{res.VersionedRef, res.LatestRef} {
		if err := p.deps.Registry.TagImage(ctx, local.String(), dst); err != nil {
			return p.abort(ctx, &res, StepTag, err)
		}
		logs.Infof("tagged %s", dst)
	}
	res.State = StateTagged

	logs.Banner("Push")
	// Versioned tag first. If the latest push fails afterwards, the
	// immutable versioned tag is already live, which is the recoverable
	// half of the pair.
	for _, ref := range []string{res.VersionedRef, res.LatestRef} {
		sink := p.deps.Progress("push " + ref)
		err := p.deps.Registry.PushImage(ctx, ref, auth, sink)
		sink.Close()
		if err != nil {
			return p.abort(ctx, &res, StepPush, err)
		}
		logs.Infof("pushed %s", ref)
	}
	res.State = StatePushed

	logs.Banner("Descriptor")
	d := descriptor.Descriptor{
		Registry:  p.cfg.Registry,
		ImageName: p.cfg.ImageName,
		Version:   version,
	}
	if err := p.deps.Writer.Write(d); err != nil {
		// Pushes already landed; this run is degraded, not failed.
		degraded := &DegradedError{Err: fmt.Errorf("%w: %v", ErrDescriptorIO, err)}
		p.runPostHooks(ctx, res)
		return res, degraded
	}
	res.State = StateDescriptorWritten
	res.DescriptorPath = p.cfg.DescriptorPath
	logs.Infof("wrote %s", p.cfg.DescriptorPath)

	p.runPostHooks(ctx, res)
	return res, nil
}

// abort moves the run to its failure terminal state. Post hooks still
// run: they are maintenance, not release bookkeeping.
func (p *Pipeline) abort(ctx context.Context, res *Result, step Step, err error) (Result, error) {
	res.State = StateAborted
	p.runPostHooks(ctx, *res)
	return *res, &StepError{Step: step, Err: err}
}

func (p *Pipeline) runPreHooks(ctx context.Context) {
	for _, hook := range p.deps.Hooks.PreRelease {
		if err := hook(ctx); err != nil {
			logs.Warnf("pre-release hook: %v", err)
		}
	}
}

func (p *Pipeline) runPostHooks(ctx context.Context, res Result) {
	for _, hook := range p.deps.Hooks.PostRelease {
		if err := hook(ctx, res); err != nil {
			logs.Warnf("post-release hook: %v", err)
		}
	}
}
