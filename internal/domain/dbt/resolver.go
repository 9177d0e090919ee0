package dbt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lightdash/lightdash-cli/internal/domain/config"
	"github.com/lightdash/lightdash-cli/internal/ports"
)

// CIEnvVar is the environment variable that marks an unattended run when
// set to "true".
const CIEnvVar = "CI"

// Resolution is the outcome of Resolve.
type Resolution struct {
	// VerboseVersion is the version reported by dbt --version.
	VerboseVersion string `json:"verboseVersion"`
	// VersionOption is the supported release line used for this run.
	VersionOption VersionOption `json:"versionOption"`
}

// Resolver maps the installed dbt onto a supported VersionOption.
type Resolver struct {
	probe     VersionProbe
	versions  *VersionSet
	confirmer ports.Confirmer
	logger    ports.Logger
	lookupEnv func(string) (string, bool)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithVersionSet replaces the built-in supported versions.
func WithVersionSet(set *VersionSet) Option {
	return func(r *Resolver) {
		r.versions = set
	}
}

// WithConfirmer sets how the operator is asked to accept a fallback.
// Without one, interactive runs decline.
func WithConfirmer(c ports.Confirmer) Option {
	return func(r *Resolver) {
		r.confirmer = c
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(l ports.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithLookupEnv replaces os.LookupEnv for CI detection.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

// NewResolver creates a resolver around probe.
func NewResolver(probe VersionProbe, opts ...Option) *Resolver {
	r := &Resolver{
		probe:     probe,
		versions:  DefaultVersionSet(),
		confirmer: ports.ConfirmFunc(declineAll),
		logger:    discardLogger{},
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Versions returns the set the resolver matches against.
func (r *Resolver) Versions() *VersionSet {
	return r.versions
}

// Resolve detects the installed dbt and returns the option to use.
//
// A matching version resolves without interaction. An unsupported version
// resolves to its fallback: silently when session already acknowledged a
// fallback, with a logged warning when CI=true, and otherwise only after
// the operator confirms. Declining returns an error matching
// config.ErrDbtVersionUnsupported; probe and banner failures match
// config.ErrDbtVersionUndetected.
func (r *Resolver) Resolve(ctx context.Context, session *Session) (Resolution, error) {
	if session == nil {
		return Resolution{}, errors.New("dbt: resolve requires a session")
	}
	lc, err := session.machine()
	if err != nil {
		return Resolution{}, err
	}
	lc.begin()

	logger := ports.LoggerFromContextOr(ctx, r.logger).With(ports.F("session", session.ID()))

	output, err := r.probe.Probe(ctx)
	if err != nil {
		lc.send(eventProbeFailed)
		logger.Debug(ctx, "dbt --version failed", ports.F("error", err))
		return Resolution{}, config.NewDbtVersionUndetectedError(output, err)
	}
	verbose, err := ParseVersionBanner(output)
	if err != nil {
		lc.send(eventProbeFailed)
		return Resolution{}, err
	}
	lc.send(eventProbed)
	lc.send(eventParsed)

	supported, isSupported := r.versions.Match(verbose)
	fallback := r.versions.Fallback(verbose)

	if isSupported {
		lc.send(eventMatched)
		logger.Debug(ctx, "dbt version supported",
			ports.F("dbt_version", verbose), ports.F("version_option", supported))
		return Resolution{VerboseVersion: verbose, VersionOption: supported}, nil
	}

	if session.FallbackAcknowledged() {
		lc.send(eventAcknowledged)
		logger.Debug(ctx, "dbt version fallback already acknowledged",
			ports.F("dbt_version", verbose), ports.F("version_option", fallback))
		return Resolution{VerboseVersion: verbose, VersionOption: fallback}, nil
	}

	lc.send(eventUnmatched)
	if err := r.negotiate(ctx, logger, lc, session, verbose, fallback); err != nil {
		return Resolution{}, err
	}
	return Resolution{VerboseVersion: verbose, VersionOption: fallback}, nil
}

func (r *Resolver) negotiate(ctx context.Context, logger ports.Logger, lc *lifecycle, session *Session, verbose string, fallback VersionOption) error {
	supportedRange := r.versions.RangeMessage()
	message := FallbackWarning(verbose, fallback, supportedRange)

	progress := session.ActiveProgress()
	if progress != nil {
		progress.Stop()
	}

	if r.unattended() {
		logger.Warn(ctx, message, ports.F("dbt_version", verbose), ports.F("version_option", fallback))
	} else {
		ok, err := r.confirmer.Confirm(ctx, message+"\nDo you still want to continue?")
		if err != nil {
			lc.send(eventFailed)
			return fmt.Errorf("confirm dbt version fallback: %w", err)
		}
		if !ok {
			lc.send(eventRejected)
			return config.NewDbtVersionUnsupportedError(verbose, supportedRange)
		}
	}

	if progress != nil {
		progress.Start()
	}
	session.acknowledgeFallback()
	lc.send(eventAccepted)
	return nil
}

func (r *Resolver) unattended() bool {
	v, ok := r.lookupEnv(CIEnvVar)
	return ok && v == "true"
}

// FallbackWarning is the text shown when an unsupported version is
// interpreted as fallback.
func FallbackWarning(verbose string, fallback VersionOption, supportedRange string) string {
	return fmt.Sprintf("We don't currently support version %s on Lightdash. "+
		"We'll interpret it as version %s instead, which might cause unexpected errors or behavior. "+
		"For the best experience, please use a supported version (%s).",
		verbose, fallback, supportedRange)
}

func declineAll(context.Context, string) (bool, error) {
	return false, nil
}

// discardLogger is the default when neither the context nor WithLogger
// supplies one.
type discardLogger struct{}

func (discardLogger) Debug(context.Context, string, ...ports.Field) {}
func (discardLogger) Info(context.Context, string, ...ports.Field)  {}
func (discardLogger) Warn(context.Context, string, ...ports.Field)  {}
func (discardLogger) Error(context.Context, string, ...ports.Field) {}
func (d discardLogger) With(...ports.Field) ports.Logger            { return d }
func (discardLogger) Level() ports.Level                            { return ports.LevelError }
func (discardLogger) SetLevel(ports.Level)                          {}
