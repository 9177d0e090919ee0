package dbt

import (
	"context"
	"errors"
	"testing"

	"github.com/lightdash/lightdash-cli/internal/adapters/logging"
	"github.com/lightdash/lightdash-cli/internal/domain/config"
	"github.com/lightdash/lightdash-cli/internal/ports"
	"github.com/lightdash/lightdash-cli/internal/testutil"
	"github.com/lightdash/lightdash-cli/internal/testutil/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func banner(version string) string {
	return testutil.NewBanner(version).WithLatest("1.9.1").String()
}

func staticProbe(output string) VersionProbe {
	return ProbeFunc(func(context.Context) (string, error) {
		return output, nil
	})
}

// sequenceProbe reports each banner in turn, repeating the last one.
func sequenceProbe(outputs ...string) VersionProbe {
	i := 0
	return ProbeFunc(func(context.Context) (string, error) {
		out := outputs[i]
		if i < len(outputs)-1 {
			i++
		}
		return out, nil
	})
}

func ciEnv(enabled bool) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if key == CIEnvVar && enabled {
			return "true", true
		}
		return "", false
	}
}

type fixture struct {
	confirmer *mocks.Confirmer
	logger    *logging.RecordingLogger
	session   *Session
	progress  *mocks.Progress
}

func newFixture(answers ...bool) *fixture {
	f := &fixture{
		confirmer: mocks.NewConfirmer(answers...),
		logger:    logging.NewRecordingLogger(),
		session:   NewSession(),
		progress:  mocks.NewProgress(),
	}
	f.session.SetActiveProgress(f.progress)
	return f
}

func (f *fixture) resolver(probe VersionProbe, ci bool) *Resolver {
	return NewResolver(probe,
		WithConfirmer(f.confirmer),
		WithLogger(f.logger),
		WithLookupEnv(ciEnv(ci)),
	)
}

func TestResolve_SupportedVersionsResolveWithoutPrompt(t *testing.T) {
	t.Parallel()

	for _, option := range DefaultSupportedVersions() {
		t.Run(string(option), func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			raw := string(option) + ".2"

			got, err := f.resolver(staticProbe(banner(raw)), false).Resolve(context.Background(), f.session)

			require.NoError(t, err)
			assert.Equal(t, Resolution{VerboseVersion: raw, VersionOption: option}, got)
			assert.Empty(t, f.confirmer.Prompts())
			assert.False(t, f.session.FallbackAcknowledged())
			assert.Equal(t, PhaseResolved, f.session.Phase())
		})
	}
}

func TestResolve_ConcreteSupported(t *testing.T) {
	t.Parallel()
	f := newFixture()

	got, err := f.resolver(staticProbe(banner("1.7.3")), false).Resolve(context.Background(), f.session)

	require.NoError(t, err)
	assert.Equal(t, Resolution{VerboseVersion: "1.7.3", VersionOption: V1_7}, got)
	assert.Empty(t, f.confirmer.Prompts())
	starts, stops := f.progress.Counts()
	assert.Zero(t, starts)
	assert.Zero(t, stops)
}

func TestResolve_CIAcceptsNewestFallback(t *testing.T) {
	t.Parallel()
	f := newFixture()

	got, err := f.resolver(staticProbe(banner("1.10.0")), true).Resolve(context.Background(), f.session)

	require.NoError(t, err)
	assert.Equal(t, Resolution{VerboseVersion: "1.10.0", VersionOption: V1_9}, got)
	assert.Empty(t, f.confirmer.Prompts(), "CI must not prompt")

	warnings := f.logger.EntriesAt(ports.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "We don't currently support version 1.10.0")
	assert.Contains(t, warnings[0].Message, "interpret it as version 1.9")
	assert.Contains(t, warnings[0].Message, "(1.4.* - 1.9.*)")
	sessionID, ok := warnings[0].Field("session")
	assert.True(t, ok)
	assert.Equal(t, f.session.ID(), sessionID)

	assert.True(t, f.session.FallbackAcknowledged())
	assert.True(t, f.progress.Running())
	assert.Equal(t, PhaseResolved, f.session.Phase())
}

func TestResolve_CIRequiresExactTrue(t *testing.T) {
	t.Parallel()
	f := newFixture(true)

	r := NewResolver(staticProbe(banner("1.10.0")),
		WithConfirmer(f.confirmer),
		WithLookupEnv(func(string) (string, bool) { return "1", true }),
	)
	_, err := r.Resolve(context.Background(), f.session)

	require.NoError(t, err)
	assert.Len(t, f.confirmer.Prompts(), 1)
}

func TestResolve_InteractiveLegacyYes(t *testing.T) {
	t.Parallel()
	f := newFixture(true)

	got, err := f.resolver(staticProbe(banner("1.3.5")), false).Resolve(context.Background(), f.session)

	require.NoError(t, err)
	assert.Equal(t, Resolution{VerboseVersion: "1.3.5", VersionOption: V1_4}, got)
	assert.True(t, f.session.FallbackAcknowledged())

	prompts := f.confirmer.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "version 1.3.5")
	assert.Contains(t, prompts[0], "interpret it as version 1.4")
	assert.Contains(t, prompts[0], "\nDo you still want to continue?")

	starts, stops := f.progress.Counts()
	assert.Equal(t, 1, stops, "progress paused while prompting")
	assert.Equal(t, 1, starts, "progress resumed after consent")
	assert.True(t, f.progress.Running())
}

func TestResolve_InteractiveNoAborts(t *testing.T) {
	t.Parallel()
	f := newFixture(false)

	_, err := f.resolver(staticProbe(banner("1.10.0")), false).Resolve(context.Background(), f.session)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrDbtVersionUnsupported)
	assert.Contains(t, err.Error(), "1.10.0")
	assert.Contains(t, err.Error(), "1.4.* - 1.9.*")
	assert.False(t, f.session.FallbackAcknowledged())
	assert.False(t, f.progress.Running(), "progress stays paused after refusal")
	assert.Equal(t, PhaseAborted, f.session.Phase())
}

func TestResolve_PromptsAtMostOncePerSession(t *testing.T) {
	t.Parallel()
	f := newFixture(true)

	r := f.resolver(sequenceProbe(banner("1.10.0"), banner("2.0.1"), banner("1.3.2")), false)
	ctx := context.Background()

	first, err := r.Resolve(ctx, f.session)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, f.session)
	require.NoError(t, err)
	third, err := r.Resolve(ctx, f.session)
	require.NoError(t, err)

	assert.Len(t, f.confirmer.Prompts(), 1)
	assert.Equal(t, V1_9, first.VersionOption)
	assert.Equal(t, Resolution{VerboseVersion: "2.0.1", VersionOption: V1_9}, second)
	assert.Equal(t, Resolution{VerboseVersion: "1.3.2", VersionOption: V1_4}, third)
	assert.Empty(t, f.logger.EntriesAt(ports.LevelWarn))
	assert.Equal(t, PhaseResolved, f.session.Phase())
}

func TestResolve_SessionsAreIndependent(t *testing.T) {
	t.Parallel()
	f := newFixture(true, true)
	r := f.resolver(staticProbe(banner("1.10.0")), false)

	_, err := r.Resolve(context.Background(), f.session)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), NewSession())
	require.NoError(t, err)

	assert.Len(t, f.confirmer.Prompts(), 2)
}

func TestResolve_AbortedSessionCanResolveAgain(t *testing.T) {
	t.Parallel()
	f := newFixture(false, true)
	r := f.resolver(staticProbe(banner("1.10.0")), false)

	_, err := r.Resolve(context.Background(), f.session)
	require.Error(t, err)
	require.Equal(t, PhaseAborted, f.session.Phase())

	got, err := r.Resolve(context.Background(), f.session)
	require.NoError(t, err)
	assert.Equal(t, V1_9, got.VersionOption)
	assert.Equal(t, PhaseResolved, f.session.Phase())
	assert.Len(t, f.confirmer.Prompts(), 2)
}

func TestResolve_DetectionFailure(t *testing.T) {
	t.Parallel()
	f := newFixture()

	_, err := f.resolver(staticProbe("some unrelated text"), false).Resolve(context.Background(), f.session)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrDbtVersionUndetected)
	assert.Contains(t, err.Error(), "some unrelated text")
	assert.Empty(t, f.confirmer.Prompts())
	assert.Equal(t, PhaseAborted, f.session.Phase())
}

func TestResolve_ProbeError(t *testing.T) {
	t.Parallel()
	f := newFixture()
	launchErr := errors.New(`exec: "dbt": executable file not found in $PATH`)

	r := f.resolver(ProbeFunc(func(context.Context) (string, error) {
		return "", launchErr
	}), false)
	_, err := r.Resolve(context.Background(), f.session)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrDbtVersionUndetected)
	assert.ErrorIs(t, err, launchErr)
	assert.Equal(t, PhaseAborted, f.session.Phase())
}

func TestResolve_CommandProbeEndToEnd(t *testing.T) {
	t.Parallel()
	f := newFixture()

	runner := mocks.NewCommandRunner()
	runner.AddOutput("dbt", []string{"--version"}, dbt17Banner)

	got, err := f.resolver(NewCommandProbe(runner, "dbt"), false).Resolve(context.Background(), f.session)

	require.NoError(t, err)
	assert.Equal(t, V1_7, got.VersionOption)
	assert.Len(t, runner.Calls(), 1)
}

func TestResolve_ConfirmerError(t *testing.T) {
	t.Parallel()
	f := newFixture()
	cancelled := context.Canceled
	f.confirmer.FailWith(cancelled)

	_, err := f.resolver(staticProbe(banner("1.10.0")), false).Resolve(context.Background(), f.session)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, config.ErrDbtVersionUnsupported)
	assert.False(t, f.session.FallbackAcknowledged())
	assert.Equal(t, PhaseAborted, f.session.Phase())
}

func TestResolve_DefaultConfirmerDeclines(t *testing.T) {
	t.Parallel()

	r := NewResolver(staticProbe(banner("1.10.0")), WithLookupEnv(ciEnv(false)))
	_, err := r.Resolve(context.Background(), NewSession())

	assert.ErrorIs(t, err, config.ErrDbtVersionUnsupported)
}

func TestResolve_NilSession(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(staticProbe(banner("1.7.3"))).Resolve(context.Background(), nil)
	assert.Error(t, err)
}

func TestResolve_NoActiveProgress(t *testing.T) {
	t.Parallel()
	f := newFixture(true)
	f.session.SetActiveProgress(nil)

	got, err := f.resolver(staticProbe(banner("1.10.0")), false).Resolve(context.Background(), f.session)

	require.NoError(t, err)
	assert.Equal(t, V1_9, got.VersionOption)
}

func TestResolve_ContextLoggerPreferred(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctxLogger := logging.NewRecordingLogger()
	ctx := ports.ContextWithLogger(context.Background(), ctxLogger)

	_, err := f.resolver(staticProbe(banner("1.10.0")), true).Resolve(ctx, f.session)

	require.NoError(t, err)
	assert.Len(t, ctxLogger.EntriesAt(ports.LevelWarn), 1)
	assert.Empty(t, f.logger.Entries())
}

func TestResolve_CustomVersionSet(t *testing.T) {
	t.Parallel()
	f := newFixture(true)

	set, err := NewVersionSet([]VersionOption{"1.8", "1.9", "1.10"}, map[string]VersionOption{"1.7": "1.8"})
	require.NoError(t, err)

	r := NewResolver(staticProbe(banner("1.7.9")),
		WithVersionSet(set),
		WithConfirmer(f.confirmer),
		WithLookupEnv(ciEnv(false)),
	)
	got, err := r.Resolve(context.Background(), f.session)

	require.NoError(t, err)
	assert.Equal(t, VersionOption("1.8"), got.VersionOption)
	assert.Same(t, set, r.Versions())
	prompts := f.confirmer.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "(1.8.* - 1.10.*)")
}

func TestFallbackWarning(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"We don't currently support version 1.10.0 on Lightdash. "+
			"We'll interpret it as version 1.9 instead, which might cause unexpected errors or behavior. "+
			"For the best experience, please use a supported version (1.4.* - 1.9.*).",
		FallbackWarning("1.10.0", V1_9, "1.4.* - 1.9.*"))
}
