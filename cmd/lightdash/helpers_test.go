package main

import (
	"bytes"
	"testing"

	"github.com/lightdash/lightdash-cli/internal/domain/dbt"
	"github.com/lightdash/lightdash-cli/internal/ports"
	"github.com/lightdash/lightdash-cli/internal/testutil"
	"github.com/lightdash/lightdash-cli/internal/testutil/mocks"
)

func dbtBanner(version string) string {
	return testutil.NewBanner(version).WithLatest("1.9.1").WithPlugin("postgres", "1.9.0").String()
}

// cliFixture swaps the command seams for doubles and restores them after
// the test. Tests using it must not run in parallel.
type cliFixture struct {
	runner    *mocks.CommandRunner
	confirmer *mocks.Confirmer
	progress  *mocks.Progress
	env       map[string]string
	dir       string

	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	f := &cliFixture{
		runner:    mocks.NewCommandRunner(),
		confirmer: mocks.NewConfirmer(),
		progress:  mocks.NewProgress(),
		env:       map[string]string{},
		dir:       t.TempDir(),
	}
	t.Chdir(f.dir)

	savedRunner, savedConfirmer, savedProgress := newCommandRunner, newConfirmer, newProgress
	savedEnabled, savedLookup, savedSession := progressEnabled, lookupEnv, session
	t.Cleanup(func() {
		newCommandRunner, newConfirmer, newProgress = savedRunner, savedConfirmer, savedProgress
		progressEnabled, lookupEnv, session = savedEnabled, savedLookup, savedSession
		resetFlags()
	})

	newCommandRunner = func() ports.CommandRunner { return f.runner }
	newConfirmer = func() ports.Confirmer { return f.confirmer }
	newProgress = func() ports.Progress { return f.progress }
	progressEnabled = func() bool { return false }
	lookupEnv = func(key string) (string, bool) {
		v, ok := f.env[key]
		return v, ok
	}
	session = dbt.NewSession()
	resetFlags()

	return f
}

func resetFlags() {
	cfgFile = ""
	verbose = false
	yesFlag = false
	logFormat = "text"
	logLevel = "info"
	dbtVersionJSON = false
	dbtVersionBinary = ""
}

func (f *cliFixture) installed(version string) {
	f.runner.AddOutput("dbt", []string{"--version"}, dbtBanner(version))
}

func (f *cliFixture) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	return testutil.WriteTempFile(t, f.dir, name, content)
}

func (f *cliFixture) run(args ...string) error {
	f.stdout.Reset()
	f.stderr.Reset()
	rootCmd.SetOut(&f.stdout)
	rootCmd.SetErr(&f.stderr)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
