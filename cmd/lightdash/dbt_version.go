package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lightdash/lightdash-cli/internal/adapters/command"
	"github.com/lightdash/lightdash-cli/internal/adapters/logging"
	"github.com/lightdash/lightdash-cli/internal/adapters/prompt"
	"github.com/lightdash/lightdash-cli/internal/domain/config"
	"github.com/lightdash/lightdash-cli/internal/domain/dbt"
	"github.com/lightdash/lightdash-cli/internal/ports"
	"github.com/spf13/cobra"
)

var (
	dbtVersionJSON   bool
	dbtVersionBinary string
)

// Replaced in tests.
var (
	newCommandRunner = func() ports.CommandRunner { return command.NewRealRunner() }
	newConfirmer     = func() ports.Confirmer { return prompt.NewTerminalConfirmer() }
	newProgress      = func() ports.Progress { return prompt.NewSpinner("Detecting dbt version...") }
	progressEnabled  = func() bool { return prompt.IsTerminal(os.Stderr) }
	lookupEnv        = os.LookupEnv
)

var dbtVersionCmd = &cobra.Command{
	Use:   "dbt-version",
	Short: "Detect the installed dbt and the version Lightdash will use",
	Long: `Runs "dbt --version" and maps the installed version onto a supported
release line.

When the installed version is not supported you are asked whether to
continue with the closest compatible one. With CI=true the fallback is
accepted with a warning; --yes accepts it without asking.`,
	Args: cobra.NoArgs,
	RunE: runDbtVersion,
}

func init() {
	dbtVersionCmd.Flags().BoolVar(&dbtVersionJSON, "json", false, "print the resolution as JSON")
	dbtVersionCmd.Flags().StringVar(&dbtVersionBinary, "binary", "", "dbt executable (default: dbt.binary from config, or dbt)")
}

func runDbtVersion(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := ports.LoggerFromContextOr(ctx, logging.NewNopLogger())

	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	versions, err := versionSetFrom(settings)
	if err != nil {
		return err
	}

	binary := settings.Dbt.Binary
	if dbtVersionBinary != "" {
		binary = dbtVersionBinary
	}
	logger.Debug(ctx, "detecting dbt version", ports.F("binary", binary), ports.F("config", settings.Path))

	var confirmer ports.Confirmer = prompt.AutoConfirmer{}
	if !yesFlag {
		confirmer = newConfirmer()
	}

	resolver := dbt.NewResolver(
		dbt.NewCommandProbe(newCommandRunner(), binary),
		dbt.WithVersionSet(versions),
		dbt.WithConfirmer(confirmer),
		dbt.WithLookupEnv(lookupEnv),
	)

	stop := startProgress()
	res, err := resolver.Resolve(ctx, session)
	stop()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dbtVersionJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprintf(out, "dbt %s (compatibility %s)\n", res.VerboseVersion, res.VersionOption)
	return err
}

// startProgress shows a spinner on an interactive, non-CI terminal and
// registers it with the session. The returned func removes it.
func startProgress() func() {
	if !progressEnabled() {
		return func() {}
	}
	if v, _ := lookupEnv(dbt.CIEnvVar); v == "true" {
		return func() {}
	}

	p := newProgress()
	p.Start()
	session.SetActiveProgress(p)
	return func() {
		p.Stop()
		session.SetActiveProgress(nil)
	}
}

func versionSetFrom(settings config.Settings) (*dbt.VersionSet, error) {
	if !settings.HasCustomVersions() && settings.Dbt.LegacyFallbacks == nil {
		return dbt.DefaultVersionSet(), nil
	}
	set, err := dbt.ParseVersionSet(settings.Dbt.SupportedVersions, settings.Dbt.LegacyFallbacks)
	if err != nil {
		return nil, config.NewConfigInvalidError(settings.Path, err.Error())
	}
	return set, nil
}
