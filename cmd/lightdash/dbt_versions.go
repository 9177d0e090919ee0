package main

import (
	"fmt"
	"sort"

	"github.com/lightdash/lightdash-cli/internal/domain/config"
	"github.com/spf13/cobra"
)

var dbtVersionsCmd = &cobra.Command{
	Use:   "dbt-versions",
	Short: "List the dbt versions Lightdash supports",
	Args:  cobra.NoArgs,
	RunE:  runDbtVersions,
}

func runDbtVersions(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	versions, err := versionSetFrom(settings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Supported dbt versions (%s):\n", versions.RangeMessage())
	for _, v := range versions.Versions() {
		marker := ""
		if v == versions.Latest() {
			marker = " (latest)"
		}
		_, _ = fmt.Fprintf(out, "  %s.*%s\n", v, marker)
	}

	legacy := versions.LegacyFallbacks()
	prefixes := make([]string, 0, len(legacy))
	for prefix := range legacy {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	if len(prefixes) > 0 {
		_, _ = fmt.Fprintln(out, "\nLegacy versions:")
		for _, prefix := range prefixes {
			_, _ = fmt.Fprintf(out, "  %s.* runs as %s\n", prefix, legacy[prefix])
		}
	}
	_, _ = fmt.Fprintf(out, "\nOther versions run as %s after confirmation.\n", versions.Latest())
	return nil
}
