package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/transport-data/tools/internal/sdmx"
	"github.com/transport-data/tools/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manipulate local data storage",
	Long: `Manipulate the artefact store: a per-user local cache plus a working
copy of the shared registry. Artefacts are addressed by URN, e.g.

  Codelist=TDCI:COLOUR(1.0.0)
  Codelist=TDCI:COLOUR            (latest version)`,
}

var storeCloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Clone the registry",
	Long: `Clone the registry.

The registry is cloned from the configured remote into the registry
subdirectory of the data directory. See 'tdc config show'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := store.New(cfg)
		if err != nil {
			return err
		}
		return u.Clone(cmd.Context())
	},
}

var storeUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fast-forward the registry to the latest upstream state",
	Long: `Fast-forward the registry working copy to the latest upstream state.

Local modifications (artefacts written but not yet shared upstream) are
never discarded; they are reported as a conflict instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := store.New(cfg)
		if err != nil {
			return err
		}
		return u.Update(cmd.Context())
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list [MAINTAINER]",
	Short: "List store contents, optionally for one maintainer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := store.New(cfg)
		if err != nil {
			return err
		}

		var f store.Filter
		if len(args) == 1 {
			f.Maintainer = args[0]
		}
		f.Class, _ = cmd.Flags().GetString("class")

		ids, err := u.List(f)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id.String())
		}
		return nil
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show URN",
	Short: "Display an SDMX artefact by URN",
	Long: `Display an SDMX artefact by URN.

The URN may be partial, starting with the object class, for instance
"Codelist=AGENCY:ID(1.2.3)"; omit the version to show the latest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := store.New(cfg)
		if err != nil {
			return err
		}

		a, err := u.GetURN(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s\n", a.Identity.String(), a.Name)
		if a.Description != "" {
			fmt.Fprintln(out, a.Description)
		}
		printItems(out, a)
		return nil
	},
}

var storeAddCmd = &cobra.Command{
	Use:   "add URN",
	Short: "Copy an artefact from the local cache to the registry",
	Long: `Copy the artefact named by URN from the local cache to the registry,
staging the resulting file for commit. Omit the version to copy the
latest local revision.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := store.New(cfg)
		if err != nil {
			return err
		}
		return u.AddToRegistry(args[0])
	},
}

// printItems lists scheme members the way the store sees them, numbered
// for easy reference.
func printItems(out io.Writer, a *sdmx.Artefact) {
	i := 0
	for _, c := range a.Codes {
		fmt.Fprintf(out, "%3d %s: %s\n", i, c.ID, c.Name)
		i++
	}
	for _, c := range a.Concepts {
		fmt.Fprintf(out, "%3d %s: %s\n", i, c.ID, c.Name)
		i++
	}
}

func init() {
	storeListCmd.Flags().String("class", "", "filter by artefact class (e.g. Codelist)")

	storeCmd.AddCommand(storeCloneCmd)
	storeCmd.AddCommand(storeUpdateCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeAddCmd)
	rootCmd.AddCommand(storeCmd)
}
