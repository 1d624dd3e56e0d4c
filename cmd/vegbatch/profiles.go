package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/vegetation-health-mcp/internal/vegetation"
)

func newProfilesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in crop profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(vegetation.Profiles())
			}
			for _, p := range vegetation.Profiles() {
				fmt.Fprintf(out, "%-11s %-5.2f %s\n", p.Key, p.IndexThreshold, p.Description)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print profiles as JSON")
	cobra.CheckErr(v.BindPFlag("json", cmd.Flags().Lookup("json")))
	return cmd
}
