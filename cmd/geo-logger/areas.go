package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BreadYang/scrape-social-media-in-area/geo"
)

func newAreasCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List known areas as YAML (name: minLon,minLat,maxLon,maxLat)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var custom map[string]string
			if root.configPath != "" {
				cfg, err := root.load()
				if err != nil {
					return err
				}
				custom = cfg.Areas
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(geo.Areas(custom))
		},
	}
}
