package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/BreadYang/scrape-social-media-in-area/auth"
	"github.com/BreadYang/scrape-social-media-in-area/tokens"
	"github.com/BreadYang/scrape-social-media-in-area/twitter"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the selected credential set against the account endpoint",
		Long: `verify signs a request with the selected credential set and prints the
account it belongs to. With --save a verified set is appended to
twitter.credentials_file, so later runs can drop it from the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			creds, err := pickCredentials(cfg)
			if err != nil {
				return err
			}

			httpClient := auth.HTTPClient(cmd.Context(), creds, &http.Client{Timeout: 15 * time.Second})
			client := twitter.NewClient(httpClient, cfg.Twitter.StreamURL, cfg.Twitter.VerifyURL, nil)

			account, err := client.Verify(cmd.Context())
			if err != nil {
				return fmt.Errorf("verify credential set %d: %w", cfg.Twitter.CredentialIndex, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok, @%s (id %s)\n", account.ScreenName, account.ID)

			if !save {
				return nil
			}
			index, err := tokens.Remember(tokens.FileStore{Path: cfg.Twitter.CredentialsFile}, creds)
			if err != nil {
				return fmt.Errorf("save credential set: %w", err)
			}
			fmt.Fprintf(out, "saved as set %d in %s\n", index, cfg.Twitter.CredentialsFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "append the verified set to twitter.credentials_file")
	return cmd
}
