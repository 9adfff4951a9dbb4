package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mxview/internal/app"
	"github.com/zjrosen/mxview/internal/presentation"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List domains and resource counts",
	Args:  cobra.NoArgs,
	RunE:  runDomains,
}

var domainsFormat string

func init() {
	rootCmd.AddCommand(domainsCmd)

	domainsCmd.Flags().StringVarP(&domainsFormat, "format", "o", "table", "output format: table or json")
}

func runDomains(cmd *cobra.Command, _ []string) error {
	format, err := presentation.ParseFormat(domainsFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return withApp(ctx, func(a *app.App) error {
		srv := a.Server()
		counts := srv.CountByDomain()
		dto := presentation.DomainsDTO{
			DefaultDomain: srv.DefaultDomain(),
			Domains:       srv.Domains(),
		}
		for _, t := range srv.Targets() {
			dto.Targets = append(dto.Targets, presentation.TargetDTO{Domain: t.Domain, Kind: t.Kind, Count: counts[t.Domain]})
			dto.Count += counts[t.Domain]
		}
		return presentation.NewFormatter(cmd.OutOrStdout(), format).FormatDomains(dto)
	})
}
