package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mxview/internal/app"
	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/presentation"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query resource names across every provider",
	Long: `Run a one-shot query in-process. Patterns use the name syntax with
wildcards; filters compare domains, properties and attributes.

Example:
  mxview query --pattern 'alphabet:*'
  mxview query --filter 'domain = alphabet and @Vowel = true'
  mxview query --pattern '*:type=*,*' --instances --format json`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

var (
	queryPattern   string
	queryFilter    string
	queryInstances bool
	queryFormat    string
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryPattern, "pattern", "p", "", "name pattern (default: everything)")
	queryCmd.Flags().StringVarP(&queryFilter, "filter", "f", "", "filter expression")
	queryCmd.Flags().BoolVarP(&queryInstances, "instances", "i", false, "print instances with class names")
	queryCmd.Flags().StringVarP(&queryFormat, "format", "o", "table", "output format: table or json")
}

// withApp builds and starts an app for a one-shot command, runs fn and stops it.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cleanup, err := initLogging(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := app.Build(cfg, version)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop(ctx) }()

	if err := a.Start(ctx); err != nil {
		return err
	}
	return fn(a)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	format, err := presentation.ParseFormat(queryFormat)
	if err != nil {
		return err
	}

	var pattern *objname.Name
	if queryPattern != "" {
		p, err := objname.Parse(queryPattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		pattern = &p
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return withApp(ctx, func(a *app.App) error {
		srv := a.Server()
		pred, err := a.Compiler().Compile(ctx, queryFilter, srv.Attribute)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}

		f := presentation.NewFormatter(cmd.OutOrStdout(), format)
		if queryInstances {
			return f.FormatInstances(presentation.FromInstances(srv.QueryInstances(pattern, pred)))
		}
		return f.FormatNames(presentation.FromNames(srv.QueryNames(pattern, pred)))
	})
}
