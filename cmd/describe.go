package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mxview/internal/app"
	"github.com/zjrosen/mxview/internal/domain/objname"
	"github.com/zjrosen/mxview/internal/presentation"
)

var describeCmd = &cobra.Command{
	Use:   "describe NAME",
	Short: "Show a resource's schema and attribute values",
	Example: `  mxview describe alphabet:letter=E
  mxview describe mxview:type=Runtime --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

var describeFormat string

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().StringVarP(&describeFormat, "format", "o", "table", "output format: table or json")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	format, err := presentation.ParseFormat(describeFormat)
	if err != nil {
		return err
	}
	name, err := objname.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return withApp(ctx, func(a *app.App) error {
		srv := a.Server()
		in, err := srv.Instance(name)
		if err != nil {
			return err
		}
		d, err := srv.Descriptor(name)
		if err != nil {
			return err
		}
		values, err := srv.Attributes(name, nil)
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout(), format).
			FormatResource(presentation.FromResource(in, d, values))
	})
}
