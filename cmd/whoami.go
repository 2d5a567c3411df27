package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newWhoamiCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the AWS account and principal the credentials resolve to",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd.Context(), conf)
			if err != nil {
				return err
			}

			id, err := b.caller(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(id)
			case "yaml":
				return yaml.NewEncoder(out).Encode(id)
			case "table":
				t := table.NewWriter()
				t.SetOutputMirror(out)
				t.SetStyle(table.StyleLight)
				t.AppendRows([]table.Row{
					{"Account", id.Account},
					{"ARN", id.ARN},
					{"User ID", id.UserID},
				})
				t.Render()
				return nil
			default:
				return fmt.Errorf("unsupported format %q, expected table, json or yaml", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	return cmd
}
