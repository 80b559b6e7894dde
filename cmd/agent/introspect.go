package main

import (
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/petasbytes/dimensional-agent/internal/introspect"
	"github.com/petasbytes/dimensional-agent/specs"
	"github.com/spf13/cobra"
)

type introspectOptions struct {
	dsn    string
	driver string
	schema string
	out    string
}

func newIntrospectCmd(_ *app) *cobra.Command {
	var o introspectOptions
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Build a schema.json from a live PostgreSQL or MySQL database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.dsn == "" {
				return fmt.Errorf("--dsn is required")
			}
			driver := o.driver
			if driver == "" {
				driver = introspect.DetectDriver(o.dsn)
			}
			d, err := introspect.DialectFor(driver)
			if err != nil {
				return err
			}
			db, err := introspect.Open(cmd.Context(), driver, o.dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			raw, err := introspect.Schema(cmd.Context(), db, d, o.schema)
			if err != nil {
				return err
			}
			body, err := specs.MarshalIndent(raw)
			if err != nil {
				return err
			}
			if o.out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(o.out, []byte(body+"\n"), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", o.out, err)
			}
			ancli.PrintOK(fmt.Sprintf("wrote %d tables to %s\n", len(raw.Tables), o.out))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.dsn, "dsn", "", "database source name")
	f.StringVar(&o.driver, "driver", "", "postgres or mysql (default: detected from the DSN)")
	f.StringVar(&o.schema, "schema", "", "schema to read (default: public, or the DSN's database on MySQL)")
	f.StringVar(&o.out, "out", "", "output file (default: stdout)")
	return cmd
}
