package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joinery-data/joinery/internal/catalog"
	"github.com/joinery-data/joinery/internal/config"
	"github.com/joinery-data/joinery/internal/ddl"
	"github.com/joinery-data/joinery/internal/lifecycle"
)

var schemaConfigDir string

func init() {
	schemaApplyCmd.Flags().StringVar(&schemaConfigDir, "config", ".", "Directory containing joinery.yaml")
	schemaCmd.AddCommand(schemaPrintCmd)
	schemaCmd.AddCommand(schemaApplyCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema management commands",
	Long:  "Inspect and apply the DDL generated from the catalog entities",
}

var schemaPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the catalog DDL",
	Long:  "Render the CREATE statements for the catalog schema without touching a database",
	RunE: func(cmd *cobra.Command, args []string) error {
		statements, err := catalogStatements()
		if err != nil {
			return err
		}
		for _, stmt := range statements {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", stmt)
		}
		return nil
	},
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the catalog DDL to the configured database",
	Long:  "Connect using joinery.yaml and execute the generated CREATE statements; statements are idempotent",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		resolver := &config.FileResolver{Paths: []string{schemaConfigDir}}
		cfg, err := resolver.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve configuration: %w", err)
		}

		statements, err := catalogStatements()
		if err != nil {
			return err
		}

		db, err := lifecycle.PostgresConnector{}.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply DDL: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ applied %d statements to %s\n", len(statements), cfg.Database.Name)
		return nil
	},
}

func catalogStatements() ([]string, error) {
	schema, err := catalog.BuildSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog schema: %w", err)
	}
	statements, err := ddl.Statements(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to generate DDL: %w", err)
	}
	return statements, nil
}
