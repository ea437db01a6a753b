package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/joinery-data/joinery/internal/catalog"
	"github.com/joinery-data/joinery/internal/config"
	"github.com/joinery-data/joinery/internal/lifecycle"
	"github.com/joinery-data/joinery/internal/model"
)

var seedConfigDir string

func init() {
	seedCmd.Flags().StringVar(&seedConfigDir, "config", ".", "Directory containing joinery.yaml")
}

type demoProduct struct {
	name  string
	price float64
}

var demoCatalog = []struct {
	category string
	products []demoProduct
}{
	{"Hand Tools", []demoProduct{
		{"Dovetail Saw", 89.50},
		{"Block Plane", 64.00},
		{"Marking Gauge", 32.25},
	}},
	{"Hardware", []demoProduct{
		{"Brass Hinge Pair", 12.80},
		{"Cut Nails 50mm", 7.95},
	}},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into the catalog",
	Long:  "Ensure the schema exists, then insert a demo user plus sample categories and products; reruns skip rows that already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		resolver := &config.FileResolver{Paths: []string{seedConfigDir}}
		cfg, err := resolver.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve configuration: %w", err)
		}

		schema, err := catalog.BuildSchema()
		if err != nil {
			return fmt.Errorf("failed to build catalog schema: %w", err)
		}

		coord := lifecycle.New(&config.StaticResolver{Config: cfg},
			lifecycle.PostgresConnector{}, lifecycle.WithEnsureSchema())
		if err := coord.Start(ctx, schema); err != nil {
			return fmt.Errorf("startup failed: %w", err)
		}
		defer coord.Close()

		out := cmd.OutOrStdout()
		if err := seedUser(ctx, coord, out); err != nil {
			return err
		}
		if err := seedProducts(ctx, coord, out); err != nil {
			return err
		}

		color.Green("✓ seed complete")
		return nil
	},
}

func seedUser(ctx context.Context, coord *lifecycle.Coordinator, out io.Writer) error {
	users, ok := coord.Facade("UserModel")
	if !ok {
		return fmt.Errorf("UserModel facade not provisioned")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	inst, err := users.Create(model.Record{
		"email":         "demo@example.com",
		"name":          "Demo User",
		"password_hash": string(hash),
	})
	if err != nil {
		return fmt.Errorf("failed to stage demo user: %w", err)
	}

	if err := users.Save(ctx, inst); err != nil {
		if model.IsUniqueViolation(err) {
			fmt.Fprintln(out, "demo user already present, skipping")
			return nil
		}
		return fmt.Errorf("failed to seed user: %w", err)
	}

	fmt.Fprintf(out, "✓ user %v\n", inst.Values()["email"])
	return nil
}

func seedProducts(ctx context.Context, coord *lifecycle.Coordinator, out io.Writer) error {
	categories, ok := coord.Facade("CategoryModel")
	if !ok {
		return fmt.Errorf("CategoryModel facade not provisioned")
	}
	products, ok := coord.Facade("ProductModel")
	if !ok {
		return fmt.Errorf("ProductModel facade not provisioned")
	}

	for _, group := range demoCatalog {
		categoryID, err := ensureCategory(ctx, categories, group.category, out)
		if err != nil {
			return err
		}

		for _, p := range group.products {
			if _, found, err := products.FindOne(ctx, model.Filter{"name": p.name}); err != nil {
				return fmt.Errorf("failed to look up product %s: %w", p.name, err)
			} else if found {
				continue
			}

			inst, err := products.Create(model.Record{
				"category_id": categoryID,
				"name":        p.name,
				"price":       p.price,
			})
			if err != nil {
				return fmt.Errorf("failed to stage product %s: %w", p.name, err)
			}
			if err := products.Save(ctx, inst); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.name, err)
			}
			fmt.Fprintf(out, "✓ product %s\n", p.name)
		}
	}
	return nil
}

func ensureCategory(ctx context.Context, categories *model.Facade, name string, out io.Writer) (interface{}, error) {
	record, found, err := categories.FindOne(ctx, model.Filter{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %s: %w", name, err)
	}
	if found {
		return record["id"], nil
	}

	inst, err := categories.Create(model.Record{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to stage category %s: %w", name, err)
	}
	if err := categories.Save(ctx, inst); err != nil {
		return nil, fmt.Errorf("failed to seed category %s: %w", name, err)
	}

	fmt.Fprintf(out, "✓ category %s\n", name)
	return inst.Values()["id"], nil
}
