// Package catalog declares the product catalog entities served by the
// data-access layer: users, categories, products, and the read-only
// product listing view.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/joinery-data/joinery/internal/metadata"
)

// SchemaName is the name the catalog schema registers under.
const SchemaName = "catalog"

// listingQuery backs the ProductListing view. Only in-stock products
// appear in listings.
const listingQuery = `SELECT p.id, p.name, c.name AS category_name, p.price
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE p.in_stock
ORDER BY p.name`

// User is keyed by an application-generated UUID rather than a serial,
// so identifiers are stable across environments.
func userEntity() *metadata.Entity {
	return metadata.NewTable("User", "users", []metadata.Column{
		metadata.NewColumn("id", metadata.TypeUUID).PrimaryKey().
			DefaultFunc(func() interface{} { return uuid.New().String() }),
		metadata.NewColumn("email", metadata.TypeString).Length(255).Unique(),
		metadata.NewColumn("name", metadata.TypeString).Length(100),
		metadata.NewColumn("password_hash", metadata.TypeText),
		metadata.NewColumn("created_at", metadata.TypeTimestamp).
			DefaultFunc(func() interface{} { return time.Now().UTC() }),
	})
}

func categoryEntity() *metadata.Entity {
	return metadata.NewTable("Category", "categories", []metadata.Column{
		metadata.NewColumn("id", metadata.TypeBigInt).AutoIncrement().PrimaryKey(),
		metadata.NewColumn("name", metadata.TypeString).Length(50).Unique(),
	})
}

// Products keep their category for as long as they exist; deleting a
// category with products in it is refused at the store.
func productEntity() *metadata.Entity {
	return metadata.NewTable("Product", "products",
		[]metadata.Column{
			metadata.NewColumn("id", metadata.TypeBigInt).AutoIncrement().PrimaryKey(),
			metadata.NewColumn("category_id", metadata.TypeBigInt),
			metadata.NewColumn("name", metadata.TypeString).Length(120),
			metadata.NewColumn("description", metadata.TypeText).Nullable(),
			metadata.NewColumn("price", metadata.TypeFloat),
			metadata.NewColumn("in_stock", metadata.TypeBool).Default(true),
			metadata.NewColumn("created_at", metadata.TypeTimestamp).
				DefaultFunc(func() interface{} { return time.Now().UTC() }),
		},
		metadata.ForeignKey{
			Columns:      []string{"category_id"},
			TargetEntity: "Category",
			OnDelete:     metadata.ActionRestrict,
			OnUpdate:     metadata.ActionCascade,
		},
	)
}

func listingEntity() *metadata.Entity {
	return metadata.NewView("ProductListing", "product_listings", listingQuery,
		metadata.NewColumn("id", metadata.TypeBigInt),
		metadata.NewColumn("name", metadata.TypeString),
		metadata.NewColumn("category_name", metadata.TypeString),
		metadata.NewColumn("price", metadata.TypeFloat),
	)
}

// Register adds the catalog entities to the registry.
func Register(registry *metadata.Registry) error {
	for _, entity := range []*metadata.Entity{
		userEntity(),
		categoryEntity(),
		productEntity(),
		listingEntity(),
	} {
		if err := registry.Register(entity); err != nil {
			return err
		}
	}
	return nil
}

// BuildSchema registers the catalog entities in a fresh registry and
// returns the finalized schema, ready for the startup pipeline.
func BuildSchema() (*metadata.Schema, error) {
	registry := metadata.NewRegistry()
	if err := Register(registry); err != nil {
		return nil, err
	}

	schema, err := metadata.NewSchema(SchemaName, registry,
		"User", "Category", "Product", "ProductListing")
	if err != nil {
		return nil, err
	}
	if err := schema.Finalize(); err != nil {
		return nil, err
	}
	return schema, nil
}
