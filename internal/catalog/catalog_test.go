package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joinery-data/joinery/internal/metadata"
)

func TestBuildSchema(t *testing.T) {
	schema, err := BuildSchema()
	if err != nil {
		t.Fatalf("BuildSchema() error = %v", err)
	}
	if !schema.Finalized() {
		t.Fatal("expected a finalized schema")
	}

	entities, err := schema.Entities()
	if err != nil {
		t.Fatalf("Entities() error = %v", err)
	}
	want := []string{"User", "Category", "Product", "ProductListing"}
	if len(entities) != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), len(entities))
	}
	for i, name := range want {
		if entities[i].Name() != name {
			t.Errorf("entity %d = %s, want %s", i, entities[i].Name(), name)
		}
	}
}

func TestUserKeyGenerator(t *testing.T) {
	schema, err := BuildSchema()
	if err != nil {
		t.Fatalf("BuildSchema() error = %v", err)
	}
	user, ok := schema.Entity("User")
	if !ok {
		t.Fatal("User entity missing")
	}

	pk, ok := user.PrimaryKey()
	if !ok {
		t.Fatal("User has no primary key")
	}
	gen := pk.DefaultGenerator()
	if gen == nil {
		t.Fatal("User primary key has no generator")
	}

	first, ok := gen().(string)
	if !ok {
		t.Fatalf("generator returned %T, want string", gen())
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("generated key %q is not a UUID: %v", first, err)
	}
	if second := gen().(string); second == first {
		t.Error("generator returned the same key twice")
	}
}

func TestProductDefaults(t *testing.T) {
	schema, err := BuildSchema()
	if err != nil {
		t.Fatalf("BuildSchema() error = %v", err)
	}
	product, ok := schema.Entity("Product")
	if !ok {
		t.Fatal("Product entity missing")
	}

	inStock, ok := product.Column("in_stock")
	if !ok {
		t.Fatal("in_stock column missing")
	}
	if v, ok := inStock.DefaultValue(); !ok || v != true {
		t.Errorf("in_stock default = %v (%v), want true", v, ok)
	}

	createdAt, ok := product.Column("created_at")
	if !ok {
		t.Fatal("created_at column missing")
	}
	gen := createdAt.DefaultGenerator()
	if gen == nil {
		t.Fatal("created_at has no generator")
	}
	if _, ok := gen().(time.Time); !ok {
		t.Errorf("created_at generator returned %T, want time.Time", gen())
	}

	fks := product.ForeignKeys()
	if len(fks) != 1 {
		t.Fatalf("expected 1 foreign key, got %d", len(fks))
	}
	if fks[0].TargetEntity != "Category" {
		t.Errorf("foreign key target = %s, want Category", fks[0].TargetEntity)
	}
	if fks[0].OnDelete != metadata.ActionRestrict {
		t.Errorf("on delete = %s, want restrict", fks[0].OnDelete)
	}
}

func TestListingIsView(t *testing.T) {
	schema, err := BuildSchema()
	if err != nil {
		t.Fatalf("BuildSchema() error = %v", err)
	}
	listing, ok := schema.Entity("ProductListing")
	if !ok {
		t.Fatal("ProductListing entity missing")
	}
	if !listing.IsView() {
		t.Error("ProductListing must be a view")
	}
	if listing.ViewQuery() == "" {
		t.Error("ProductListing has no backing query")
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	registry := metadata.NewRegistry()
	if err := Register(registry); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := Register(registry); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
