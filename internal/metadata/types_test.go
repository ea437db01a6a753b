package metadata

import "testing"

func TestColumnBuilder(t *testing.T) {
	t.Run("all attributes", func(t *testing.T) {
		gen := func() interface{} { return "generated" }
		col := NewColumn("email", TypeString).
			Length(255).
			Nullable().
			Unique().
			DefaultFunc(gen)

		if col.Name() != "email" {
			t.Errorf("expected email, got %s", col.Name())
		}
		if col.DataType() != TypeString {
			t.Errorf("expected string type, got %s", col.DataType())
		}
		length, ok := col.MaxLength()
		if !ok || length != 255 {
			t.Errorf("expected max length 255, got %d (%v)", length, ok)
		}
		if !col.IsNullable() {
			t.Error("expected nullable")
		}
		if !col.IsUnique() {
			t.Error("expected unique")
		}
		if col.DefaultGenerator() == nil {
			t.Fatal("expected a generator")
		}
		if got := col.DefaultGenerator()(); got != "generated" {
			t.Errorf("expected generated, got %v", got)
		}
	})

	t.Run("defaults to non-nullable plain column", func(t *testing.T) {
		col := NewColumn("name", TypeText)

		if col.IsNullable() || col.IsUnique() || col.IsPrimaryKey() || col.IsAutoIncrement() {
			t.Error("fresh column should carry no constraints")
		}
		if _, ok := col.MaxLength(); ok {
			t.Error("fresh column should have no max length")
		}
		if _, ok := col.DefaultValue(); ok {
			t.Error("fresh column should have no default")
		}
		if col.DefaultGenerator() != nil {
			t.Error("fresh column should have no generator")
		}
	})

	t.Run("static default", func(t *testing.T) {
		col := NewColumn("in_stock", TypeBool).Default(true)

		v, ok := col.DefaultValue()
		if !ok {
			t.Fatal("expected a default value")
		}
		if v != true {
			t.Errorf("expected true, got %v", v)
		}
	})

	t.Run("builder returns copies", func(t *testing.T) {
		base := NewColumn("id", TypeBigInt)
		keyed := base.PrimaryKey().AutoIncrement()

		if base.IsPrimaryKey() {
			t.Error("base column should be unchanged")
		}
		if !keyed.IsPrimaryKey() || !keyed.IsAutoIncrement() {
			t.Error("derived column should carry both marks")
		}
	})
}

func TestDataTypeStrings(t *testing.T) {
	tests := []struct {
		dt   DataType
		want string
	}{
		{TypeString, "string"},
		{TypeText, "text"},
		{TypeInt, "int"},
		{TypeBigInt, "bigint"},
		{TypeFloat, "float"},
		{TypeBool, "bool"},
		{TypeTimestamp, "timestamp"},
		{TypeDate, "date"},
		{TypeUUID, "uuid"},
		{TypeJSON, "json"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.dt.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
			parsed, err := ParseDataType(tt.want)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed != tt.dt {
				t.Errorf("ParseDataType(%s) = %v, want %v", tt.want, parsed, tt.dt)
			}
		})
	}

	if _, err := ParseDataType("decimal128"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestParseReferentialAction(t *testing.T) {
	for _, s := range []string{"no_action", "restrict", "cascade", "set_null"} {
		action, err := ParseReferentialAction(s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if action.String() != s {
			t.Errorf("round trip failed: %s became %s", s, action.String())
		}
	}

	if _, err := ParseReferentialAction("nullify"); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestEntityAccessors(t *testing.T) {
	entity := NewTable("Product", "products",
		[]Column{
			NewColumn("id", TypeBigInt).AutoIncrement().PrimaryKey(),
			NewColumn("category_id", TypeBigInt),
			NewColumn("name", TypeString).Length(120),
		},
		ForeignKey{
			Columns:      []string{"category_id"},
			TargetEntity: "Category",
			OnDelete:     ActionRestrict,
		},
	)

	if entity.Kind() != KindTable {
		t.Errorf("expected table kind, got %s", entity.Kind())
	}
	if entity.IsView() {
		t.Error("table should not report as view")
	}

	names := entity.ColumnNames()
	for i, want := range []string{"id", "category_id", "name"} {
		if names[i] != want {
			t.Errorf("position %d: expected %s, got %s", i, want, names[i])
		}
	}

	pk, ok := entity.PrimaryKey()
	if !ok {
		t.Fatal("expected a primary key")
	}
	if pk.Name() != "id" || !pk.IsAutoIncrement() {
		t.Errorf("unexpected primary key: %s", pk.Name())
	}

	if _, ok := entity.Column("price"); ok {
		t.Error("price should not exist")
	}

	fks := entity.ForeignKeys()
	if len(fks) != 1 {
		t.Fatalf("expected 1 foreign key, got %d", len(fks))
	}
	if fks[0].TargetEntity != "Category" || fks[0].OnDelete != ActionRestrict {
		t.Errorf("unexpected foreign key: %+v", fks[0])
	}
}

func TestEntityColumnsIsCopy(t *testing.T) {
	entity := NewTable("User", "users", []Column{
		NewColumn("id", TypeUUID).PrimaryKey(),
	})

	cols := entity.Columns()
	cols[0] = NewColumn("other", TypeText)

	if _, ok := entity.Column("id"); !ok {
		t.Error("mutating the returned slice should not affect the entity")
	}
}

func TestViewEntity(t *testing.T) {
	view := NewView("ProductListing", "product_listings",
		"SELECT p.id, p.name FROM products p ORDER BY p.name",
		NewColumn("id", TypeBigInt),
		NewColumn("name", TypeString),
	)

	if !view.IsView() {
		t.Error("expected view kind")
	}
	if view.ViewQuery() == "" {
		t.Error("expected a backing query")
	}
	if _, ok := view.PrimaryKey(); ok {
		t.Error("view should not report a primary key")
	}
	if len(view.ForeignKeys()) != 0 {
		t.Error("view should have no foreign keys")
	}
}
