package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"tesoreria/internal/core"
)

func testCatalog() core.Catalog {
	return core.Catalog{
		Centers: []core.Center{{ID: "central", Name: "Sede Central"}},
		MovementTypes: []core.MovementType{
			{ID: "diezmos", Name: "Diezmos", Category: core.Income},
			{ID: "luz", Name: "Luz", Category: core.Expense, Subcategory: "Gastos generales"},
		},
	}
}

func tx(date, typeID, amount string) core.Transaction {
	return core.Transaction{
		Date:           date,
		CenterID:       "central",
		MovementTypeID: typeID,
		Amount:         decimal.RequireFromString(amount),
		Currency:       "ARS",
	}
}

func TestMemoryStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	stored, err := s.AppendTransactions(ctx, "batch-1", []core.Transaction{
		tx("2024-03-10", "diezmos", "1000"),
		tx("2024-02-01", "luz", "400"),
		tx("2024-03-01", "luz", "50"),
	})
	if err != nil {
		t.Fatalf("AppendTransactions() error = %v", err)
	}
	for _, st := range stored {
		if st.ID == "" {
			t.Fatalf("missing id: %+v", st)
		}
	}
	if stored[0].ID == stored[1].ID {
		t.Errorf("ids not unique")
	}

	all, _ := s.ListTransactions(ctx, "", "")
	if len(all) != 3 || all[0].Date != "2024-02-01" || all[2].Date != "2024-03-10" {
		t.Fatalf("unexpected order: %+v", all)
	}

	march, _ := s.ListTransactions(ctx, "2024-03", "2024-03")
	if len(march) != 2 {
		t.Errorf("march rows = %d, want 2", len(march))
	}
	if n := s.CountImport("batch-1"); n != 3 {
		t.Errorf("CountImport = %d, want 3", n)
	}
}

func TestAppendRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	bad := tx("", "luz", "10")
	if _, err := s.AppendTransactions(ctx, "b", []core.Transaction{tx("2024-01-01", "luz", "1"), bad}); err == nil {
		t.Fatal("expected error for row without date")
	}
	all, _ := s.ListTransactions(ctx, "", "")
	if len(all) != 0 {
		t.Errorf("partial batch stored: %+v", all)
	}
}

func TestSeedCatalogUpserts(t *testing.T) {
	ctx := context.Background()
	s := New(testCatalog())

	err := s.SeedCatalog(ctx, core.Catalog{MovementTypes: []core.MovementType{
		{ID: "luz", Name: "Energía eléctrica", Category: core.Expense},
		{ID: "agua", Name: "Agua", Category: core.Expense},
	}})
	if err != nil {
		t.Fatalf("SeedCatalog() error = %v", err)
	}
	types, _ := s.ListMovementTypes(ctx)
	if len(types) != 3 {
		t.Fatalf("types = %+v", types)
	}
	if types[1].Name != "Energía eléctrica" || types[2].ID != "agua" {
		t.Errorf("upsert order wrong: %+v", types)
	}

	if err := s.SeedCatalog(ctx, core.Catalog{Centers: []core.Center{{ID: "x"}}}); err == nil {
		t.Error("expected validation error for center without name")
	}
	centers, _ := s.ListCenters(ctx)
	if len(centers) != 1 {
		t.Errorf("centers = %+v", centers)
	}
}
