package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tesoreria/internal/amqp"
	"tesoreria/internal/cache"
	"tesoreria/internal/core"
	"tesoreria/internal/ledger"
	"tesoreria/internal/ledgerimport"
	"tesoreria/internal/metrics"
	"tesoreria/internal/report"
	"tesoreria/internal/sheets"
	"tesoreria/internal/store/memory"
)

func testCatalog() core.Catalog {
	return core.Catalog{
		Centers: []core.Center{{ID: "central", Name: "Sede Central"}},
		MovementTypes: []core.MovementType{
			{ID: "diezmos", Name: "Diezmos", Category: core.Income},
			{ID: "ofrendas", Name: "Ofrendas", Category: core.Income},
			{ID: "luz", Name: "Luz", Category: core.Expense, Subcategory: "Gastos generales"},
		},
	}
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }

type fakeEvents struct {
	msgs []*amqp.ImportCompletedMessage
	err  error
}

func (f *fakeEvents) PublishImportCompleted(_ context.Context, msg *amqp.ImportCompletedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type fakePublisher struct {
	docs []report.Document
	err  error
}

func (f *fakePublisher) PublishReport(_ context.Context, doc report.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.docs = append(f.docs, doc)
	return "Informe!A1:D20", nil
}

type fixture struct {
	store   *memory.Store
	catalog *CatalogService
	events  *fakeEvents
	imports *ImportService
	metrics *metrics.Metrics
}

func newFixture() *fixture {
	st := memory.New(testCatalog())
	m := metrics.New()
	cat := NewCatalogService(st, cache.NewLRUCache[core.Catalog](4, time.Minute), m)
	ev := &fakeEvents{}
	return &fixture{
		store:   st,
		catalog: cat,
		events:  ev,
		metrics: m,
		imports: NewImportService(cat, st, ev, m, nil, ImportOptions{
			BaseCurrency: "ARS",
			Currencies:   []string{"ARS", "USD"},
			Now:          fixedNow,
		}),
	}
}

const sample = "Fecha;Monto;Detalle;Moneda;Descripcion_Tipo_Movimiento\n" +
	"01/03/2024;1.000,00;Diezmo marzo;ARS;DIEZMOS\n" +
	"05/03/2024;250,50;Factura;ARS;LUZ\n" +
	"06/03/2024;100;Donacion;USD;OFRENDAS\n" +
	"07/03/2024;30;Transferencia;EUR;OFRENDAS\n" +
	"08/03/2024;0;Vacio;ARS;LUZ\n" +
	"09/03/2024;75;Sin tipo;ARS;ALQUILER\n"

func TestImportPersistsBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sum, err := f.imports.Import(ctx, sample)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sum.Attempted != 6 || sum.Imported != 4 || sum.Skipped != 2 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if sum.InvalidCurrency != 1 {
		t.Errorf("expected 1 invalid currency row, got %d", sum.InvalidCurrency)
	}
	if sum.Unclassified != 1 {
		t.Errorf("expected 1 unclassified row, got %d", sum.Unclassified)
	}
	if sum.ImportID == "" {
		t.Fatal("expected an import id")
	}
	if got := f.store.CountImport(sum.ImportID); got != 4 {
		t.Errorf("expected 4 stored rows for import, got %d", got)
	}
	if len(sum.Periods) != 1 || sum.Periods[0] != "2024-03" {
		t.Errorf("periods: %v", sum.Periods)
	}
	if len(sum.Currencies) != 2 || sum.Currencies[0] != "ARS" || sum.Currencies[1] != "USD" {
		t.Errorf("currencies: %v", sum.Currencies)
	}
	if sum.Transactions != nil {
		t.Error("import summary should not echo transactions")
	}

	if len(f.events.msgs) != 1 || f.events.msgs[0].ImportID != sum.ImportID {
		t.Fatalf("expected one event for the import, got %+v", f.events.msgs)
	}
}

func TestImportEventFailureDoesNotFail(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker down")

	sum, err := f.imports.Import(context.Background(), sample)
	if err != nil {
		t.Fatalf("publish failure must not fail the import: %v", err)
	}
	if f.store.CountImport(sum.ImportID) != sum.Imported {
		t.Fatal("rows should be stored despite the event failure")
	}
}

func TestImportMissingColumns(t *testing.T) {
	f := newFixture()

	sum, err := f.imports.Import(context.Background(), "Detalle;Moneda\nx;ARS\n")
	var missing *ledgerimport.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(sum.Headers) != 2 {
		t.Errorf("expected detected headers in summary, got %v", sum.Headers)
	}
	txs, _ := f.store.ListTransactions(context.Background(), "", "")
	if len(txs) != 0 {
		t.Fatalf("nothing should be stored, got %d", len(txs))
	}
	if len(f.events.msgs) != 0 {
		t.Fatal("no event expected")
	}
}

func TestImportNothingToStore(t *testing.T) {
	f := newFixture()

	sum, err := f.imports.Import(context.Background(), "Fecha;Monto\n01/03/2024;0\n01/03/2024;abc\n")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sum.Attempted != 2 || sum.Skipped != 2 || sum.Imported != 0 || sum.ImportID != "" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(f.events.msgs) != 0 {
		t.Fatal("no event expected for an empty import")
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sum, err := f.imports.Preview(ctx, sample)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(sum.Transactions) != sum.Imported || sum.Imported != 4 {
		t.Fatalf("unexpected preview: %+v", sum)
	}
	txs, _ := f.store.ListTransactions(ctx, "", "")
	if len(txs) != 0 {
		t.Fatalf("preview stored %d rows", len(txs))
	}
}

func TestCatalogSnapshotCachedUntilSeed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.catalog.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(first.MovementTypes) != 3 {
		t.Fatalf("expected 3 types, got %d", len(first.MovementTypes))
	}

	extra := core.Catalog{MovementTypes: []core.MovementType{{ID: "agua", Name: "Agua", Category: core.Expense}}}
	if err := f.catalog.Seed(ctx, f.store, extra); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	after, _ := f.catalog.Snapshot(ctx)
	if len(after.MovementTypes) != 4 {
		t.Fatalf("seed should invalidate the cached snapshot, got %d types", len(after.MovementTypes))
	}
}

func TestDashboardSummaryFiltersByDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.store.AppendTransactions(ctx, "", []core.Transaction{
		{Date: "2024-02-28", CenterID: "central", MovementTypeID: "diezmos", Amount: decimal.NewFromInt(500), Currency: "ARS"},
		{Date: "2024-03-01", CenterID: "central", MovementTypeID: "diezmos", Amount: decimal.NewFromInt(1000), Currency: "ARS"},
		{Date: "2024-03-15", CenterID: "central", MovementTypeID: "luz", Amount: decimal.NewFromInt(300), Currency: "ARS"},
		{Date: "2024-04-02", CenterID: "central", MovementTypeID: "luz", Amount: decimal.NewFromInt(50), Currency: "ARS"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dash := NewDashboardService(f.catalog, f.store, "ARS")
	sum, err := dash.Summary(ctx, ledger.Query{Mode: ledger.ModeByMonth, From: "2024-03-01", To: "2024-03-31"})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	got := sum.Totals["ARS"]
	if !got.Income.Equal(decimal.NewFromInt(1000)) || !got.Expense.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected totals: %+v", got)
	}

	txs, err := dash.Transactions(ctx, "2024-03-02", "")
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows from 2024-03-02 on, got %d", len(txs))
	}
}

func TestImportKeepsImpossibleDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	content := "Fecha;Monto;Descripcion_Tipo_Movimiento\n" +
		"5/13/2024;100;OFRENDAS\n" +
		"05/03/2024;50;OFRENDAS\n"
	sum, err := f.imports.Import(ctx, content)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sum.Imported != 2 || sum.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if len(sum.Periods) != 2 || sum.Periods[0] != "2024-03" || sum.Periods[1] != "2024-13" {
		t.Fatalf("periods: %v", sum.Periods)
	}

	doc, err := newReportService(f, nil).Monthly(ctx, 2024, 3, "ARS")
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if !doc.Result.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected result: %s", doc.Result.Amount)
	}

	dash := NewDashboardService(f.catalog, f.store, "ARS")
	total, err := dash.Summary(ctx, ledger.Query{Mode: ledger.ModeByMonth})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !total.Totals["ARS"].Income.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("unexpected income: %+v", total.Totals["ARS"])
	}
	if len(total.Groups) != 2 || total.Groups[1].Period != "2024-13" {
		t.Fatalf("unexpected groups: %+v", total.Groups)
	}
}

func newReportService(f *fixture, pub sheets.ReportPublisher) *ReportService {
	return NewReportService(f.catalog, f.store, pub, f.metrics, nil, ReportOptions{
		BaseCurrency: "ARS",
		Currencies:   []string{"ARS", "USD"},
		Organization: "Iglesia",
	})
}

func TestReportMonthly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.imports.Import(ctx, sample); err != nil {
		t.Fatalf("Import: %v", err)
	}

	doc, err := newReportService(f, nil).Monthly(ctx, 2024, 3, "")
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if doc.Period != "2024-03" || doc.Currency != "ARS" || doc.Center != "Sede Central" {
		t.Fatalf("unexpected header: %+v", doc)
	}
	// 1000 income, 250.50 luz, 75 unclassified expense.
	if !doc.Result.Amount.Equal(decimal.RequireFromString("674.5")) {
		t.Fatalf("unexpected result: %s", doc.Result.Amount)
	}

	usd, err := newReportService(f, nil).Monthly(ctx, 2024, 3, "usd")
	if err != nil {
		t.Fatalf("Monthly usd: %v", err)
	}
	if !usd.Result.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected usd result: %s", usd.Result.Amount)
	}
}

func TestReportMonthlyRejectsBadInput(t *testing.T) {
	f := newFixture()
	svc := newReportService(f, nil)

	if _, err := svc.Monthly(context.Background(), 2024, 13, "ARS"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := svc.Monthly(context.Background(), 2024, 3, "EUR"); !errors.Is(err, core.ErrInvalidCurrency) {
		t.Errorf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestReportPublish(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := newReportService(f, nil).Publish(ctx, 2024, 3, "ARS"); !errors.Is(err, sheets.ErrPublishingDisabled) {
		t.Fatalf("expected ErrPublishingDisabled, got %v", err)
	}

	pub := &fakePublisher{}
	ref, err := newReportService(f, pub).Publish(ctx, 2024, 3, "ARS")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ref == "" || len(pub.docs) != 1 || pub.docs[0].Period != "2024-03" {
		t.Fatalf("unexpected publish: ref=%q docs=%d", ref, len(pub.docs))
	}

	pub.err = errors.New("quota exceeded")
	if _, err := newReportService(f, pub).Publish(ctx, 2024, 3, "ARS"); err == nil {
		t.Fatal("expected publisher error to surface")
	}
}
