package store

import (
	"testing"

	"github.com/roach88/nysm/internal/ir"
	"github.com/roach88/nysm/internal/types"
)

func testSchema() ir.Schema {
	return ir.Schema{
		{Name: "symbol", Type: types.P(types.STRING)},
		{Name: "price", Type: types.P(types.DOUBLE)},
	}
}

func TestSinkPublishAndSnapshot(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	schema := testSchema()
	sink, err := s.Sink("quotes", schema)
	if err != nil {
		t.Fatalf("Sink() failed: %v", err)
	}

	sink.Publish(ir.Row{Fields: []string{"symbol", "price"}, Values: []ir.Value{ir.Str("AAPL"), ir.Double(190.5)}})
	sink.Publish(ir.Row{Fields: []string{"symbol", "price"}, Values: []ir.Value{ir.Str("MSFT"), ir.Double(410.1)}})

	rows, err := s.Snapshot("quotes", schema)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	sym, ok := rows[0].Get("symbol")
	if !ok || sym != ir.Str("AAPL") {
		t.Errorf("row 0 symbol = %v, want AAPL", sym)
	}
	price, ok := rows[1].Get("price")
	if !ok || price != ir.Double(410.1) {
		t.Errorf("row 1 price = %v, want 410.1", price)
	}
}

func TestSnapshotIsolatesOutputsByName(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	schema := testSchema()
	a, _ := s.Sink("a", schema)
	b, _ := s.Sink("b", schema)
	a.Publish(ir.Row{Fields: []string{"symbol", "price"}, Values: []ir.Value{ir.Str("X"), ir.Double(1)}})
	b.Publish(ir.Row{Fields: []string{"symbol", "price"}, Values: []ir.Value{ir.Str("Y"), ir.Double(2)}})

	rowsA, err := s.Snapshot("a", schema)
	if err != nil {
		t.Fatalf("Snapshot(a) failed: %v", err)
	}
	if len(rowsA) != 1 {
		t.Fatalf("expected 1 row in a, got %d", len(rowsA))
	}
	sym, _ := rowsA[0].Get("symbol")
	if sym != ir.Str("X") {
		t.Errorf("a's row = %v, want X", sym)
	}
}

func TestDropClearsOutput(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	schema := testSchema()
	sink, _ := s.Sink("ephemeral", schema)
	sink.Publish(ir.Row{Fields: []string{"symbol", "price"}, Values: []ir.Value{ir.Str("X"), ir.Double(1)}})

	if err := s.Drop("ephemeral"); err != nil {
		t.Fatalf("Drop() failed: %v", err)
	}
	rows, err := s.Snapshot("ephemeral", schema)
	if err != nil {
		t.Fatalf("Snapshot() after Drop failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected 0 rows after Drop, got %d", len(rows))
	}
}

func TestSnapshotDecodesNullForMissingField(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	schema := ir.Schema{
		{Name: "symbol", Type: types.P(types.STRING)},
		{Name: "note", Type: types.MakeNullable(types.P(types.STRING))},
	}
	sink, _ := s.Sink("partial", schema)
	sink.Publish(ir.Row{Fields: []string{"symbol"}, Values: []ir.Value{ir.Str("X")}})

	rows, err := s.Snapshot("partial", schema)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	note, ok := rows[0].Get("note")
	if !ok {
		t.Fatalf("expected note field present")
	}
	if _, isNull := note.(ir.Null); !isNull {
		t.Errorf("expected note to decode as Null, got %T", note)
	}
}
