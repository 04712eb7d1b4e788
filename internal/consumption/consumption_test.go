package consumption

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chalets-du-lac/api/internal/model"
)

func orderAt(t *testing.T, created time.Time, service string, items model.OrderItems) model.Order {
	t.Helper()
	return model.Order{
		ID:        uuid.New(),
		Chalet:    "12",
		Service:   service,
		Items:     items,
		CreatedAt: created,
	}
}

func TestBuildReportRendersInstances(t *testing.T) {
	created := time.Date(2026, 8, 14, 19, 30, 0, 0, time.UTC)
	orders := []model.Order{
		orderAt(t, created, "snack", model.OrderItems{
			"Pizza": {Instances: []model.OrderItemInstance{
				{ID: "i1", Extras: map[string]int{"fromage": 2}},
				{ID: "i2", Extras: map[string]int{}},
			}},
		}),
	}

	report := BuildReport("12", "client-7", orders)

	if report.Chalet != "12" || report.ClientID != "client-7" {
		t.Errorf("header wrong: %s %s", report.Chalet, report.ClientID)
	}
	if len(report.Orders) != 1 {
		t.Fatalf("expected 1 order entry, got %d", len(report.Orders))
	}

	entry := report.Orders[0]
	if entry.Date != "14/08/2026 19:30" {
		t.Errorf("date format wrong: %s", entry.Date)
	}
	if len(entry.Products) != 1 {
		t.Fatalf("expected 1 product entry, got %d", len(entry.Products))
	}

	pe := entry.Products[0]
	if pe.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", pe.Quantity)
	}
	if pe.Instances[0].Extras != "fromage x2" {
		t.Errorf("expected 'fromage x2', got %q", pe.Instances[0].Extras)
	}
	if pe.Instances[1].Extras != NoExtrasLabel {
		t.Errorf("expected %q, got %q", NoExtrasLabel, pe.Instances[1].Extras)
	}
}

func TestBuildReportSortsProductsAlphabetically(t *testing.T) {
	orders := []model.Order{
		orderAt(t, time.Now(), "snack", model.OrderItems{
			"Pizza":    {Instances: []model.OrderItemInstance{{ID: "a", Extras: map[string]int{}}}},
			"Bière":    {Instances: []model.OrderItemInstance{{ID: "b", Extras: map[string]int{}}}},
			"Croquant": {Instances: []model.OrderItemInstance{{ID: "c", Extras: map[string]int{}}}},
		}),
	}

	report := BuildReport("12", "", orders)

	got := make([]string, 0, 3)
	for _, pe := range report.Orders[0].Products {
		got = append(got, pe.Product)
	}
	want := "Bière,Croquant,Pizza"
	if strings.Join(got, ",") != want {
		t.Errorf("expected %s, got %s", want, strings.Join(got, ","))
	}
}

func TestBuildReportExtrasSortedAndJoined(t *testing.T) {
	orders := []model.Order{
		orderAt(t, time.Now(), "snack", model.OrderItems{
			"Pizza": {Instances: []model.OrderItemInstance{
				{ID: "i1", Extras: map[string]int{"olives": 1, "fromage": 3}},
			}},
		}),
	}

	report := BuildReport("12", "", orders)

	if got := report.Orders[0].Products[0].Instances[0].Extras; got != "fromage x3; olives" {
		t.Errorf("expected 'fromage x3; olives', got %q", got)
	}
}

func TestCSVRow(t *testing.T) {
	created := time.Date(2026, 8, 14, 19, 30, 0, 0, time.UTC)
	orders := []model.Order{
		orderAt(t, created, "snack", model.OrderItems{
			"Pizza": {Instances: []model.OrderItemInstance{
				{ID: "i1", Extras: map[string]int{"fromage": 2}},
				{ID: "i2", Extras: map[string]int{}},
			}},
		}),
	}

	csv := BuildReport("12", "client-7", orders).CSV()

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != CSVHeader {
		t.Errorf("header wrong: %s", lines[0])
	}

	want := `"14/08/2026 19:30","snack","Pizza",2,"1. fromage x2 | 2. sans suppléments"`
	if lines[1] != want {
		t.Errorf("row mismatch:\nwant %s\ngot  %s", want, lines[1])
	}
}

func TestCSVOneRowPerOrderProductPair(t *testing.T) {
	created := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	orders := []model.Order{
		orderAt(t, created.Add(time.Hour), "bar", model.OrderItems{
			"Bière": {Instances: []model.OrderItemInstance{{ID: "a", Extras: map[string]int{}}}},
		}),
		orderAt(t, created, "snack", model.OrderItems{
			"Pizza": {Instances: []model.OrderItemInstance{{ID: "b", Extras: map[string]int{}}}},
			"Coca":  {Instances: []model.OrderItemInstance{{ID: "c", Extras: map[string]int{}}}},
		}),
	}

	csv := BuildReport("12", "", orders).CSV()

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(lines))
	}
}

func TestCSVEscapesQuotes(t *testing.T) {
	orders := []model.Order{
		orderAt(t, time.Now(), "snack", model.OrderItems{
			`Menu "Spécial", du chef`: {Instances: []model.OrderItemInstance{{ID: "a", Extras: map[string]int{}}}},
		}),
	}

	csv := BuildReport("12", "", orders).CSV()

	if !strings.Contains(csv, `"Menu ""Spécial"", du chef"`) {
		t.Errorf("quotes not doubled:\n%s", csv)
	}
}

func TestCSVEmptyTab(t *testing.T) {
	csv := BuildReport("12", "client", nil).CSV()

	if csv != CSVHeader+"\n" {
		t.Errorf("empty tab should yield header only, got %q", csv)
	}
}
