package dataset_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"review_insights/internal/adapters/dataset"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_JSON(t *testing.T) {
	for name, body := range map[string]string{
		"array.json":    `[{"review_text":"slow app","rating":2},{"review_text":"ok","rating":"4"}]`,
		"envelope.json": `{"reviews":[{"review_text":"slow app","rating":2},{"review_text":"ok","rating":"4"}]}`,
	} {
		got, err := dataset.Load(write(t, name, body))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(got) != 2 {
			t.Fatalf("%s: want 2 records, got %d", name, len(got))
		}
		if n, ok := got[0]["rating"].(json.Number); !ok || n.String() != "2" {
			t.Fatalf("%s: rating decoded as %T", name, got[0]["rating"])
		}
	}
}

func TestLoad_CSV(t *testing.T) {
	p := write(t, "reviews.csv", "\ufeffreview_id,review_text,rating,bank\n1,\"fast, simple\",5,CBE\n,,,\n2,crashes,1,BOA\n")
	got, err := dataset.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("blank rows should be skipped, got %d", len(got))
	}
	if got[0]["review_id"] != "1" || got[0]["review_text"] != "fast, simple" || got[1]["bank"] != "BOA" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"review_text", "rating", "bank"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"login fails", 1, "Dashen"})
	p := filepath.Join(t.TempDir(), "reviews.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	got, err := dataset.Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0]["review_text"] != "login fails" || got[0]["rating"] != "1" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestLoad_Unsupported(t *testing.T) {
	if _, err := dataset.Load(write(t, "reviews.parquet", "x")); !errors.Is(err, dataset.ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}
