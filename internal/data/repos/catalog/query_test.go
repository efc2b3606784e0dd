package catalog

import (
	"errors"
	"testing"

	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
)

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"ocean":      "%ocean%",
		"100%":       `%100\%%`,
		"snake_case": `%snake\_case%`,
		`back\slash`: `%back\\slash%`,
	}
	for in, want := range cases {
		if got := containsPattern(in); got != want {
			t.Fatalf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckDimensions(t *testing.T) {
	if err := checkDimensions(make([]float32, domain.EmbeddingDimensions)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, n := range []int{0, 512, 3072} {
		if err := checkDimensions(make([]float32, n)); !errors.Is(err, domain.ErrDimensionMismatch) {
			t.Fatalf("len %d: expected ErrDimensionMismatch, got %v", n, err)
		}
	}
}

func TestQueryVectorZeroFallback(t *testing.T) {
	v := queryVector(nil)
	if len(v.Slice()) != domain.EmbeddingDimensions {
		t.Fatalf("zero vector len = %d", len(v.Slice()))
	}
	for _, f := range v.Slice() {
		if f != 0 {
			t.Fatalf("expected zero vector")
		}
	}
}

func TestOrderForIsDeterministic(t *testing.T) {
	ob := orderFor(domain.ListParams{SortBy: "name", SortOrder: domain.SortAsc})
	if len(ob.Columns) != 2 || ob.Columns[0].Column.Name != "name" || ob.Columns[0].Desc {
		t.Fatalf("unexpected primary order: %+v", ob.Columns)
	}
	if ob.Columns[1].Column.Name != "id" || ob.Columns[1].Desc {
		t.Fatalf("unexpected tiebreak: %+v", ob.Columns)
	}
}

func TestCleanTags(t *testing.T) {
	got := cleanTags([]string{" calm ", "", "  ", "water"})
	if len(got) != 2 || got[0] != "calm" || got[1] != "water" {
		t.Fatalf("cleanTags = %#v", got)
	}
}
