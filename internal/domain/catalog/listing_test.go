package catalog

import "testing"

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Page: 0, Limit: 500, SortBy: "embedding", SortOrder: "sideways"}.Normalize(ClipSortFields)
	if p.Page != 1 {
		t.Fatalf("page = %d, want 1", p.Page)
	}
	if p.Limit != MaxPageLimit {
		t.Fatalf("limit = %d, want %d", p.Limit, MaxPageLimit)
	}
	if p.SortBy != "created_at" {
		t.Fatalf("sortBy = %q, want created_at", p.SortBy)
	}
	if p.SortOrder != SortDesc {
		t.Fatalf("sortOrder = %q, want desc", p.SortOrder)
	}

	p = ListParams{Page: 3, Limit: 20, SortBy: "genre", SortOrder: SortAsc}.Normalize(ClipSortFields)
	if p.SortBy != "genre" || p.SortOrder != SortAsc || p.Offset() != 40 {
		t.Fatalf("unexpected normalized params: %+v offset=%d", p, p.Offset())
	}

	p = ListParams{SortBy: "genre"}.Normalize(ImageSortFields)
	if p.SortBy != "created_at" {
		t.Fatalf("image sortBy = %q, want created_at", p.SortBy)
	}
}

func TestNewPageMeta(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{25, 10, 3},
		{101, 100, 2},
	}
	for _, tc := range cases {
		m := NewPageMeta(tc.total, 2, tc.limit)
		if m.TotalPages != tc.pages {
			t.Fatalf("total=%d limit=%d: pages=%d want %d", tc.total, tc.limit, m.TotalPages, tc.pages)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	if ParseSortOrder(" ASC ") != SortAsc {
		t.Fatalf("expected asc")
	}
	if ParseSortOrder("") != SortDesc {
		t.Fatalf("expected desc default")
	}
}

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray{"calm", "sea, salt"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `{calm,"sea, salt"}` {
		t.Fatalf("value = %v", v)
	}

	v, err = StringArray(nil).Value()
	if err != nil {
		t.Fatalf("nil value: %v", err)
	}
	if v != "{}" {
		t.Fatalf("nil value = %v, want {}", v)
	}
}

func TestStringArrayScan(t *testing.T) {
	var a StringArray
	if err := a.Scan([]byte(`{calm,"ocean waves"}`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(a) != 2 || a[0] != "calm" || a[1] != "ocean waves" {
		t.Fatalf("scanned %#v", a)
	}
	if err := a.Scan(nil); err != nil || a != nil {
		t.Fatalf("scan nil: %v %#v", err, a)
	}
}
