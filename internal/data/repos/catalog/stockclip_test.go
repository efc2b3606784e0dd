package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/stockmedia-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/stockmedia-backend/internal/domain/catalog"
)

func TestStockClipRepoCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewStockClipRepo(db, testutil.Logger(t))

	desc := "waves rolling in"
	in := &domain.StockClip{
		ID:          uuid.New(),
		Name:        "Ocean Waves",
		Description: &desc,
		URL:         "https://cdn.example.com/ocean.mp4",
		Genre:       "nature",
		Duration:    "30s",
		Tags:        domain.StringArray{"calm", "water"},
	}
	created, err := repo.CreateWithEmbedding(ctx, tx, in, testutil.Axis(0, 1))
	if err != nil {
		t.Fatalf("CreateWithEmbedding: %v", err)
	}
	if in.Embedding != nil {
		t.Fatalf("input clip must not be mutated")
	}

	got, err := repo.GetByID(ctx, tx, created.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.Name != "Ocean Waves" || got.Genre != "nature" || got.Duration != "30s" || *got.Description != desc {
		t.Fatalf("unexpected scalar fields: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "calm" || got.Tags[1] != "water" {
		t.Fatalf("unexpected tags: %#v", got.Tags)
	}
	if got.Embedding == nil || len(got.Embedding.Slice()) != domain.EmbeddingDimensions {
		t.Fatalf("expected %d-dim embedding", domain.EmbeddingDimensions)
	}

	plain, err := repo.CreateWithoutEmbedding(ctx, tx, &domain.StockClip{Name: "Rain", URL: "https://cdn.example.com/rain.mp4", Genre: "nature", Duration: "5s"})
	if err != nil {
		t.Fatalf("CreateWithoutEmbedding: %v", err)
	}
	if plain.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	got, err = repo.GetByID(ctx, tx, plain.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Embedding != nil {
		t.Fatalf("expected no embedding")
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("expected empty tags, got %#v", got.Tags)
	}

	missing, err := repo.GetByID(ctx, tx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", missing, err)
	}
}

func TestStockClipRepoRejectsWrongDimensions(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewStockClipRepo(db, testutil.Logger(t))

	_, err := repo.CreateWithEmbedding(context.Background(), tx, &domain.StockClip{Name: "x", URL: "u", Genre: "g", Duration: "1s"}, make([]float32, 512))
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestStockClipRepoRankBySimilarity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewStockClipRepo(db, testutil.Logger(t))

	far := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "far", Embedding: testutil.Axis(0, 10)})
	near := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "near", Embedding: testutil.Axis(0, 1)})
	mid := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "mid", Embedding: testutil.Axis(0, 4)})
	_ = testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "no-embedding"})
	city := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "city", Genre: "urban", Embedding: testutil.Axis(0, 0.5)})
	deleted := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "deleted", Embedding: testutil.Axis(0, 0.9)})
	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{deleted.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}

	q := testutil.Axis(0, 0.8)
	got, err := repo.RankBySimilarity(ctx, tx, q, domain.SearchFilter{}, 10)
	if err != nil {
		t.Fatalf("RankBySimilarity: %v", err)
	}
	want := []uuid.UUID{near.ID, city.ID, mid.ID, far.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("position %d: got %s want %s", i, got[i].Name, want[i])
		}
	}

	got, err = repo.RankBySimilarity(ctx, tx, q, domain.SearchFilter{Genre: "nature"}, 2)
	if err != nil {
		t.Fatalf("RankBySimilarity(genre): %v", err)
	}
	if len(got) != 2 || got[0].ID != near.ID || got[1].ID != mid.ID {
		t.Fatalf("unexpected genre-filtered ranking: %v", names(got))
	}

	got, err = repo.RankBySimilarity(ctx, tx, nil, domain.SearchFilter{}, 10)
	if err != nil {
		t.Fatalf("RankBySimilarity(zero vector): %v", err)
	}
	if len(got) != 4 || got[0].ID != city.ID {
		t.Fatalf("zero-vector ranking: %v", names(got))
	}
}

func TestStockClipRepoListFilteredPagination(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewStockClipRepo(db, testutil.Logger(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{
			Name:      fmt.Sprintf("beach %02d", i),
			Genre:     "nature",
			Tags:      []string{"sand"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "downtown", Genre: "urban", Tags: []string{"city"}})
	gone := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "beach deleted", Genre: "nature", Tags: []string{"sand"}})
	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{gone.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}

	params := domain.ListParams{
		Filter:    domain.ListFilter{Search: "BEACH", Genre: "nature", Tags: []string{"sand", "missing"}},
		SortBy:    "created_at",
		SortOrder: domain.SortAsc,
		Limit:     10,
	}

	seen := map[uuid.UUID]bool{}
	var ordered []string
	for page := 1; page <= 3; page++ {
		params.Page = page
		items, total, err := repo.ListFiltered(ctx, tx, params)
		if err != nil {
			t.Fatalf("ListFiltered page %d: %v", page, err)
		}
		if total != 25 {
			t.Fatalf("total = %d, want 25", total)
		}
		wantLen := 10
		if page == 3 {
			wantLen = 5
		}
		if len(items) != wantLen {
			t.Fatalf("page %d: %d items, want %d", page, len(items), wantLen)
		}
		for _, it := range items {
			if seen[it.ID] {
				t.Fatalf("duplicate %s across pages", it.Name)
			}
			seen[it.ID] = true
			ordered = append(ordered, it.Name)
		}
	}
	for i, name := range ordered {
		if want := fmt.Sprintf("beach %02d", i); name != want {
			t.Fatalf("position %d: %s, want %s", i, name, want)
		}
	}
}

func TestStockClipRepoListFilteredUnknownSortFallsBack(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewStockClipRepo(db, testutil.Logger(t))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	older := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "zzz", CreatedAt: base})
	newer := testutil.SeedClip(t, ctx, tx, testutil.ClipSeed{Name: "aaa", CreatedAt: base.Add(time.Hour)})

	for _, sortBy := range []string{"embedding; DROP TABLE stock_clips", "created_at"} {
		items, _, err := repo.ListFiltered(ctx, tx, domain.ListParams{SortBy: sortBy, Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("ListFiltered(%q): %v", sortBy, err)
		}
		if len(items) < 2 || items[0].ID != newer.ID || items[1].ID != older.ID {
			t.Fatalf("sortBy=%q: expected created_at desc, got %v", sortBy, names(items))
		}
	}

	items, _, err := repo.ListFiltered(ctx, tx, domain.ListParams{SortBy: "name", SortOrder: domain.SortAsc, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListFiltered(name): %v", err)
	}
	if items[0].ID != newer.ID {
		t.Fatalf("expected name asc, got %v", names(items))
	}
}

func names[T interface{ *domain.StockClip | *domain.StockImage }](rows []T) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		switch v := any(r).(type) {
		case *domain.StockClip:
			out = append(out, v.Name)
		case *domain.StockImage:
			out = append(out, v.Name)
		}
	}
	return out
}
