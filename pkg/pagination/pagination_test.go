package pagination

import "testing"

func TestNormalizeAppliesDefaultsAndCaps(t *testing.T) {
	n := Normalize(Params{})
	if n.Page != 1 || n.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults %+v", n)
	}

	n = Normalize(Params{Page: 3, PageSize: 5000})
	if n.Page != 3 || n.PageSize != MaxPageSize {
		t.Fatalf("expected capped page size, got %+v", n)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, PageSize: 25}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
	if got := (Params{Page: 4, PageSize: 10}).Offset(); got != 30 {
		t.Fatalf("expected offset 30, got %d", got)
	}
}

func TestBuildMeta(t *testing.T) {
	meta := BuildMeta(Params{Page: 2, PageSize: 10}, 25)
	if meta.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", meta.TotalPages)
	}
	if meta.TotalItems != 25 {
		t.Fatalf("expected 25 items, got %d", meta.TotalItems)
	}

	empty := BuildMeta(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("empty result should still report one page, got %d", empty.TotalPages)
	}
}
