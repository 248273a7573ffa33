package handlers

import (
	"testing"

	"petcare/internal/models"
)

func TestStockStatusTiers(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, StockStatusOut},
		{-1, StockStatusOut},
		{1, StockStatusLow},
		{4, StockStatusLow},
		{5, StockStatusIn},
		{100, StockStatusIn},
	}

	for _, tt := range tests {
		if got := stockStatus(tt.count); got != tt.want {
			t.Fatalf("stockStatus(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestApplyStockStatus(t *testing.T) {
	products := []models.Product{
		{CountInStock: 0},
		{CountInStock: 3},
		{CountInStock: 12},
	}

	applyStockStatus(products)

	want := []string{StockStatusOut, StockStatusLow, StockStatusIn}
	for i, p := range products {
		if p.StockStatus != want[i] {
			t.Fatalf("product %d: got %q, want %q", i, p.StockStatus, want[i])
		}
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("2", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 2 || limit != 10 {
		t.Fatalf("got page=%d limit=%d", page, limit)
	}

	if _, _, err := parsePaginationParams("0", "10"); err == nil {
		t.Fatal("expected error for page=0")
	}
	if _, _, err := parsePaginationParams("abc", "10"); err == nil {
		t.Fatal("expected error for non-numeric page")
	}

	page, limit, err = parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("unexpected error for defaults: %v", err)
	}
	if page != 1 || limit != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d", page, limit)
	}
}
