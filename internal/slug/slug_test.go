package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "simple_title",
			title: "Two Sum",
			want:  "two-sum",
		},
		{
			name:  "multi_word",
			title: "Striver SDE Sheet",
			want:  "striver-sde-sheet",
		},
		{
			name:  "punctuation_collapses",
			title: "Best Time to Buy & Sell Stock II",
			want:  "best-time-to-buy-sell-stock-ii",
		},
		{
			name:  "surrounding_whitespace",
			title: "  Binary Search  ",
			want:  "binary-search",
		},
		{
			name:  "consecutive_separators",
			title: "Merge   k -- Sorted Lists",
			want:  "merge-k-sorted-lists",
		},
		{
			name:  "digits_kept",
			title: "3Sum Closest",
			want:  "3sum-closest",
		},
		{
			name:  "uppercase_lowered",
			title: "LRU CACHE",
			want:  "lru-cache",
		},
		{
			name:  "empty",
			title: "",
			want:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Make(tc.title)
			if got != tc.want {
				t.Fatalf("Make(%q)=%q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestMakeDeterministic(t *testing.T) {
	a := Make("Longest Substring Without Repeating Characters")
	b := Make("Longest Substring Without Repeating Characters")
	if a != b {
		t.Fatalf("Make not deterministic: %q vs %q", a, b)
	}
}

func TestWithSuffix(t *testing.T) {
	s := WithSuffix("two-sum")
	if !strings.HasPrefix(s, "two-sum-") {
		t.Fatalf("WithSuffix lost the base slug: %q", s)
	}
	if s == "two-sum-" {
		t.Fatalf("WithSuffix produced empty suffix: %q", s)
	}
}
