package edit_test

import (
	"testing"

	"xtab/pkg/edit"
)

func TestEditApply(t *testing.T) {
	tests := []struct {
		name string
		base string
		e    edit.Edit
		want string
	}{
		{
			"single replacement",
			"hello world",
			edit.Replace(edit.NewOffsetRange(6, 11), "there"),
			"hello there",
		},
		{
			"insertion",
			"ab",
			edit.Replace(edit.EmptyRange(1), "XY"),
			"aXYb",
		},
		{
			"deletion",
			"abcdef",
			edit.Replace(edit.NewOffsetRange(2, 4), ""),
			"abef",
		},
		{
			"multiple replacements applied in order",
			"0123456789",
			edit.NewEdit(
				edit.Replacement{Range: edit.NewOffsetRange(8, 9), NewText: "Y"},
				edit.Replacement{Range: edit.NewOffsetRange(1, 3), NewText: "X"},
			),
			"0X34567Y9",
		},
		{
			"empty edit",
			"unchanged",
			edit.Edit{},
			"unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Apply(tt.base); got != tt.want {
				t.Errorf("Apply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewEditPanicsOnOverlap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for overlapping replacements")
		}
	}()
	edit.NewEdit(
		edit.Replacement{Range: edit.NewOffsetRange(0, 5), NewText: "a"},
		edit.Replacement{Range: edit.NewOffsetRange(3, 8), NewText: "b"},
	)
}

func TestApplyToOffset(t *testing.T) {
	// "0123456789" -> replace [2:5) with "ab" (one char shorter).
	e := edit.Replace(edit.NewOffsetRange(2, 5), "ab")

	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},  // before the edit, untouched
		{2, 2},  // start of the replaced region maps to start of new text
		{4, 4},  // inside replaced region, clamped into the new text
		{5, 4},  // first offset after the region, shifted by the delta
		{10, 9}, // end of text, shifted by the delta
	}
	for _, tt := range tests {
		if got := e.ApplyToOffset(tt.offset); got != tt.want {
			t.Errorf("ApplyToOffset(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestApplyToRange(t *testing.T) {
	e := edit.Replace(edit.NewOffsetRange(2, 5), "ab")

	if got := e.ApplyToRange(edit.NewOffsetRange(6, 9)); got != edit.NewOffsetRange(5, 8) {
		t.Errorf("ApplyToRange = %s, want [5:8)", got)
	}
	// A range swallowed by the replacement collapses inside the new text.
	if got := e.ApplyToRange(edit.NewOffsetRange(3, 4)); got.Len() > 2 {
		t.Errorf("swallowed range too wide: %s", got)
	}
}

func TestNewRanges(t *testing.T) {
	e := edit.NewEdit(
		edit.Replacement{Range: edit.NewOffsetRange(1, 3), NewText: "XYZ"},
		edit.Replacement{Range: edit.NewOffsetRange(5, 6), NewText: ""},
	)

	got := e.NewRanges()
	want := []edit.OffsetRange{edit.NewOffsetRange(1, 4), edit.NewOffsetRange(6, 6)}
	if len(got) != len(want) {
		t.Fatalf("NewRanges returned %d ranges, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NewRanges[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestProjectRangeThroughChain(t *testing.T) {
	// base "aaabbbccc": first replace [3:6) ("bbb") with "B",
	// then in the result "aaaBccc" insert "x" at offset 0.
	first := edit.Replace(edit.NewOffsetRange(3, 6), "B")
	second := edit.Replace(edit.EmptyRange(0), "x")

	// "ccc" was at [6:9) in the base; after both edits it sits at [5:8).
	got := edit.ProjectRange(edit.NewOffsetRange(6, 9), []edit.Edit{first, second})
	if got != edit.NewOffsetRange(5, 8) {
		t.Errorf("ProjectRange = %s, want [5:8)", got)
	}
}
