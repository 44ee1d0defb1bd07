package widgets_test

import (
	"testing"

	"git.sr.ht/~rockorager/vaxis"
	"github.com/deevus/maintenance-tui/internal/vxtest"
	"github.com/deevus/maintenance-tui/widgets"
)

func cellText(s vaxis.Cell) string {
	return s.Character.Grapheme
}

func TestTable_Draw_AlignedColumns(t *testing.T) {
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 10},
			{Width: 6, AlignRight: true},
			{Width: 8, AlignRight: true},
		},
		Header: []string{"MACHINE", "DUE", "PRIO"},
		Rows: [][]string{
			{"press-04", "2.5d", "high"},
			{"lathe", "3.5d", "low"},
		},
		Gap: 2,
	}

	ctx := vxtest.DrawContext(40, 10)
	surf, err := tbl.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Should have 3 rows: header + 2 data
	if surf.Size.Height != 3 {
		t.Fatalf("expected height=3, got %d", surf.Size.Height)
	}

	if g := cellText(surf.Buffer[0]); g != "M" {
		t.Errorf("header col 0: expected 'M', got %q", g)
	}

	// "DUE" is right-aligned in width 6 starting at col 12 (10+2 gap),
	// so it starts at col 15.
	if g := cellText(surf.Buffer[15]); g != "D" {
		t.Errorf("header DUE col 15: expected 'D', got %q", g)
	}

	// Data row 1 starts at row 1 (offset = 1*40 = 40)
	if g := cellText(surf.Buffer[40]); g != "p" {
		t.Errorf("row1 col 0: expected 'p', got %q", g)
	}

	// "2.5d" is 4 chars, right-aligned in 6 = 2 offset, col 14
	if g := cellText(surf.Buffer[40+14]); g != "2" {
		t.Errorf("row1 due col 14: expected '2', got %q", g)
	}

	if g := cellText(surf.Buffer[80]); g != "l" {
		t.Errorf("row2 col 0: expected 'l', got %q", g)
	}

	// Both due values should start at the same column (14)
	if g := cellText(surf.Buffer[80+14]); g != "3" {
		t.Errorf("row2 due col 14: expected '3', got %q", g)
	}
}

func TestTable_Draw_NoHeader(t *testing.T) {
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 8},
			{Width: 6},
		},
		Rows: [][]string{
			{"hello", "world"},
		},
	}

	ctx := vxtest.DrawContext(30, 5)
	surf, err := tbl.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if surf.Size.Height != 1 {
		t.Errorf("expected height=1 (no header), got %d", surf.Size.Height)
	}
}

func TestTable_Draw_TruncatesLongText(t *testing.T) {
	tbl := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 4},
		},
		Rows: [][]string{
			{"toolongname"},
		},
	}

	ctx := vxtest.DrawContext(20, 5)
	surf, err := tbl.Draw(ctx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Should only write 4 chars
	if g := cellText(surf.Buffer[0]); g != "t" {
		t.Errorf("col 0: expected 't', got %q", g)
	}
	if g := cellText(surf.Buffer[3]); g != "l" {
		t.Errorf("col 3: expected 'l', got %q", g)
	}
	// Col 4 should be empty (beyond column width)
	if g := cellText(surf.Buffer[4]); g != "" {
		t.Errorf("col 4: expected empty, got %q", g)
	}
}

func TestTable_RowStyles(t *testing.T) {
	red := vaxis.Style{Foreground: vaxis.IndexColor(1)}
	tbl := &widgets.Table{
		Columns:   []widgets.TableColumn{{Width: 6}},
		Rows:      [][]string{{"late"}, {"fine"}},
		RowStyles: []*vaxis.Style{&red},
	}

	surf, err := tbl.Draw(vxtest.DrawContext(10, 5))
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if fg := surf.Buffer[0].Style.Foreground; fg != vaxis.IndexColor(1) {
		t.Errorf("row 0: expected red, got %v", fg)
	}
	if fg := surf.Buffer[10].Style.Foreground; fg != 0 {
		t.Errorf("row 1: expected default colour, got %v", fg)
	}
}

func TestTable_CursorScrolls(t *testing.T) {
	tbl := &widgets.Table{
		Columns:    []widgets.TableColumn{{Width: 4}},
		Header:     []string{"ID"},
		Rows:       [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}},
		ShowCursor: true,
	}

	tbl.MoveCursor(3)
	if tbl.Cursor != 3 {
		t.Fatalf("expected cursor 3, got %d", tbl.Cursor)
	}

	// Header plus two body rows: "c" and "d" are visible.
	surf, err := tbl.Draw(vxtest.DrawContext(4, 3))
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if g := cellText(surf.Buffer[4]); g != "c" {
		t.Errorf("first body row: expected 'c', got %q", g)
	}
	if g := cellText(surf.Buffer[8]); g != "d" {
		t.Errorf("second body row: expected 'd', got %q", g)
	}
	if surf.Buffer[8].Style.Attribute&vaxis.AttrReverse == 0 {
		t.Error("expected cursor row in reverse video")
	}

	tbl.MoveCursor(10)
	if tbl.Cursor != 4 {
		t.Errorf("expected cursor clamped to 4, got %d", tbl.Cursor)
	}
	tbl.MoveCursor(-10)
	if tbl.Cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", tbl.Cursor)
	}
}
