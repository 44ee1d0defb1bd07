package widgets_test

import (
	"strings"
	"testing"

	"github.com/deevus/maintenance-tui/internal/vxtest"
	"github.com/deevus/maintenance-tui/widgets"
)

func rowText(buf []string) string {
	return strings.Join(buf, "")
}

func TestTabBar_Labels(t *testing.T) {
	tb := widgets.NewTabBar([]string{"Dashboard", "Machines", "Maintenances"})
	if tb.Active() != 0 {
		t.Errorf("expected initial active=0, got %d", tb.Active())
	}
}

func TestTabBar_Next(t *testing.T) {
	tb := widgets.NewTabBar([]string{"A", "B", "C"})
	tb.Next()
	if tb.Active() != 1 {
		t.Errorf("expected active=1, got %d", tb.Active())
	}
	tb.Next()
	tb.Next()
	if tb.Active() != 0 {
		t.Errorf("expected active=0 after wrap, got %d", tb.Active())
	}
}

func TestTabBar_Prev(t *testing.T) {
	tb := widgets.NewTabBar([]string{"A", "B", "C"})
	tb.Prev()
	if tb.Active() != 2 {
		t.Errorf("expected active=2 after backward wrap, got %d", tb.Active())
	}
}

func TestTabBar_SetActive(t *testing.T) {
	tb := widgets.NewTabBar([]string{"A", "B", "C"})
	tb.SetActive(2)
	if tb.Active() != 2 {
		t.Errorf("expected active=2, got %d", tb.Active())
	}
	tb.SetActive(5)
	tb.SetActive(-1)
	if tb.Active() != 2 {
		t.Errorf("expected out of range to be ignored, got %d", tb.Active())
	}
}

func TestTabBar_Badge(t *testing.T) {
	tb := widgets.NewTabBar([]string{"Dashboard", "Machines", "Maintenances"})
	tb.SetBadge(2, "3")
	tb.SetBadge(7, "x")

	if tb.Badge(2) != "3" {
		t.Errorf("expected badge 3, got %q", tb.Badge(2))
	}
	if tb.Badge(7) != "" {
		t.Errorf("expected empty badge for out of range, got %q", tb.Badge(7))
	}

	s, err := tb.Draw(vxtest.DrawContext(80, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cells := make([]string, 0, 80)
	for _, c := range s.Buffer[:80] {
		cells = append(cells, c.Character.Grapheme)
	}
	if !strings.Contains(rowText(cells), "Maintenances (3)") {
		t.Errorf("expected badge in rendered row, got %q", rowText(cells))
	}

	tb.SetBadge(2, "")
	if tb.Badge(2) != "" {
		t.Error("expected badge cleared")
	}
}

func TestTabBar_Draw(t *testing.T) {
	tb := widgets.NewTabBar([]string{"Dashboard", "Machines", "Maintenances"})

	s, err := tb.Draw(vxtest.DrawContext(80, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Size.Height != 1 {
		t.Errorf("expected surface height=1, got %d", s.Size.Height)
	}
	if s.Size.Width != 80 {
		t.Errorf("expected surface width=80, got %d", s.Size.Width)
	}
}

func TestTabBar_Draw_WideLabels(t *testing.T) {
	tb := widgets.NewTabBar([]string{"東京", "Lyon"})
	tb.SetBadge(1, "2")

	s, err := tb.Draw(vxtest.DrawContext(40, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := vxtest.Row(s, 0), " 東京  |  Lyon (2)"; got != want {
		t.Errorf("expected row %q, got %q", want, got)
	}
	// Each wide rune takes two cells, so the separator lands after them.
	if g := s.Buffer[7].Character.Grapheme; g != "|" {
		t.Errorf("expected separator at cell 7, got %q", g)
	}
}
