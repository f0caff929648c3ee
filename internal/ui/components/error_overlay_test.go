package components

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/lazyprod/internal/ui/theme"
)

func TestErrorOverlay_View(t *testing.T) {
	overlay := NewErrorOverlay(theme.DefaultTheme())
	overlay.SetError("Load Failed", "products.yaml: no such file")

	view := overlay.View()
	for _, want := range []string{"Load Failed", "no such file", "Esc or Enter"} {
		if !strings.Contains(view, want) {
			t.Errorf("overlay missing %q:\n%s", want, view)
		}
	}
}

func TestErrorOverlay_DefaultTitle(t *testing.T) {
	overlay := NewErrorOverlay(theme.DefaultTheme())
	overlay.SetError("", "boom")

	if !strings.Contains(overlay.View(), "Error") {
		t.Error("overlay should fall back to a generic title")
	}
}
