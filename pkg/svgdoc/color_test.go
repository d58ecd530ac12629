package svgdoc

import (
	"errors"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		expr    string
		value   string
		opacity float64
	}{
		{"#112233", "#112233", 1},
		{"red", "#ff0000", 1},
		{"  rgb(0, 128, 255) ", "#0080ff", 1},
		{"rgba(0, 0, 0, 0.5)", "#000000", 0.5},
		{"url(#gradient)", "url(#gradient)", 1},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c, err := ParseColor(tt.expr)
			if err != nil {
				t.Fatalf("ParseColor(%q) failed: %v", tt.expr, err)
			}
			if c.Value != tt.value || c.Opacity != tt.opacity {
				t.Errorf("ParseColor(%q) = %+v, want {%s %v}", tt.expr, c, tt.value, tt.opacity)
			}
		})
	}

	for _, bad := range []string{"", "   ", "<rect/>", `red"`, "red;stroke:blue"} {
		if _, err := ParseColor(bad); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q) should fail with ErrInvalidColor, got %v", bad, err)
		}
	}
}

func TestSetFill(t *testing.T) {
	color, err := ParseColor("#112233")
	if err != nil {
		t.Fatalf("ParseColor failed: %v", err)
	}

	t.Run("Attribute", func(t *testing.T) {
		el := mustParse(t, `<rect fill="red" width="4" stroke="blue"/>`)
		SetFill(color, el)
		if v, _ := AttrValue(el, "fill"); v != "#112233" {
			t.Errorf("expected fill #112233, got %q", v)
		}
		if v, _ := AttrValue(el, "stroke"); v != "blue" {
			t.Errorf("stroke must be preserved, got %q", v)
		}
		if v, _ := AttrValue(el, "width"); v != "4" {
			t.Errorf("width must be preserved, got %q", v)
		}
		if _, ok := AttrValue(el, "fill-opacity"); ok {
			t.Error("fill-opacity must not be synthesized when absent")
		}
		if len(el.Attr) != 3 {
			t.Errorf("expected 3 attributes, got %d", len(el.Attr))
		}
	})

	t.Run("InlineStyle", func(t *testing.T) {
		el := mustParse(t, `<path style="fill:red;stroke:blue;"/>`)
		SetFill(color, el)
		style, _ := AttrValue(el, "style")
		props := ParseStyle(style)
		if v, _ := lookupStyle(props, "fill"); v != "#112233" {
			t.Errorf("expected style fill #112233, got %q in %q", v, style)
		}
		if v, _ := lookupStyle(props, "fill-opacity"); v != "1" {
			t.Errorf("expected style fill-opacity 1, got %q in %q", v, style)
		}
		if v, _ := lookupStyle(props, "stroke"); v != "blue" {
			t.Errorf("stroke must be preserved in style, got %q", style)
		}
	})

	t.Run("Recursive", func(t *testing.T) {
		el := mustParse(t, `<g><g><circle fill="red" fill-opacity="0.2"/></g><rect/></g>`)
		half, _ := ParseColor("rgba(255, 255, 255, 0.5)")
		SetFill(half, el)
		circle := el.FindElement("g/circle")
		if v, _ := AttrValue(circle, "fill"); v != "#ffffff" {
			t.Errorf("nested fill not rewritten: %q", v)
		}
		if v, _ := AttrValue(circle, "fill-opacity"); v != "0.5" {
			t.Errorf("nested fill-opacity not rewritten: %q", v)
		}
		rect := el.FindElement("rect")
		if len(rect.Attr) != 0 {
			t.Error("elements without fill must not gain one")
		}
	})
}

func TestSetStroke(t *testing.T) {
	color, _ := ParseColor("black")
	el := mustParse(t, `<g stroke="red" fill="green"><path style="stroke-opacity:0.3"/></g>`)
	SetStroke(color, el)
	if v, _ := AttrValue(el, "stroke"); v != "#000000" {
		t.Errorf("expected stroke #000000, got %q", v)
	}
	if v, _ := AttrValue(el, "fill"); v != "green" {
		t.Errorf("fill must be untouched by SetStroke, got %q", v)
	}
	style, _ := AttrValue(el.FindElement("path"), "style")
	if style != "stroke-opacity:1;stroke:#000000" {
		t.Errorf("unexpected style %q", style)
	}
}

func TestStyleRoundTrip(t *testing.T) {
	props := ParseStyle(" fill : red ;;broken; stroke:blue;")
	if len(props) != 2 {
		t.Fatalf("expected 2 properties, got %d: %+v", len(props), props)
	}
	if got := FormatStyle(props); got != "fill:red;stroke:blue" {
		t.Errorf("FormatStyle = %q", got)
	}
	props = setStyle(props, "fill", "blue")
	props = setStyle(props, "opacity", "1")
	if got := FormatStyle(props); got != "fill:blue;stroke:blue;opacity:1" {
		t.Errorf("setStyle produced %q", got)
	}
}
