package layout

import (
	"fmt"
	"io"
)

// Style selects one of the rendering surfaces
type Style string

const (
	StylePopover Style = "popover"
	StyleSmall   Style = "small"
	StyleMedium  Style = "medium"
	StyleLarge   Style = "large"
)

// LayoutStrategy defines the interface for different layout rendering strategies
type LayoutStrategy interface {
	Render(w io.Writer, view View) error
	GetName() string
}

// ParseStyle validates a style name
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StylePopover, StyleSmall, StyleMedium, StyleLarge:
		return Style(s), nil
	default:
		return "", fmt.Errorf("unknown layout %q (expected popover, small, medium or large)", s)
	}
}

// GetLayoutStrategy returns the layout strategy for style, the popover when unknown
func GetLayoutStrategy(style Style) LayoutStrategy {
	strategies := map[Style]LayoutStrategy{
		StylePopover: &PopoverLayoutStrategy{},
		StyleSmall:   &SmallWidgetStrategy{},
		StyleMedium:  &MediumWidgetStrategy{},
		StyleLarge:   &LargeWidgetStrategy{},
	}

	if strategy, exists := strategies[style]; exists {
		return strategy
	}

	return &PopoverLayoutStrategy{}
}
