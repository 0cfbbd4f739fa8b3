package tab

import "fmt"

// ScrollLabel renders the scroll position of a pane: All when the whole
// content fits, Top, Bot, or a percentage.
func ScrollLabel(offset, total, page int) string {
	limit := total - page
	if limit <= 0 {
		return "All"
	}

	pct := offset * 100 / limit
	switch {
	case pct <= 0:
		return "Top"
	case pct >= 100:
		return "Bot"
	}
	return fmt.Sprintf("%d%%", pct)
}
