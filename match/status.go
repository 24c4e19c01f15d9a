package match

import (
	"strings"

	"github.com/tsawler/gridmatch/internal/textnorm"
	"github.com/tsawler/gridmatch/model"
)

// Status reads a status cell: its text when it has any, otherwise the
// palette name nearest to the stroke color of its first mark.
func Status(c *model.Cell, p Palette) string {
	if c == nil {
		return ""
	}
	if t := textnorm.Clean(c.Text()); t != "" {
		return t
	}
	for _, s := range c.Shapes() {
		if s.Primitive.Style.Stroked {
			return p.Classify(s.Primitive.Style.Stroke)
		}
	}
	return ""
}

// Checked reports whether a checkbox cell holds a mark or text.
func Checked(c *model.Cell) bool {
	return c != nil && len(c.Children) > 0
}

// SplitSigned splits a signed reading such as "+12.5 mm" into value and
// unit. Unsigned text is returned whole as the value.
func SplitSigned(text string) (value, unit string) {
	text = textnorm.Clean(text)
	if !strings.HasPrefix(text, "+") && !strings.HasPrefix(text, "-") {
		return text, ""
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
