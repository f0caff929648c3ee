package filter

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyprod/internal/models"
)

// Describe renders a condition as text, e.g. "Color in (Red, Blue)"
func Describe(property models.Property, op models.Operator, payload Payload) string {
	text := op.Text
	if text == "" {
		text = string(op.ID)
	}

	if !op.TakesValue() {
		return fmt.Sprintf("%s %s", property.Name, strings.ToLower(text))
	}

	if len(payload.Values) == 0 {
		return fmt.Sprintf("%s %s …", property.Name, strings.ToLower(text))
	}

	if op.MultiValue() {
		parts := make([]string, len(payload.Values))
		for i, v := range payload.Values {
			parts[i] = v.String()
		}
		return fmt.Sprintf("%s %s (%s)", property.Name, strings.ToLower(text), strings.Join(parts, ", "))
	}

	return fmt.Sprintf("%s %s %s", property.Name, strings.ToLower(text), payload.Values[0])
}
