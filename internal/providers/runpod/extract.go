package runpod

import "strings"

var (
	// textFields is the lookup order for text inside an object.
	textFields = []string{"text", "generated_text", "output", "content", "message"}
	// itemTextFields is tried on list elements that carry no choices.
	itemTextFields = []string{"text", "generated_text", "output", "content"}
)

// ExtractText reduces a provider output of unknown shape to cleaned text.
// It never fails; unrecognized shapes fall back to their rendering.
func ExtractText(v Value) string {
	switch v.Kind() {
	case ValueString:
		return CleanText(v.Text())
	case ValueObject:
		return extractObject(v)
	case ValueList:
		return extractList(v)
	default:
		return CleanText(v.Text())
	}
}

func extractObject(v Value) string {
	if _, field, ok := lookupField(v, textFields); ok {
		return ExtractText(field)
	}
	if choices, ok := v.Field("choices"); ok {
		return ExtractText(choices)
	}
	return CleanText(v.Text())
}

func extractList(v Value) string {
	items := v.Items()
	if len(items) == 0 {
		return ""
	}
	for _, item := range items {
		if item.Kind() != ValueObject {
			continue
		}
		if text, ok := choiceText(item); ok {
			return text
		}
		if _, field, ok := lookupField(item, itemTextFields); ok {
			return ExtractText(field)
		}
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Text())
	}
	return CleanText(strings.Join(parts, " "))
}

// choiceText reads the first choice of an element shaped like
// {"choices": [{"tokens": [...]}]} or {"choices": [{"text": ...}]}.
func choiceText(item Value) (string, bool) {
	choices, ok := item.Field("choices")
	if !ok || choices.Kind() != ValueList || choices.Len() == 0 {
		return "", false
	}
	first := choices.Items()[0]
	if first.Kind() != ValueObject {
		return "", false
	}
	if tokens, ok := first.Field("tokens"); ok && tokens.Kind() == ValueList && tokens.Len() > 0 {
		parts := make([]string, 0, tokens.Len())
		for _, tok := range tokens.Items() {
			parts = append(parts, tok.Text())
		}
		return CleanText(strings.Join(parts, " ")), true
	}
	if _, field, ok := lookupField(first, textFields); ok {
		return ExtractText(field), true
	}
	return "", false
}
