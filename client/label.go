package client

import (
	"html"
	"strings"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses bounds the decode loop for labels with nested entities.
const maxSanitizePasses = 8

// LabelSanitizer strips markup from requester labels before they are stored
// or sent to the actuator.
type LabelSanitizer struct {
	policy *bluemonday.Policy
}

func NewLabelSanitizer() *LabelSanitizer {
	return &LabelSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize removes tags, turns entities back into text, collapses runs of
// whitespace and line breaks, and replaces the slot separator so the label
// cannot split a device command.
//
// Decoding an entity can produce a new tag ("&lt;b&gt;" becomes "<b>"), so
// stripping and decoding repeat until the label stops changing. A label that
// never settles keeps its escaped form.
func (s *LabelSanitizer) Sanitize(label string) string {
	cleaned := label
	settled := false
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(cleaned))
		if next == cleaned {
			settled = true
			break
		}
		cleaned = next
	}
	if !settled {
		cleaned = s.policy.Sanitize(cleaned)
	}
	cleaned = strings.ReplaceAll(cleaned, constants.SlotSeparator, "/")
	return strings.Join(strings.Fields(cleaned), " ")
}
