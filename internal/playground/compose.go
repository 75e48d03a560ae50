package playground

import (
	"fmt"
	"strings"

	"github.com/promptdeck/promptdeck/internal/types"
)

// ComposeInput carries everything the composer reads. The content item is
// treated as read-only; composition never mutates it.
type ComposeInput struct {
	// Base is the resolved or raw template text (prompt items), or the raw
	// user message (agent/persona items).
	Base string
	// Item is the selected content item; its attachments contribute text
	// context and, for agents and personas, its system instruction.
	Item *types.ContentItem
	// Context, when non-nil, is prepended ahead of everything else.
	Context *types.ContextDocument
}

// Compose assembles the outbound prompt and the optional system
// instruction. Precedence, outermost first: reference context document,
// text-bearing item attachments, base content. Image attachments never
// enter the text block. Composition is pure.
func Compose(in ComposeInput) (prompt, systemInstruction string) {
	prompt = in.Base

	if in.Item != nil {
		if block := attachmentBlock(in.Item.Attachments); block != "" {
			prompt = block + prompt
		}
		switch in.Item.Kind {
		case types.KindAgent, types.KindPersona:
			systemInstruction = in.Item.SystemInstruction
		case types.KindPrompt:
			// template text is the prompt body; no instruction
		}
	}

	if in.Context != nil {
		prompt = fmt.Sprintf("CONTEXT FROM: %s\n====================\n%s\n====================\n\n%s",
			in.Context.Title, in.Context.Content, prompt)
	}

	return prompt, systemInstruction
}

// attachmentBlock renders the text-bearing attachments as a bordered
// context block, or "" when none qualify.
func attachmentBlock(attachments []types.Attachment) string {
	var sb strings.Builder
	for i := range attachments {
		a := &attachments[i]
		if !a.IsTextBearing() {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString("CONTEXT FROM ATTACHMENTS:\n====================\n")
		}
		fmt.Fprintf(&sb, "FILE: %s\n---\n%s\n---\n\n", a.Name, a.Content)
	}
	if sb.Len() == 0 {
		return ""
	}
	sb.WriteString("====================\n\n")
	return sb.String()
}
