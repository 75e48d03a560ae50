package playground

import (
	"reflect"
	"strings"
	"testing"

	"github.com/promptdeck/promptdeck/internal/types"
)

func TestComposeIdentity(t *testing.T) {
	item := &types.ContentItem{Kind: types.KindPrompt, Title: "p", Template: "base"}

	prompt, system := Compose(ComposeInput{Base: "base", Item: item})
	if prompt != "base" {
		t.Errorf("prompt = %q, want base content unchanged", prompt)
	}
	if system != "" {
		t.Errorf("system = %q, want empty for prompt item", system)
	}
}

func TestComposeContextDocument(t *testing.T) {
	item := &types.ContentItem{Kind: types.KindPrompt, Title: "p", Template: "base"}
	doc := &types.ContextDocument{Title: "T", Content: "C"}

	prompt, _ := Compose(ComposeInput{Base: "base", Item: item, Context: doc})

	iTitle := strings.Index(prompt, "CONTEXT FROM: T")
	iContent := strings.Index(prompt, "C")
	iBase := strings.Index(prompt, "base")
	if iTitle < 0 || iContent < 0 || iBase < 0 {
		t.Fatalf("composed prompt missing parts: %q", prompt)
	}
	if !(iTitle < iContent && iContent < iBase) {
		t.Errorf("order wrong: title@%d content@%d base@%d in %q", iTitle, iContent, iBase, prompt)
	}
	if !strings.Contains(prompt, "====================") {
		t.Error("context block delimiter missing")
	}
}

func TestComposeAttachments(t *testing.T) {
	item := &types.ContentItem{
		Kind:     types.KindPrompt,
		Title:    "p",
		Template: "base",
		Attachments: []types.Attachment{
			{Name: "notes.txt", Kind: types.AttachmentFile, MimeType: "text/plain", Content: "note text"},
			{Name: "photo.png", Kind: types.AttachmentFile, MimeType: "image/png", Content: "aGk="},
			{Name: "ref", Kind: types.AttachmentURL, Content: "https://example.com"},
			{Name: "report.pdf", Kind: types.AttachmentFile, MimeType: "application/pdf", Content: "extracted pdf text"},
		},
	}

	prompt, _ := Compose(ComposeInput{Base: "base", Item: item})

	if !strings.Contains(prompt, "CONTEXT FROM ATTACHMENTS:") {
		t.Fatalf("attachment block missing: %q", prompt)
	}
	for _, want := range []string{"FILE: notes.txt", "note text", "FILE: ref", "https://example.com", "FILE: report.pdf", "extracted pdf text"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("composed prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "photo.png") || strings.Contains(prompt, "aGk=") {
		t.Error("image attachment leaked into text block")
	}
	if !strings.HasSuffix(prompt, "base") {
		t.Errorf("base content should come last: %q", prompt)
	}
}

func TestComposeSystemInstruction(t *testing.T) {
	agent := &types.ContentItem{
		Kind:              types.KindAgent,
		Title:             "a",
		SystemInstruction: "Be terse.",
	}

	prompt, system := Compose(ComposeInput{Base: "Hi", Item: agent})
	if prompt != "Hi" {
		t.Errorf("prompt = %q, want user message only", prompt)
	}
	if system != "Be terse." {
		t.Errorf("system = %q, want instruction verbatim", system)
	}
	if strings.Contains(prompt, "Be terse.") {
		t.Error("system instruction must never be concatenated into the prompt")
	}
}

func TestComposePrecedence(t *testing.T) {
	item := &types.ContentItem{
		Kind:     types.KindPrompt,
		Title:    "p",
		Template: "base",
		Attachments: []types.Attachment{
			{Name: "a.txt", Kind: types.AttachmentFile, MimeType: "text/plain", Content: "att"},
		},
	}
	doc := &types.ContextDocument{Title: "T", Content: "ctx"}

	prompt, _ := Compose(ComposeInput{Base: "base", Item: item, Context: doc})

	iCtx := strings.Index(prompt, "CONTEXT FROM: T")
	iAtt := strings.Index(prompt, "CONTEXT FROM ATTACHMENTS:")
	iBase := strings.LastIndex(prompt, "base")
	if !(iCtx < iAtt && iAtt < iBase) {
		t.Errorf("precedence wrong: context@%d attachments@%d base@%d in %q", iCtx, iAtt, iBase, prompt)
	}
}

func TestComposeDoesNotMutateItem(t *testing.T) {
	item := &types.ContentItem{Kind: types.KindPrompt, Title: "p", Template: "base"}
	before := *item

	Compose(ComposeInput{Base: "other", Item: item, Context: &types.ContextDocument{Title: "T", Content: "C"}})

	if !reflect.DeepEqual(*item, before) {
		t.Error("Compose mutated the content item")
	}
}
