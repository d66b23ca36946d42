package draft_test

import (
	"strings"
	"testing"

	"github.com/xraph/letterpress/draft"
	"github.com/xraph/letterpress/letter"
)

func TestBuildPromptDeterministic(t *testing.T) {
	req := draft.Request{
		Type:       "demand",
		Subject:    "Unpaid invoice #4711",
		Matter:     "Invoice issued 90 days ago remains unpaid despite two reminders.",
		Resolution: "Payment in full within 14 days.",
		Sender:     letter.Party{Name: "Ada Example", Company: "Example Ltd"},
		Recipient:  letter.Party{Name: "Bert Debtor"},
		Tone:       letter.ToneFirm,
	}

	first := draft.BuildPrompt(req)
	second := draft.BuildPrompt(req)
	if first != second {
		t.Fatal("BuildPrompt is not deterministic for identical input")
	}
}

func TestBuildPromptContents(t *testing.T) {
	req := draft.Request{
		Type:      "demand",
		Subject:   "Unpaid invoice",
		Matter:    "unpaid invoice",
		Sender:    letter.Party{Name: "Ada Example"},
		Recipient: letter.Party{Name: "Bert Debtor", Company: "Debtor GmbH"},
		Tone:      letter.ToneFirm,
	}

	prompt := draft.BuildPrompt(req)

	for _, want := range []string{
		"demand letter",
		"firm tone",
		"Ada Example",
		"Bert Debtor (Debtor GmbH)",
		"Subject: Unpaid invoice",
		"unpaid invoice",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	prompt := draft.BuildPrompt(draft.Request{
		Matter:    "noise complaint",
		Sender:    letter.Party{Name: "A"},
		Recipient: letter.Party{Name: "B"},
	})

	if !strings.Contains(prompt, "formal letter") {
		t.Errorf("expected default letter type, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "formal tone") {
		t.Errorf("expected default tone, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "Desired resolution") {
		t.Error("resolution section should be omitted when empty")
	}
}
