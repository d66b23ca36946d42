package draft

import (
	"fmt"
	"strings"

	"github.com/xraph/letterpress/letter"
)

// Request carries the fields a caller supplies when asking for a letter.
type Request struct {
	LetterID   string          `json:"letter_id,omitempty"` // empty for a new letter
	Type       string          `json:"type"`
	Subject    string          `json:"subject"`
	Matter     string          `json:"matter"`
	Resolution string          `json:"resolution,omitempty"`
	Sender     letter.Party    `json:"sender"`
	Recipient  letter.Party    `json:"recipient"`
	Tone       letter.Tone     `json:"tone,omitempty"`
	Priority   letter.Priority `json:"priority,omitempty"`
}

// BuildPrompt renders a generation prompt from the request fields. It is a
// pure function: the same request always produces the same prompt string,
// so prompt construction is independently testable and never performs I/O.
func BuildPrompt(req Request) string {
	var sb strings.Builder

	letterType := req.Type
	if letterType == "" {
		letterType = "formal"
	}
	tone := req.Tone
	if tone == "" {
		tone = letter.ToneFormal
	}

	fmt.Fprintf(&sb, "Draft a %s letter in a %s tone.\n\n", letterType, tone)
	fmt.Fprintf(&sb, "Sender: %s", req.Sender.Name)
	if req.Sender.Company != "" {
		fmt.Fprintf(&sb, " (%s)", req.Sender.Company)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Recipient: %s", req.Recipient.Name)
	if req.Recipient.Company != "" {
		fmt.Fprintf(&sb, " (%s)", req.Recipient.Company)
	}
	sb.WriteString("\n")

	if req.Subject != "" {
		fmt.Fprintf(&sb, "Subject: %s\n", req.Subject)
	}
	fmt.Fprintf(&sb, "\nMatter:\n%s\n", req.Matter)

	if req.Resolution != "" {
		fmt.Fprintf(&sb, "\nDesired resolution:\n%s\n", req.Resolution)
	}

	sb.WriteString("\nWrite the full letter body only, without a signature block.")
	return sb.String()
}
