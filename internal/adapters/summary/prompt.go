// Package summary provides optional one-line summaries of forwarded emails
package summary

import (
	"fmt"
	"strings"

	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/utils"
)

const promptTemplate = `Write a brief summary of this email in a short phrase.

- For automated notifications: describe the event concisely
- For personal or business emails: describe the key point or action needed
- Maximum 100 characters. Be specific, not vague.
- Output ONLY the summary phrase. No quotes, no preamble.

Subject: %s
From: %s
---
%s`

// maxSummaryLength is the longest summary posted to chat
const maxSummaryLength = 160

func buildPrompt(tp *utils.TextProcessor, email *core.ReceivedEmail, maxBodySize int) string {
	body := tp.TruncateText(tp.SanitizeUTF8(email.BodyPlain), maxBodySize)
	return fmt.Sprintf(promptTemplate, email.Subject, email.Sender, body)
}

// cleanSummary keeps the first line and cuts it at a word boundary
func cleanSummary(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = strings.TrimSpace(text[:idx])
	}
	text = strings.Trim(text, `"`)
	if len(text) <= maxSummaryLength {
		return text
	}
	cutoff := maxSummaryLength - 3
	if lastSpace := strings.LastIndex(text[:cutoff], " "); lastSpace > 0 {
		return text[:lastSpace] + "..."
	}
	return text[:cutoff] + "..."
}
