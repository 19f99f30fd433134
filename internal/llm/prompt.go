// Package llm holds the prompt construction and strict response parsing
// shared by every reasoning-service adapter, so all providers speak the
// same classification schema.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mailmind/mailmind/internal/core"
)

const systemPromptFormat = `You are an intelligent email classification assistant. Your job is to analyze emails and determine what actions should be taken on each one based on the user's rules.

## User's Classification Rules
%s

## Your Task
For each email provided, return a JSON classification with the appropriate actions.

## Available Actions
- "move": Move to a folder (provide folderId: inbox/junk/deleteditems/archive or a custom folder name)
- "flag": Flag the email (flagStatus: "flagged" | "notFlagged" | "complete")
- "markRead": Mark as read/unread (isRead: true | false)
- "categorise": Set categories (categories: string[])
- "setImportance": Set importance (importance: "low" | "normal" | "high")
- "delete": Delete the email

## Response Format
Always respond with valid JSON in this exact format:
{
  "classifications": [
    {
      "messageId": "the email id",
      "matchedRule": "Rule name or 'No rule matched'",
      "reasoning": "Brief explanation of why this classification was chosen",
      "confidence": 0.0-1.0,
      "actions": [
        { "action": "flag", "flagStatus": "flagged" },
        { "action": "categorise", "categories": ["Important"] }
      ]
    }
  ]
}

If no action is needed, return an empty actions array. Be conservative — only act when confident.`

// BuildSystemPrompt renders the system instruction enumerating the
// enabled rules verbatim and the fixed action vocabulary.
func BuildSystemPrompt(rules []core.Rule) string {
	rulesText := "No specific rules defined. Use general best practices to classify emails."
	if len(rules) > 0 {
		lines := make([]string, 0, len(rules))
		for i, r := range rules {
			lines = append(lines, fmt.Sprintf("Rule %d: %s\n  Condition: %s\n  Action: %s",
				i+1, r.Name, r.Condition, r.Action))
		}
		rulesText = strings.Join(lines, "\n\n")
	}
	return fmt.Sprintf(systemPromptFormat, rulesText)
}

// BuildUserPrompt embeds the batch's sanitized mails as structured data.
func BuildUserPrompt(mails []core.SanitizedMail) (string, error) {
	data, err := json.MarshalIndent(mails, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling sanitized mails: %w", err)
	}
	plural := ""
	if len(mails) != 1 {
		plural = "s"
	}
	return fmt.Sprintf("Please classify the following %d email%s:\n\n%s\n\nReturn your classifications as JSON.",
		len(mails), plural, data), nil
}
