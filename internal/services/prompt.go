package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"gemini-relay/internal/models"
)

// SpellCheckInstruction is appended after the user's text, not before it.
const SpellCheckInstruction = "You are an AI assistant that checks grammatical mistakes and spelling errors. Use the context below to generate your response.\n\n"

// ConversationPreamble opens every conversation-mode prompt.
const ConversationPreamble = "You are an AI assistant that remembers the entire conversation. Use the context below to generate your response.\n\n"

// SpellCheckPrompt builds the single-instruction prompt: input text first,
// instruction last.
func SpellCheckPrompt(input string) string {
	return input + SpellCheckInstruction
}

// ConversationPrompt flattens a conversation into the preamble followed by
// one "User: "/"Assistant: " line per message, in order.
func ConversationPrompt(conversation []models.Message) string {
	lines := make([]string, 0, len(conversation))
	for _, msg := range conversation {
		lines = append(lines, speaker(msg.Role)+": "+msg.Text)
	}

	var b strings.Builder
	b.WriteString(ConversationPreamble)
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func speaker(role models.Role) string {
	switch role {
	case models.RoleUser:
		return "User"
	case models.RoleAssistant, models.RoleSystem, models.RolePending:
		return "Assistant"
	default:
		return "Assistant"
	}
}

// RequestPrompt picks conversation mode when the conversation field is a JSON
// array and otherwise returns the raw prompt field untouched.
func RequestPrompt(req models.RelayRequest) (string, error) {
	if isJSONArray(req.Conversation) {
		var conversation []models.Message
		if err := json.Unmarshal(req.Conversation, &conversation); err != nil {
			return "", err
		}
		return ConversationPrompt(conversation), nil
	}

	if req.Prompt == nil {
		return "", nil
	}
	return *req.Prompt, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
