package core

import (
	"encoding/json"
	"strings"
)

// MessageID extracts the Message-Id value from the provider's message-headers blob,
// a JSON array of [name, value] pairs.
func MessageID(rawHeaders string) (string, error) {
	var pairs [][]string
	if err := json.Unmarshal([]byte(rawHeaders), &pairs); err != nil {
		return "", MalformedProviderResponse(err, "message-headers is not a valid header list")
	}
	for _, pair := range pairs {
		if len(pair) != 2 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(pair[0]), "Message-Id") {
			continue
		}
		if id := strings.TrimSpace(pair[1]); id != "" {
			return id, nil
		}
	}
	return "", MissingMessageID()
}
