package service

import "strings"

// extractContentFromChunk pulls the text delta out of one SSE line of an
// OpenRouter completion stream, e.g.
//
//	data: {"choices":[{"delta":{"content":"Hi"}}]}
//
// It deliberately scans for markers instead of parsing JSON: partial or
// malformed chunks yield an empty string, never an error. A nested "content"
// key appearing before the delta's own could be picked up instead; that
// behavior is kept as-is.
func extractContentFromChunk(chunk string) string {
	chunk = strings.TrimPrefix(chunk, "data: ")

	if chunk == "[DONE]" || strings.TrimSpace(chunk) == "" {
		return ""
	}

	deltaIdx := strings.Index(chunk, `"delta"`)
	if deltaIdx == -1 {
		return ""
	}

	contentIdx := strings.Index(chunk[deltaIdx:], `"content"`)
	if contentIdx == -1 {
		return ""
	}
	contentIdx += deltaIdx

	colonIdx := strings.Index(chunk[contentIdx:], ":")
	if colonIdx == -1 {
		return ""
	}
	colonIdx += contentIdx

	startQuote := strings.Index(chunk[colonIdx+1:], `"`)
	if startQuote == -1 {
		return ""
	}
	startQuote += colonIdx + 1

	endQuote := findClosingQuote(chunk, startQuote+1)
	if endQuote == -1 {
		return ""
	}

	return unescapeContent(chunk[startQuote+1 : endQuote])
}

// findClosingQuote returns the index of the first quote at or after start
// that is not preceded by a backslash.
func findClosingQuote(s string, start int) int {
	for i := start; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

func unescapeContent(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}
