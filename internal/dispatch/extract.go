package dispatch

import "strings"

const fence = "```"

// ExtractCode returns the concatenated inner contents of every fenced
// code block in text (optionally tagged with a language name). When no
// fenced block is found the raw text is returned unchanged; extraction
// never fails on its own.
func ExtractCode(text string) string {
	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, fence)
		if start == -1 {
			break
		}
		// Skip the opening fence and its language tag.
		rest = rest[start+len(fence):]
		if nl := strings.IndexByte(rest, '\n'); nl != -1 {
			rest = rest[nl+1:]
		} else {
			rest = ""
		}

		end := strings.Index(rest, fence)
		if end == -1 {
			// Unterminated block: take everything to the end.
			if block := strings.TrimSpace(rest); block != "" {
				blocks = append(blocks, block)
			}
			rest = ""
			break
		}
		if block := strings.TrimSpace(rest[:end]); block != "" {
			blocks = append(blocks, block)
		}
		rest = rest[end+len(fence):]
	}

	if len(blocks) == 0 {
		return text
	}
	return strings.Join(blocks, "\n\n")
}
