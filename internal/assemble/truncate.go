package assemble

import "fmt"

// truncateTail cuts text to max bytes, keeping the head. The marker
// states exactly how much was omitted so a reader can tell a complete
// section from a partial one.
func truncateTail(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	omitted := len(text) - max
	return text[:max] + fmt.Sprintf("\n... [truncated %d bytes]", omitted)
}

// truncateMiddle keeps the head and tail of text. Used for the API
// contract when a byte cap is configured: both ends of a contract carry
// signal, the middle less so.
func truncateMiddle(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	half := max / 2
	omitted := len(text) - 2*half
	return text[:half] + fmt.Sprintf("\n... [truncated %d bytes] ...\n", omitted) + text[len(text)-half:]
}
