package sql

import (
	"regexp"
)

// Regex patterns for statement sanitization.
var (
	// hexLiteralRegex matches hex literals.
	// Example matches: 0xDEADBEEF, 0xFF, 0x1a2b
	hexLiteralRegex = regexp.MustCompile(`\b0[xX][0-9a-fA-F]+\b`)

	// numericLiteralRegex matches numeric literals (integers and floats).
	// Example matches: 123, 45.67, 0.5
	numericLiteralRegex = regexp.MustCompile(`\b\d+\.?\d*\b`)
)

// DefaultQuerySanitizer transforms raw statement text into a form safe for
// low-cardinality telemetry:
//
//   - -- and /* */ comments are removed
//   - string literals: 'john' → '?'
//   - numeric literals: 123, 45.67 → ?
//   - hex literals: 0xDEADBEEF → ?
//
// Identifiers, keywords and structural punctuation are untouched, and the
// function is idempotent: sanitizing already-sanitized text returns it
// unchanged.
//
// Example:
//
//	DefaultQuerySanitizer("SELECT * FROM Users WHERE UserId = 123; -- comment")
//	// returns "SELECT * FROM Users WHERE UserId = ?;"
//
// Note: this is not a full SQL parser. A digit-led token inside a quoted
// identifier would be masked as well; for dialects where that matters supply
// a custom sanitizer via WithQuerySanitizer.
func DefaultQuerySanitizer(query string) string {
	query = maskStringsAndComments(query)
	query = hexLiteralRegex.ReplaceAllString(query, "?")
	query = numericLiteralRegex.ReplaceAllString(query, "?")

	return query
}

// maskStringsAndComments walks the statement once, replacing single-quoted
// string literals with '?' and dropping -- and /* */ comments together with
// any horizontal whitespace directly before them. Tracking quote and comment
// state in a single pass means a -- or /* inside a literal is masked with
// the rest of the literal, and a quote inside a comment does not open a
// string.
func maskStringsAndComments(query string) string {
	out := make([]byte, 0, len(query))

	for i := 0; i < len(query); {
		switch c := query[i]; {
		case c == '\'':
			// Consume the literal, honoring backslash escapes and
			// doubled quotes. An unterminated literal runs to the
			// end of the statement.
			i++
			for i < len(query) {
				if query[i] == '\\' && i+1 < len(query) {
					i += 2
					continue
				}
				if query[i] == '\'' {
					i++
					if i < len(query) && query[i] == '\'' {
						i++
						continue
					}
					break
				}
				i++
			}
			out = append(out, "'?'"...)
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			out = trimTrailingBlanks(out)
			for i < len(query) && query[i] != '\n' && query[i] != '\r' {
				i++
			}
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			out = trimTrailingBlanks(out)
			i += 2
			for i < len(query) {
				if query[i] == '*' && i+1 < len(query) && query[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
		default:
			out = append(out, c)
			i++
		}
	}

	return string(out)
}

func trimTrailingBlanks(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}

	return b
}
