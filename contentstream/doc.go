// Package contentstream parses PDF content streams into operations.
//
// A content stream is a sequence of operands followed by the operator that
// consumes them:
//
//	parser := contentstream.NewParser(streamData)
//	ops, err := parser.Parse()
//	for _, op := range ops {
//	    fmt.Printf("Operator: %s, Operands: %v\n", op.Operator, op.Operands)
//	}
//
// # Operand Types
//
// Operands are plain Go values:
//   - Numbers (float64)
//   - Strings (String, raw bytes after escape decoding)
//   - Names (Name, without the leading slash)
//   - Arrays (Array) and dictionaries (Dict)
//   - Booleans (bool) and null (nil)
//
// Inline image data (BI ... ID ... EI) is skipped.
package contentstream
