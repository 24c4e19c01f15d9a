package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Operand is a content stream operand: float64, String, Name, Array, Dict,
// bool or nil.
type Operand interface{}

// Name is a name operand, without the leading slash.
type Name string

// String is a literal or hexadecimal string operand.
type String string

// Array is an array operand.
type Array []Operand

// Dict is a dictionary operand.
type Dict map[string]Operand

// Operation represents a single content stream operation consisting of an
// operator and the operands that precede it.
type Operation struct {
	Operator string    // The operator (e.g., "re", "RG", "q")
	Operands []Operand // The operands
}

// Float returns operand i as a number.
func (op Operation) Float(i int) (float64, bool) {
	if i < 0 || i >= len(op.Operands) {
		return 0, false
	}
	f, ok := op.Operands[i].(float64)
	return f, ok
}

// Floats returns the operands as numbers. It reports false when any operand
// is not a number.
func (op Operation) Floats() ([]float64, bool) {
	out := make([]float64, len(op.Operands))
	for i := range op.Operands {
		f, ok := op.Float(i)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Parser parses PDF content streams into a sequence of operations.
type Parser struct {
	data  []byte
	pos   int
	ops   []Operation
	stack []Operand // operands waiting for their operator
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{
		data: data,
		ops:  make([]Operation, 0),
	}
}

// Parse parses the content stream and returns all operations in order. On
// error it also returns the operations parsed before the error.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return p.ops, err
		}
	}
	return p.ops, nil
}

// parseNext parses the next token, which is either an operand (pushed onto
// the stack) or an operator (which consumes the stack).
func (p *Parser) parseNext() error {
	start := p.pos
	c := p.data[p.pos]

	if isLetter(c) || c == '\'' || c == '"' {
		return p.parseOperator()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at position %d: %w", start, err)
	}
	p.stack = append(p.stack, operand)
	return nil
}

// parseOperator parses an operator and creates an operation with the current
// operand stack, then clears the stack. The keywords true, false and null are
// operands.
func (p *Parser) parseOperator() error {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' || (p.pos > start && c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	operator := string(p.data[start:p.pos])

	switch operator {
	case "true":
		p.stack = append(p.stack, true)
		return nil
	case "false":
		p.stack = append(p.stack, false)
		return nil
	case "null":
		p.stack = append(p.stack, nil)
		return nil
	}

	operation := Operation{
		Operator: operator,
		Operands: make([]Operand, len(p.stack)),
	}
	copy(operation.Operands, p.stack)
	p.stack = p.stack[:0]
	p.ops = append(p.ops, operation)

	if operator == "ID" {
		p.skipInlineImage()
	}
	return nil
}

// skipInlineImage advances past inline image data to the end of its EI
// operator.
func (p *Parser) skipInlineImage() {
	p.pos++ // single whitespace after ID
	for p.pos+1 < len(p.data) {
		if p.data[p.pos] == 'E' && p.data[p.pos+1] == 'I' &&
			(p.pos == 0 || isWhitespace(p.data[p.pos-1])) &&
			(p.pos+2 >= len(p.data) || isWhitespace(p.data[p.pos+2])) {
			p.pos += 2
			p.ops = append(p.ops, Operation{Operator: "EI"})
			return
		}
		p.pos++
	}
	p.pos = len(p.data)
}

// parseOperand parses a single operand.
func (p *Parser) parseOperand() (Operand, error) {
	p.skipWhitespace()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName()
	case c == '[':
		return p.parseArray()
	case isLetter(c):
		// true, false and null inside arrays and dictionaries
		start := p.pos
		for p.pos < len(p.data) && isLetter(p.data[p.pos]) {
			p.pos++
		}
		switch word := string(p.data[start:p.pos]); word {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		default:
			return nil, fmt.Errorf("unexpected keyword %q", word)
		}
	}
	return nil, fmt.Errorf("unexpected character at position %d: %c", p.pos, c)
}

// parseNumber parses an integer or real number operand.
func (p *Parser) parseNumber() (Operand, error) {
	start := p.pos
	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}

	numStr := string(p.data[start:p.pos])
	val, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", numStr)
	}
	return val, nil
}

// parseString parses a literal string (...) with escape sequence handling.
func (p *Parser) parseString() (Operand, error) {
	p.pos++ // skip '('

	var result bytes.Buffer
	depth := 1 // parenthesis nesting

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			p.pos++
			next := p.data[p.pos]
			p.pos++
			switch next {
			case 'n':
				result.WriteByte('\n')
			case 'r':
				result.WriteByte('\r')
			case 't':
				result.WriteByte('\t')
			case 'b':
				result.WriteByte('\b')
			case 'f':
				result.WriteByte('\f')
			case '\r':
				// line continuation
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				// \ddd, 1-3 octal digits
				octal := int(next - '0')
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					d := p.data[p.pos]
					if d < '0' || d > '7' {
						break
					}
					octal = octal*8 + int(d-'0')
					p.pos++
				}
				result.WriteByte(byte(octal & 0xFF))
			default:
				// (, ), \ and unknown escapes keep the character
				result.WriteByte(next)
			}
		case c == '(':
			depth++
			result.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		default:
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unclosed string")
	}
	return String(result.String()), nil
}

// parseHexString parses a hexadecimal string <...>.
func (p *Parser) parseHexString() (Operand, error) {
	p.pos++ // skip '<'

	var digits []byte
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				// odd number of digits: trailing 0
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				out[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
			}
			return String(out), nil
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit: %c", c)
		}
		digits = append(digits, c)
	}
	return nil, fmt.Errorf("unclosed hex string")
}

// parseName parses a name object /Name with # escape handling.
func (p *Parser) parseName() (Operand, error) {
	p.pos++ // skip '/'

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}
	return Name(result.String()), nil
}

// parseArray parses an array [...] of operands.
func (p *Parser) parseArray() (Operand, error) {
	p.pos++ // skip '['

	arr := Array{}
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// parseDict parses a dictionary <<...>>, found in marked content and inline
// image parameters.
func (p *Parser) parseDict() (Operand, error) {
	p.pos += 2 // skip '<<'

	dict := make(Dict)
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name")
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		value, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		dict[string(key.(Name))] = value
	}
}

// skipWhitespace advances past whitespace and comments.
func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		if !isWhitespace(c) {
			return
		}
		p.pos++
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

// isLetter reports whether c is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isDelimiter reports whether c is a PDF delimiter character.
func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

// isHexDigit reports whether c is a hexadecimal digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// hexValue returns the numeric value of a hexadecimal digit.
func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
