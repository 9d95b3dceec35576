package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

const tabWidth = 8

// ErrUnbalancedBlock matches every *UnbalancedBlockError via errors.Is.
var ErrUnbalancedBlock = errors.New("unbalanced block")

// UnbalancedBlockError reports a brace-delimited block that never closes.
type UnbalancedBlockError struct {
	// Offset of the opening brace in the scanned text, -1 if none was found.
	Offset int
	// Depth is the number of braces still open at end of input.
	Depth int
}

func (e *UnbalancedBlockError) Error() string {
	if e.Offset < 0 {
		return "unbalanced block: no opening '{'"
	}
	return fmt.Sprintf("unbalanced block: %d unclosed '{' (block opened at offset %d)", e.Depth, e.Offset)
}

func (e *UnbalancedBlockError) Is(target error) bool {
	return target == ErrUnbalancedBlock
}

// BracketedBlock returns the text between the first '{' in text and its
// matching '}', both excluded.
func BracketedBlock(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", &UnbalancedBlockError{Offset: -1}
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start+1 : i], nil
			}
		}
	}
	return "", &UnbalancedBlockError{Offset: start, Depth: depth}
}

// IndentedBlock returns the body of an indentation-delimited block. text
// must start right after the block-opening delimiter (the colon of a python
// header) and openDepth is the indentation depth of the header line.
//
// The body is every following line indented deeper than openDepth, with
// interleaved blank lines kept and trailing blank lines dropped. A body
// written on the header line itself ("def f(): return 1") is returned as is.
func IndentedBlock(text string, openDepth int) string {
	header, rest, found := strings.Cut(text, "\n")
	if inline := strings.TrimSpace(header); inline != "" && !strings.HasPrefix(inline, "#") {
		return inline
	}
	if !found {
		return ""
	}

	lines := strings.Split(rest, "\n")
	last := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentDepth(line) <= openDepth {
			break
		}
		last = i
	}
	return strings.Join(lines[:last+1], "\n")
}

// indentDepth measures leading whitespace. Tabs advance to the next
// multiple of tabWidth.
func indentDepth(line string) int {
	depth := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			depth++
		case '\t':
			depth += tabWidth - depth%tabWidth
		default:
			return depth
		}
	}
	return depth
}

// lineDepth is the indentation of the line containing offset pos.
func lineDepth(code string, pos int) int {
	lineStart := strings.LastIndexByte(code[:pos], '\n') + 1
	return indentDepth(code[lineStart:])
}
