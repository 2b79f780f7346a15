package util

import (
	"strconv"
	"strings"
)

// FindLineRange finds the 1-based start and end lines of the first occurrence
// of needle in content. ok is false when needle is empty or absent.
func FindLineRange(content, needle string) (start, end int, ok bool) {
	if needle == "" {
		return 0, 0, false
	}
	idx := strings.Index(content, needle)
	if idx < 0 {
		return 0, 0, false
	}
	start = strings.Count(content[:idx], "\n") + 1
	end = start + strings.Count(needle, "\n")
	return start, end, true
}

// ExtractSnippet returns up to maxLines lines centred on [start,end], each
// prefixed with its line number. It returns "" when start is past the end.
func ExtractSnippet(content string, start, end, maxLines int) string {
	if maxLines <= 0 {
		maxLines = 8
	}
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	if start > len(lines) {
		return ""
	}
	s := max(0, start-1-maxLines/2)
	e := min(len(lines)-1, end-1+maxLines/2)

	var b strings.Builder
	for i := s; i <= e; i++ {
		marker := "  "
		if i >= start-1 && i <= end-1 {
			marker = "> "
		}
		b.WriteString(marker)
		b.WriteString(padLeft(i+1, len(strconv.Itoa(e+1))))
		b.WriteString(" | ")
		b.WriteString(lines[i])
		if i < e {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func padLeft(n, width int) string {
	s := strconv.Itoa(n)
	return strings.Repeat(" ", max(0, width-len(s))) + s
}
