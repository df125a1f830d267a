package cache

import (
	"fmt"
	"strings"
)

const keyPrefix = "grading"

// globEscaper escapes the characters Redis SCAN MATCH treats as pattern syntax
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// TranscriptKey is the key of one student's transcript for one academic year
func TranscriptKey(studentID, academicYear string) string {
	return fmt.Sprintf("%s:transcript:%s:%s", keyPrefix, studentID, academicYear)
}

// StudentTranscriptsPattern matches every cached transcript of studentID and
// nothing else, whatever characters the id contains
func StudentTranscriptsPattern(studentID string) string {
	return fmt.Sprintf("%s:transcript:%s:*", keyPrefix, globEscaper.Replace(studentID))
}
