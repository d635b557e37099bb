// Package crossref finds task references in free text such as e-mail
// subjects and bodies.
package crossref

import (
	"regexp"
	"strconv"
)

// taskRefPattern matches "Tarefa 12", "tarefa nº 12", "Task #12" and a
// bare "#12".
var taskRefPattern = regexp.MustCompile(
	`(?i)(?:\b(?:tarefa|task)\s*(?:n[º°o.]*\s*)?#?\s*|#)(\d{1,6})\b`,
)

// ExtractTaskNumbers returns the task numbers referenced in text,
// deduplicated and in order of first occurrence.
func ExtractTaskNumbers(text string) []int {
	matches := taskRefPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var result []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}

// MatchTaskRefs extracts task numbers from a message subject and body.
// If known is non-empty, only numbers present in it are returned.
func MatchTaskRefs(subject, body string, known map[int]bool) []int {
	numbers := ExtractTaskNumbers(subject + "\n" + body)
	if len(known) == 0 {
		return numbers
	}

	var filtered []int
	for _, n := range numbers {
		if known[n] {
			filtered = append(filtered, n)
		}
	}
	return filtered
}
