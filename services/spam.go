package services

import (
	"regexp"
	"strings"
)

// SpamChecker decides whether a submission body looks like spam. The stock
// implementation is heuristic; swap in something smarter without touching
// the pipeline.
type SpamChecker interface {
	// Check returns the name of the heuristic that fired, or "" for clean.
	Check(body string) string
}

// Default keyword list. Case-insensitive substring matches.
var defaultSpamKeywords = []string{
	"viagra", "cialis", "casino", "poker", "lottery", "winner", "bitcoin",
	"crypto", "investment", "loan", "mortgage", "insurance", "diet",
	"weight loss", "make money", "work from home", "click here",
}

var linkPattern = regexp.MustCompile(`https?://`)

// HeuristicSpamChecker flags bodies by keyword, link count, uppercase ratio,
// and repeated character runs. These are deterrents, not guarantees: known
// false positive/negative rates are accepted.
type HeuristicSpamChecker struct {
	Keywords []string
}

// NewHeuristicSpamChecker returns a checker with the default keyword list.
func NewHeuristicSpamChecker() *HeuristicSpamChecker {
	return &HeuristicSpamChecker{Keywords: defaultSpamKeywords}
}

// Check implements SpamChecker.
func (c *HeuristicSpamChecker) Check(body string) string {
	lower := strings.ToLower(body)
	for _, keyword := range c.Keywords {
		if strings.Contains(lower, keyword) {
			return "keyword:" + keyword
		}
	}

	if len(linkPattern.FindAllStringIndex(body, -1)) > 2 {
		return "excessive-links"
	}

	runes := []rune(body)
	if len(runes) > 20 {
		upper := 0
		for _, r := range runes {
			if r >= 'A' && r <= 'Z' {
				upper++
			}
		}
		if float64(upper)/float64(len(runes)) > 0.5 {
			return "excessive-uppercase"
		}
	}

	if longestRun(runes) >= 11 {
		return "repeated-characters"
	}

	return ""
}

// longestRun returns the length of the longest run of one repeated rune.
// Go's regexp has no backreferences, so this is a plain scan.
func longestRun(runes []rune) int {
	longest, run := 0, 0
	var prev rune
	for i, r := range runes {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
