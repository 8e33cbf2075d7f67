package fallback

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Rule maps an utterance shape to a reply set. Rules are tried in order.
type Rule struct {
	Name    string
	Match   func(utterance string) bool
	Replies []string
}

// Rules builds the default rule table: question, exclamation, agreement.
func Rules(r Replies) []Rule {
	return []Rule{
		{Name: BranchQuestion, Match: endsWithMark('?'), Replies: r.Question},
		{Name: BranchExclamation, Match: endsWithMark('!'), Replies: r.Exclamation},
		{Name: BranchAgreement, Match: hasAnySuffix(r.AgreementSuffixes), Replies: r.Agreement},
	}
}

// endsWithMark matches when the last rune, folded to narrow width, is mark;
// "？" and "?" both count as a question.
func endsWithMark(mark rune) func(string) bool {
	return func(s string) bool {
		last, size := utf8.DecodeLastRuneInString(s)
		if size == 0 {
			return false
		}
		folded, _ := utf8.DecodeRuneInString(width.Fold.String(string(last)))
		return folded == mark
	}
}

func hasAnySuffix(suffixes []string) func(string) bool {
	return func(s string) bool {
		for _, suf := range suffixes {
			if suf != "" && strings.HasSuffix(s, suf) {
				return true
			}
		}
		return false
	}
}

var emoticon = regexp.MustCompile(`\([^)]+\)`)

// StripEmoticons removes parenthesised runs such as "(;´Д`)".
func StripEmoticons(s string) string {
	return emoticon.ReplaceAllString(s, "")
}
