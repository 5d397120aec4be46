package stub

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/ragchat/pkg/storage"
)

// composeAnswer builds the echo answer for question. It names every uploaded
// document so uploads are observable from the chat.
func composeAnswer(question string, docs []*storage.Document) string {
	question = strings.Join(strings.Fields(question), " ")

	var b strings.Builder
	fmt.Fprintf(&b, "You asked: %q.", question)

	if len(docs) == 0 {
		b.WriteString(" No documents have been uploaded yet.")
		return b.String()
	}

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	fmt.Fprintf(&b, " Documents on file: %s.", strings.Join(names, ", "))
	return b.String()
}

// tokenize splits an answer into word tokens that keep their trailing space,
// so concatenating the tokens gives back the answer.
func tokenize(answer string) []string {
	parts := strings.SplitAfter(answer, " ")

	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
