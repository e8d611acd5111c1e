package domain

import (
	"strings"
	"unicode/utf8"
)

// SummaryMaxRunes bounds the ticket summary field.
const SummaryMaxRunes = 100

// IssueRecord holds the client's description and the generated follow-up questions.
type IssueRecord struct {
	InitialDescription string   `json:"initial_description"`
	FollowupQuestions  []string `json:"followup_questions"`
}

// FollowupAnswer pairs one question with the response given at the same ordinal.
type FollowupAnswer struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// TicketReference is the PSA ticket filed for a workflow.
type TicketReference struct {
	TicketID string `json:"ticket_id"`
}

// PairResponses matches responses to questions by 1-based ordinal.
// A missing response becomes an empty answer; responses without a question are ignored.
func (r IssueRecord) PairResponses(responses map[int]string) []FollowupAnswer {
	pairs := make([]FollowupAnswer, 0, len(r.FollowupQuestions))
	for i, q := range r.FollowupQuestions {
		pairs = append(pairs, FollowupAnswer{
			Index:    i + 1,
			Question: q,
			Answer:   responses[i+1],
		})
	}
	return pairs
}

// Summary is the first SummaryMaxRunes runes of the description, cut without regard to words.
func (r IssueRecord) Summary() string {
	desc := r.InitialDescription
	if utf8.RuneCountInString(desc) <= SummaryMaxRunes {
		return desc
	}
	return string([]rune(desc)[:SummaryMaxRunes])
}

// TicketDescription renders the original text followed by the follow-up transcript.
func (r IssueRecord) TicketDescription(answers []FollowupAnswer) string {
	lines := make([]string, 0, len(answers))
	for _, a := range answers {
		lines = append(lines, a.Question+"\nA: "+a.Answer)
	}

	var b strings.Builder
	b.WriteString("Client Description:\n")
	b.WriteString(r.InitialDescription)
	b.WriteString("\n\nFollow-Up Responses:\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
