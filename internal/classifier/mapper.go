package classifier

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Harsh-BH/Leadly/internal/domain"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*\\})\\s*```")

// Interpret decides once what shape the raw model text has.
// A fenced json block or a leading brace is structured output; anything else is prose.
// Structured output that fails to parse yields no candidates.
func Interpret(raw string) domain.Classification {
	var doc string
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		doc = m[1]
	} else if trimmed := strings.TrimSpace(raw); strings.HasPrefix(trimmed, "{") {
		doc = trimmed
	} else {
		return domain.PlainText(strings.TrimSpace(raw))
	}

	if !gjson.Valid(doc) {
		return domain.Structured(nil, nil)
	}
	parsed := gjson.Parse(doc)
	if !parsed.IsObject() {
		return domain.Structured(nil, nil)
	}
	return domain.Structured(
		candidates(parsed.Get("post_leads")),
		candidates(parsed.Get("comment_leads")),
	)
}

func candidates(list gjson.Result) []domain.LeadCandidate {
	if !list.IsArray() {
		return nil
	}
	var out []domain.LeadCandidate
	list.ForEach(func(_, entry gjson.Result) bool {
		id := entry.Get("id")
		desc := entry.Get("description")
		if !id.Exists() || !desc.Exists() {
			return true
		}
		out = append(out, domain.LeadCandidate{
			ID:          id.String(),
			Description: desc.String(),
			Category:    entry.Get("category").String(),
		})
		return true
	})
	return out
}

// MapLeads turns a classification into item id -> verdict. It never fails:
// prose and error classifications map to an empty result and unknown
// categories become neutral. Entries without an id are dropped; an empty
// description is kept.
func MapLeads(c domain.Classification) map[string]domain.Verdict {
	out := make(map[string]domain.Verdict)
	if c.Kind != domain.ClassificationStructured {
		return out
	}
	for _, group := range [][]domain.LeadCandidate{c.PostLeads, c.CommentLeads} {
		for _, cand := range group {
			if cand.ID == "" {
				continue
			}
			out[cand.ID] = domain.Verdict{
				Description: cand.Description,
				Category:    domain.ParseCategory(strings.ToLower(strings.TrimSpace(cand.Category))),
			}
		}
	}
	return out
}
