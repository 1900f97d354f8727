package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh-BH/Leadly/internal/domain"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantKind     domain.ClassificationKind
		wantPosts    int
		wantComments int
	}{
		{
			name:         "bare json",
			raw:          `{"post_leads":[{"id":"p1","description":"hiring","category":"hot"}],"comment_leads":[]}`,
			wantKind:     domain.ClassificationStructured,
			wantPosts:    1,
			wantComments: 0,
		},
		{
			name:         "fenced json with surrounding text",
			raw:          "Here you go:\n```json\n{\"post_leads\":[],\"comment_leads\":[{\"id\":\"c1\",\"description\":\"pain\"}]}\n```",
			wantKind:     domain.ClassificationStructured,
			wantComments: 1,
		},
		{
			name:     "prose",
			raw:      "I couldn't find any direct leads. Try r/forhire.",
			wantKind: domain.ClassificationPlainText,
		},
		{
			name:     "broken json",
			raw:      `{"post_leads": [`,
			wantKind: domain.ClassificationStructured,
		},
		{
			name:      "entries missing fields are dropped",
			raw:       `{"post_leads":[{"id":"p1"},{"description":"no id"},{"id":"p2","description":"ok"}]}`,
			wantKind:  domain.ClassificationStructured,
			wantPosts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.raw)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Len(t, got.PostLeads, tt.wantPosts)
			assert.Len(t, got.CommentLeads, tt.wantComments)
		})
	}
}

func TestInterpret_PlainTextKeepsMessage(t *testing.T) {
	got := Interpret("  No leads this time.  ")
	assert.Equal(t, "No leads this time.", got.Text)
}

func TestMapLeads_Structured(t *testing.T) {
	c := domain.Structured(
		[]domain.LeadCandidate{
			{ID: "p1", Description: "wants to hire", Category: "hot"},
			{ID: "p2", Description: "maybe", Category: "lukewarm"},
			{ID: "", Description: "no id"},
		},
		[]domain.LeadCandidate{
			{ID: "c1", Description: "complains", Category: " COLD "},
			{ID: "c2", Description: ""},
		},
	)

	got := MapLeads(c)
	require.Len(t, got, 4)
	assert.Equal(t, domain.Verdict{Description: "wants to hire", Category: domain.CategoryHot}, got["p1"])
	assert.Equal(t, domain.CategoryNeutral, got["p2"].Category)
	assert.Equal(t, domain.CategoryCold, got["c1"].Category)
	assert.Equal(t, domain.Verdict{Category: domain.CategoryNeutral}, got["c2"])
}

func TestMapLeads_KeepsEmptyDescriptionFromModelText(t *testing.T) {
	raw := `{"post_leads":[{"id":"p1","description":"","category":"hot"},{"id":"p2","category":"hot"}],"comment_leads":[]}`

	got := MapLeads(Interpret(raw))
	assert.Equal(t, map[string]domain.Verdict{
		"p1": {Description: "", Category: domain.CategoryHot},
	}, got)
}

func TestMapLeads_NonStructuredIsEmpty(t *testing.T) {
	assert.Empty(t, MapLeads(domain.PlainText("nothing here")))
	assert.Empty(t, MapLeads(domain.ClassificationFailure("boom")))
	assert.NotNil(t, MapLeads(domain.Classification{}))
}

func TestMapLeads_RoundTripFromModelText(t *testing.T) {
	raw := "```json\n{\"post_leads\":[{\"id\":\"p1\",\"description\":\"d1\",\"category\":\"hot\"}],\"comment_leads\":[{\"id\":\"c1\",\"description\":\"d2\",\"category\":\"cold\"}]}\n```"

	got := MapLeads(Interpret(raw))
	assert.Equal(t, map[string]domain.Verdict{
		"p1": {Description: "d1", Category: domain.CategoryHot},
		"c1": {Description: "d2", Category: domain.CategoryCold},
	}, got)
}
