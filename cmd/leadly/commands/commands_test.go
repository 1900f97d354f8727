package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsh-BH/Leadly/internal/domain"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"y\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "sure? "), "input %q", tt.input)
		assert.Equal(t, "sure? ", out.String())
	}
}

func TestPrintVerdicts_GroupsByCategory(t *testing.T) {
	var out bytes.Buffer
	printVerdicts(&out, map[string]domain.Verdict{
		"c1": {Description: "maybe later", Category: domain.CategoryCold},
		"h2": {Description: "needs an editor now", Category: domain.CategoryHot},
		"h1": {Description: "hiring this week", Category: domain.CategoryHot},
	})

	got := out.String()
	hot := strings.Index(got, "HOT (2)")
	cold := strings.Index(got, "COLD (1)")
	require.NotEqual(t, -1, hot)
	require.NotEqual(t, -1, cold)
	assert.Less(t, hot, cold)
	assert.Less(t, strings.Index(got, "h1"), strings.Index(got, "h2"))
	assert.NotContains(t, got, "NEUTRAL")
}

func TestPrintVerdicts_Empty(t *testing.T) {
	var out bytes.Buffer
	printVerdicts(&out, nil)
	assert.Equal(t, "No leads found.\n", out.String())
}

func TestPrintLeads(t *testing.T) {
	var out bytes.Buffer
	printLeads(&out, &domain.LeadsResponse{
		Leads: []*domain.Lead{{
			Kind:        domain.KindPost,
			Description: "Looking for a video editor for a weekly podcast",
			URL:         "https://www.reddit.com/r/forhire/comments/abc",
			Subreddit:   "forhire",
			Category:    domain.CategoryHot,
		}},
		Total:  3,
		Offset: 1,
	})

	got := out.String()
	assert.Contains(t, got, "CATEGORY")
	assert.Contains(t, got, "forhire")
	assert.Contains(t, got, "Showing 2-2 of 3")

	out.Reset()
	printLeads(&out, &domain.LeadsResponse{})
	assert.Equal(t, "No leads stored.\n", out.String())
}

func TestWatchJob_ReportsChangesUntilDone(t *testing.T) {
	job := domain.NewSearchJob("job-1")
	done := make(chan map[string]domain.Verdict, 1)

	go func() {
		job.UpdateStatus(domain.StatusProcessing)
		job.UpdateProgress(40)
		time.Sleep(30 * time.Millisecond)
		job.MarkCompleted()
		done <- map[string]domain.Verdict{"p1": {Description: "d", Category: domain.CategoryHot}}
	}()

	var out bytes.Buffer
	verdicts := watchJob(&out, job, done, 5*time.Millisecond)

	assert.Len(t, verdicts, 1)
	assert.Contains(t, out.String(), "[100%] completed")
	assert.LessOrEqual(t, strings.Count(out.String(), "[100%]"), 1)
}
