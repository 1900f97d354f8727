package domain

import (
	"fmt"
	"time"
)

// Category is the commercial temperature the model assigned to a lead.
type Category string

const (
	CategoryHot     Category = "hot"
	CategoryCold    Category = "cold"
	CategoryNeutral Category = "neutral"
)

// Categories lists categories in the order leads are persisted.
var Categories = []Category{CategoryHot, CategoryCold, CategoryNeutral}

// IsValid checks if the category is one of the known values.
func (c Category) IsValid() bool {
	return c == CategoryHot || c == CategoryCold || c == CategoryNeutral
}

// ParseCategory normalizes a model-supplied category; anything unknown is neutral.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.IsValid() {
		return c
	}
	return CategoryNeutral
}

// ItemKind distinguishes posts from comments.
type ItemKind string

const (
	KindPost    ItemKind = "post"
	KindComment ItemKind = "comment"
)

// Post is a submission fetched from a subreddit.
type Post struct {
	ID        string `json:"post_id"`
	Title     string `json:"title"`
	Text      string `json:"post_text"`
	URL       string `json:"url"`
	Subreddit string `json:"subreddit"`
}

// Comment is a top-level comment fetched from a post.
type Comment struct {
	ID        string `json:"comment_id"`
	PostID    string `json:"post_id"`
	Text      string `json:"comment_text"`
	Subreddit string `json:"subreddit"`
}

// Verdict is the model's judgement of a single item.
type Verdict struct {
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// Lead is a classified item ready for storage.
type Lead struct {
	ID          int64     `json:"id"`
	ItemID      string    `json:"item_id"`
	Kind        ItemKind  `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Subreddit   string    `json:"subreddit_name"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LeadFilter narrows a lead listing.
type LeadFilter struct {
	Limit     int
	Offset    int
	Category  Category
	Subreddit string
}

// LeadsResponse is returned by the lead listing endpoint.
type LeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type itemInfo struct {
	kind      ItemKind
	title     string
	url       string
	subreddit string
	postID    string
}

// SourceContext remembers where extracted items came from so leads can be
// given a link back to the original thread.
type SourceContext struct {
	items    map[string]itemInfo
	fallback string
}

// NewSourceContext indexes the extracted posts and comments. fallback is the
// subreddit recorded for identifiers the model returns that were never extracted.
func NewSourceContext(posts []Post, comments []Comment, fallback string) *SourceContext {
	sc := &SourceContext{
		items:    make(map[string]itemInfo, len(posts)+len(comments)),
		fallback: fallback,
	}
	for _, p := range posts {
		sc.items[p.ID] = itemInfo{kind: KindPost, title: p.Title, url: p.URL, subreddit: p.Subreddit}
	}
	for _, c := range comments {
		sc.items[c.ID] = itemInfo{kind: KindComment, subreddit: c.Subreddit, postID: c.PostID}
	}
	return sc
}

// BuildLead turns a verdict into a storable lead.
func (sc *SourceContext) BuildLead(itemID string, v Verdict) *Lead {
	lead := &Lead{
		ItemID:      itemID,
		Description: v.Description,
		Category:    ParseCategory(string(v.Category)),
	}

	info, ok := sc.items[itemID]
	if !ok {
		lead.Kind = KindPost
		lead.Title = "Lead from " + itemID
		lead.URL = fmt.Sprintf("https://www.reddit.com/comments/%s", itemID)
		lead.Subreddit = sc.fallback
		return lead
	}

	lead.Kind = info.kind
	lead.Subreddit = info.subreddit
	switch info.kind {
	case KindPost:
		lead.Title = info.title
		lead.URL = info.url
		if lead.URL == "" {
			lead.URL = fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s", info.subreddit, itemID)
		}
	case KindComment:
		lead.Title = "Comment lead from " + itemID
		lead.URL = fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/_/%s", info.subreddit, info.postID, itemID)
	}
	if lead.Title == "" {
		lead.Title = "Lead from " + itemID
	}
	return lead
}
