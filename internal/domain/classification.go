package domain

// ClassificationKind tags the shape of a model answer.
type ClassificationKind string

const (
	// ClassificationStructured means the model returned the JSON lead document.
	ClassificationStructured ClassificationKind = "structured"
	// ClassificationPlainText means the model answered in prose (no leads).
	ClassificationPlainText ClassificationKind = "plain_text"
	// ClassificationError means the model could not be asked or did not answer.
	ClassificationError ClassificationKind = "error"
)

// LeadCandidate is one entry of the model's post_leads / comment_leads arrays.
type LeadCandidate struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Classification is the model answer, disambiguated once at the classifier boundary.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Classification struct {
	Kind ClassificationKind

	// Structured
	PostLeads    []LeadCandidate
	CommentLeads []LeadCandidate

	// PlainText
	Text string

	// Error
	Reason string
}

// Structured builds a structured classification.
func Structured(posts, comments []LeadCandidate) Classification {
	return Classification{Kind: ClassificationStructured, PostLeads: posts, CommentLeads: comments}
}

// PlainText builds a prose classification.
func PlainText(text string) Classification {
	return Classification{Kind: ClassificationPlainText, Text: text}
}

// ClassificationFailure builds an error classification.
func ClassificationFailure(reason string) Classification {
	return Classification{Kind: ClassificationError, Reason: reason}
}
