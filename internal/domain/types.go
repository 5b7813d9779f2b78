// Package domain defines the normalized domain types for GitHub Projects v2.
// These types are thin projections of the GitHub GraphQL schema; every
// identifier is assigned remotely and treated as an opaque string.
package domain

// Owner is the project owner reference (organization or user).
type Owner struct {
	Login string `json:"login"`
	Type  string `json:"type,omitempty"` // "Organization" or "User"
}

// Project represents a GitHub Project v2 instance.
type Project struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription,omitempty"`
	Readme           string `json:"readme,omitempty"`
	Public           bool   `json:"public"`
	Closed           bool   `json:"closed"`
	CreatedAt        string `json:"createdAt,omitempty"`
	UpdatedAt        string `json:"updatedAt,omitempty"`
	Number           int    `json:"number"`
	URL              string `json:"url,omitempty"`
	Owner            *Owner `json:"owner,omitempty"`
}

// ProjectUpdate holds the optional fields of an update-project mutation.
// Nil fields are left untouched on the remote project.
type ProjectUpdate struct {
	Title            *string `json:"title,omitempty"`
	ShortDescription *string `json:"shortDescription,omitempty"`
	Readme           *string `json:"readme,omitempty"`
	Public           *bool   `json:"public,omitempty"`
}

// Milestone is a milestone reference attached to issue content or to a
// milestone-typed field value.
type Milestone struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ItemContent is the content union of a project item: an Issue, a
// PullRequest, or a DraftIssue. Type carries the union tag.
type ItemContent struct {
	Type      string     `json:"type"` // "Issue", "PullRequest", "DraftIssue"
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Number    int        `json:"number,omitempty"`
	URL       string     `json:"url,omitempty"`
	State     string     `json:"state,omitempty"`
	Milestone *Milestone `json:"milestone,omitempty"`
}

// FieldRef identifies the field a value belongs to.
type FieldRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FieldValue is a tagged union keyed by Kind. Exactly one variant is
// populated, matching the field's declared data type; values whose shape does
// not match a known variant are omitted at decode time.
type FieldValue struct {
	Field     FieldRef   `json:"field"`
	Kind      string     `json:"kind"`
	Text      *string    `json:"text,omitempty"`
	Number    *float64   `json:"number,omitempty"`
	Date      *string    `json:"date,omitempty"`
	Option    *string    `json:"option,omitempty"`
	Labels    []string   `json:"labels,omitempty"`
	Milestone *Milestone `json:"milestone,omitempty"`
	Iteration *string    `json:"iteration,omitempty"`
}

// Item represents a project item with its content and field values.
type Item struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"` // ISSUE, PULL_REQUEST, DRAFT_ISSUE, REDACTED
	IsArchived  bool         `json:"isArchived"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
	Content     *ItemContent `json:"content,omitempty"`
	FieldValues []FieldValue `json:"fieldValues,omitempty"`
}

// Option is one allowed value of a SINGLE_SELECT field.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Iteration is one configured iteration of an ITERATION field.
type Iteration struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Field represents a project field definition.
type Field struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	DataType   string      `json:"dataType"`
	Options    []Option    `json:"options,omitempty"`    // SINGLE_SELECT only
	Iterations []Iteration `json:"iterations,omitempty"` // ITERATION only
}

// PageInfo is the cursor-based pagination state of a listing. EndCursor is an
// opaque continuation token; HasNextPage reports whether the listing is
// incomplete. Listings never auto-paginate: exhaustive retrieval is the
// caller's responsibility.
type PageInfo struct {
	EndCursor   string `json:"endCursor,omitempty"`
	HasNextPage bool   `json:"hasNextPage"`
}

// ProjectPage is one page of a project listing.
type ProjectPage struct {
	Projects []Project `json:"projects"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// ItemPage is one page of a project item listing.
type ItemPage struct {
	Items    []Item   `json:"items"`
	PageInfo PageInfo `json:"pageInfo"`
}

// FilteredItemPage is the result of a client-side filtering helper: the
// matching subset of a single fetched page. PageInfo describes the fetched
// page, not the filtered subset, so callers can keep iterating.
type FilteredItemPage struct {
	Items      []Item   `json:"items"`
	PageInfo   PageInfo `json:"pageInfo"`
	MatchCount int      `json:"matchCount"`
}

// ArchivedItem is the result of an archive-item mutation.
type ArchivedItem struct {
	ID         string `json:"id"`
	IsArchived bool   `json:"isArchived"`
}

// FieldType constants for the field data types exposed by the API.
const (
	FieldTypeText         = "TEXT"
	FieldTypeNumber       = "NUMBER"
	FieldTypeDate         = "DATE"
	FieldTypeSingleSelect = "SINGLE_SELECT"
	FieldTypeIteration    = "ITERATION"
	FieldTypeMilestone    = "MILESTONE"
	FieldTypeLabels       = "LABELS"
)

// FieldValue kind tags.
const (
	ValueKindText         = "text"
	ValueKindNumber       = "number"
	ValueKindDate         = "date"
	ValueKindSingleSelect = "single_select"
	ValueKindLabels       = "labels"
	ValueKindMilestone    = "milestone"
	ValueKindIteration    = "iteration"
)

// ContentType constants for the item content union.
const (
	ContentTypeIssue       = "Issue"
	ContentTypePullRequest = "PullRequest"
	ContentTypeDraftIssue  = "DraftIssue"
)
