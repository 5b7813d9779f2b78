package gh

import (
	"context"
	"sort"
	"strings"

	"github.com/machinebox/graphql"
)

// forbiddenKeywords are rejected anywhere in a caller-supplied operation:
// the mutation and subscription operation keywords plus the two schema
// introspection sentinels. The scan is a textual denylist, not a parser-level
// guarantee; it exists to block all non-query operations and introspection.
var forbiddenKeywords = []string{"mutation", "subscription", "__schema", "__type"}

// validateReadOnlyQuery scans an operation case-insensitively for forbidden
// keywords and returns a *ValidationError naming the first one found.
func validateReadOnlyQuery(query string) error {
	lower := strings.ToLower(query)
	for _, keyword := range forbiddenKeywords {
		if strings.Contains(lower, keyword) {
			return &ValidationError{Message: "query contains forbidden keyword: " + keyword}
		}
	}
	return nil
}

// ExecuteCustomQuery runs an arbitrary read-only GraphQL query after passing
// it through the keyword denylist. Forbidden operations fail before any
// network call is made. The decoded response is returned as generic JSON
// since the caller controls its shape.
func (c *Client) ExecuteCustomQuery(ctx context.Context, query string, variables map[string]interface{}) (map[string]interface{}, error) {
	if err := validateReadOnlyQuery(query); err != nil {
		return nil, err
	}

	req := graphql.NewRequest(query)
	for name, value := range variables {
		req.Var(name, value)
	}

	var resp map[string]interface{}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// defaultItemFields is the minimal selection used by the advanced listing
// when the caller supplies no replacement fragment.
const defaultItemFields = `
	id
	type
	createdAt
	updatedAt
	isArchived
	content {
		... on Issue {
			id
			title
			number
			url
			issueState: state
		}
	}
	fieldValues(first: 10) {
		nodes {
			... on ProjectV2ItemFieldMilestoneValue {
				milestone {
					id
					title
				}
				field {
					... on ProjectV2FieldCommon {
						id
						name
					}
				}
			}
			... on ProjectV2ItemFieldSingleSelectValue {
				name
				field {
					... on ProjectV2FieldCommon {
						id
						name
					}
				}
			}
		}
	}
`

// ItemsQuery customizes the advanced item listing. All fragments are held as
// data and composed into the final document by Build; they are spliced as raw
// text, so composed documents still pass the read-only denylist before
// execution.
type ItemsQuery struct {
	// Fields replaces the default node selection when non-empty.
	Fields string
	// Filter is appended verbatim to the items() arguments, e.g.
	// `orderBy: {field: POSITION, direction: DESC}`.
	Filter string
	// Variables declares extra operation parameters. The GraphQL type of
	// each is inferred from the value's runtime shape: string, integer, or
	// boolean.
	Variables map[string]interface{}
}

// Customized reports whether the caller changed anything from the default
// listing. Only customized queries fall back on failure.
func (q ItemsQuery) Customized() bool {
	return q.Fields != "" || q.Filter != "" || len(q.Variables) > 0
}

// declaredType infers the GraphQL declaration for an extra variable from its
// runtime shape.
func declaredType(value interface{}) string {
	switch value.(type) {
	case string:
		return "String"
	case bool:
		return "Boolean"
	case int, int64, float64:
		return "Int"
	default:
		return "String"
	}
}

// Build composes the final operation document: parameter declarations, the
// outer ProjectV2 selection, the filter fragment appended to the pagination
// arguments, and the given or default field fragment.
func (q ItemsQuery) Build() string {
	var b strings.Builder
	b.WriteString("query GetProjectItemsAdvanced($id: ID!, $first: Int!, $after: String")

	// Deterministic declaration order regardless of map iteration.
	names := make([]string, 0, len(q.Variables))
	for name := range q.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(", $")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(declaredType(q.Variables[name]))
	}
	b.WriteString(") {\n")

	b.WriteString("  node(id: $id) {\n")
	b.WriteString("    ... on ProjectV2 {\n")
	if q.Filter != "" {
		b.WriteString("      items(first: $first, after: $after, " + q.Filter + ") {\n")
	} else {
		b.WriteString("      items(first: $first, after: $after) {\n")
	}
	b.WriteString("        pageInfo {\n          hasNextPage\n          endCursor\n        }\n")
	b.WriteString("        nodes {\n")
	if q.Fields != "" {
		b.WriteString(q.Fields)
	} else {
		b.WriteString(defaultItemFields)
	}
	b.WriteString("\n        }\n      }\n    }\n  }\n}\n")

	return b.String()
}

// GetProjectItemsAdvanced fetches one page of project items using a
// caller-customized document. If the customized document fails for any
// reason, the default listing document is retried in its place; failures of
// the plain default path propagate normally. The result is generic JSON (the
// items connection) because a replacement field fragment changes its shape.
func (c *Client) GetProjectItemsAdvanced(ctx context.Context, projectID string, first int, after string, q ItemsQuery) (map[string]interface{}, error) {
	base := map[string]interface{}{
		"id":    projectID,
		"first": clampPageSize(first),
	}
	if after != "" {
		base["after"] = after
	}

	variables := make(map[string]interface{}, len(base)+len(q.Variables))
	for name, value := range base {
		variables[name] = value
	}
	for name, value := range q.Variables {
		variables[name] = value
	}

	result, err := c.ExecuteCustomQuery(ctx, q.Build(), variables)
	if err != nil {
		if !q.Customized() {
			return nil, err
		}
		c.log.Warn().Err(err).Msg("customized item query failed, falling back to default listing")
		result, err = c.ExecuteCustomQuery(ctx, ItemsQuery{}.Build(), base)
		if err != nil {
			return nil, err
		}
	}

	node, ok := result["node"].(map[string]interface{})
	if !ok {
		return nil, &APIError{Message: "project not found: " + projectID}
	}
	items, ok := node["items"].(map[string]interface{})
	if !ok {
		return nil, &APIError{Message: "unexpected response shape for project items"}
	}
	return items, nil
}
