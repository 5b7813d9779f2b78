package gh

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
	"github.com/rgoodman/github-projects-mcp/internal/domain"
)

// itemFields is the broad selection used by the basic item listing and by
// every client-side filtering helper. It covers the full content union and
// all field value variants so filters can match against any populated value.
const itemFields = `
	id
	type
	createdAt
	updatedAt
	isArchived
	content {
		__typename
		... on Issue {
			id
			title
			body
			number
			url
			issueState: state
			milestone {
				id
				title
			}
		}
		... on PullRequest {
			id
			title
			body
			number
			url
			prState: state
		}
		... on DraftIssue {
			id
			title
			body
		}
	}
	fieldValues(first: 20) {
		nodes {
			__typename
			... on ProjectV2ItemFieldTextValue {
				text
				field {
					... on ProjectV2FieldCommon {
						id
						name
					}
				}
			}
			... on ProjectV2ItemFieldNumberValue {
				number
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
			... on ProjectV2ItemFieldDateValue {
				date
				field {
					... on ProjectV2FieldCommon {
						id
						name
					}
				}
			}
			... on ProjectV2ItemFieldLabelValue {
				labels(first: 20) {
					nodes {
						name
					}
				}
				field {
					... on ProjectV2FieldCommon {
						id
						name
					}
				}
			}
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
			... on ProjectV2ItemFieldIterationValue {
				title
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

type milestoneNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type contentNode struct {
	Typename   string         `json:"__typename"`
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Number     int            `json:"number"`
	URL        string         `json:"url"`
	IssueState string         `json:"issueState"`
	PRState    string         `json:"prState"`
	Milestone  *milestoneNode `json:"milestone"`
}

type fieldValueNode struct {
	Typename string   `json:"__typename"`
	Text     *string  `json:"text"`
	Number   *float64 `json:"number"`
	Name     *string  `json:"name"`
	Date     *string  `json:"date"`
	Title    *string  `json:"title"`
	Labels   *struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Milestone *milestoneNode `json:"milestone"`
	Field     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"field"`
}

type itemNode struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
	IsArchived  bool         `json:"isArchived"`
	Content     *contentNode `json:"content"`
	FieldValues struct {
		Nodes []fieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
}

type itemConnection struct {
	PageInfo pageInfoNode `json:"pageInfo"`
	Nodes    []itemNode   `json:"nodes"`
}

func (n *contentNode) toDomain() *domain.ItemContent {
	content := &domain.ItemContent{
		ID:     n.ID,
		Title:  n.Title,
		Body:   n.Body,
		Number: n.Number,
		URL:    n.URL,
	}
	switch n.Typename {
	case "Issue":
		content.Type = domain.ContentTypeIssue
		content.State = n.IssueState
		if n.Milestone != nil {
			content.Milestone = &domain.Milestone{ID: n.Milestone.ID, Title: n.Milestone.Title}
		}
	case "PullRequest":
		content.Type = domain.ContentTypePullRequest
		content.State = n.PRState
	case "DraftIssue":
		content.Type = domain.ContentTypeDraftIssue
	default:
		// Redacted or unknown content; the item itself still exists.
		return nil
	}
	return content
}

// toDomain converts one field value node into the tagged union form. The
// variant is selected by the value's GraphQL typename, which by construction
// matches the field's declared data type; nodes of unknown type are dropped.
func (n *fieldValueNode) toDomain() (domain.FieldValue, bool) {
	fv := domain.FieldValue{
		Field: domain.FieldRef{ID: n.Field.ID, Name: n.Field.Name},
	}
	switch n.Typename {
	case "ProjectV2ItemFieldTextValue":
		fv.Kind = domain.ValueKindText
		fv.Text = n.Text
	case "ProjectV2ItemFieldNumberValue":
		fv.Kind = domain.ValueKindNumber
		fv.Number = n.Number
	case "ProjectV2ItemFieldSingleSelectValue":
		fv.Kind = domain.ValueKindSingleSelect
		fv.Option = n.Name
	case "ProjectV2ItemFieldDateValue":
		fv.Kind = domain.ValueKindDate
		fv.Date = n.Date
	case "ProjectV2ItemFieldLabelValue":
		fv.Kind = domain.ValueKindLabels
		if n.Labels != nil {
			fv.Labels = make([]string, 0, len(n.Labels.Nodes))
			for _, l := range n.Labels.Nodes {
				fv.Labels = append(fv.Labels, l.Name)
			}
		}
	case "ProjectV2ItemFieldMilestoneValue":
		fv.Kind = domain.ValueKindMilestone
		if n.Milestone != nil {
			fv.Milestone = &domain.Milestone{ID: n.Milestone.ID, Title: n.Milestone.Title}
		}
	case "ProjectV2ItemFieldIterationValue":
		fv.Kind = domain.ValueKindIteration
		fv.Iteration = n.Title
	default:
		return domain.FieldValue{}, false
	}
	return fv, true
}

func (n *itemNode) toDomain() domain.Item {
	item := domain.Item{
		ID:         n.ID,
		Type:       n.Type,
		IsArchived: n.IsArchived,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
	if n.Content != nil {
		item.Content = n.Content.toDomain()
	}
	for i := range n.FieldValues.Nodes {
		if fv, ok := n.FieldValues.Nodes[i].toDomain(); ok {
			item.FieldValues = append(item.FieldValues, fv)
		}
	}
	return item
}

func (conn *itemConnection) toPage() *domain.ItemPage {
	page := &domain.ItemPage{
		Items:    make([]domain.Item, 0, len(conn.Nodes)),
		PageInfo: conn.PageInfo.toDomain(),
	}
	for i := range conn.Nodes {
		page.Items = append(page.Items, conn.Nodes[i].toDomain())
	}
	return page
}

// GetProjectItems fetches one page of a project's items with the broad field
// selection. It never auto-paginates; callers wanting the full item set must
// iterate with the returned cursor.
func (c *Client) GetProjectItems(ctx context.Context, projectID string, first int, after string) (*domain.ItemPage, error) {
	req := graphql.NewRequest(`
		query GetProjectItems($id: ID!, $first: Int!, $after: String) {
			node(id: $id) {
				... on ProjectV2 {
					items(first: $first, after: $after) {
						pageInfo {
							hasNextPage
							endCursor
						}
						nodes {` + itemFields + `}
					}
				}
			}
		}
	`)
	req.Var("id", projectID)
	setPagination(req, first, after)

	var resp struct {
		Node struct {
			Items itemConnection `json:"items"`
		} `json:"node"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Node.Items.toPage(), nil
}

// AddItemToProject adds existing content (an issue or pull request node ID)
// to a project and returns the new item's ID.
func (c *Client) AddItemToProject(ctx context.Context, projectID, contentID string) (string, error) {
	req := graphql.NewRequest(`
		mutation AddProjectItem($projectId: ID!, $contentId: ID!) {
			addProjectV2ItemById(input: {
				projectId: $projectId
				contentId: $contentId
			}) {
				item {
					id
				}
			}
		}
	`)
	req.Var("projectId", projectID)
	req.Var("contentId", contentID)

	var resp struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.AddProjectV2ItemByID.Item.ID, nil
}

// FormatFieldValue shapes an outgoing field value from the input's runtime
// type: strings become the text variant, numbers the number variant, JSON
// objects pass through as-is (for singleSelectOptionId, date, iterationId and
// friends), and anything else is stringified into the text variant. This is a
// heuristic on the input shape, not a lookup against the field's declared
// data type; a mismatched variant is rejected by the remote service.
func FormatFieldValue(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case string:
		return map[string]interface{}{"text": v}
	case float64:
		return map[string]interface{}{"number": v}
	case float32:
		return map[string]interface{}{"number": float64(v)}
	case int:
		return map[string]interface{}{"number": float64(v)}
	case int64:
		return map[string]interface{}{"number": float64(v)}
	case map[string]interface{}:
		return v
	default:
		return map[string]interface{}{"text": fmt.Sprintf("%v", v)}
	}
}

// UpdateItemFieldValue sets one field value on a project item. The value is
// shaped by FormatFieldValue. Returns the updated item's ID.
func (c *Client) UpdateItemFieldValue(ctx context.Context, projectID, itemID, fieldID string, value interface{}) (string, error) {
	req := graphql.NewRequest(`
		mutation UpdateProjectItemField($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: ProjectV2FieldValue!) {
			updateProjectV2ItemFieldValue(input: {
				projectId: $projectId
				itemId: $itemId
				fieldId: $fieldId
				value: $value
			}) {
				projectV2Item {
					id
				}
			}
		}
	`)
	req.Var("projectId", projectID)
	req.Var("itemId", itemID)
	req.Var("fieldId", fieldID)
	req.Var("value", FormatFieldValue(value))

	var resp struct {
		UpdateProjectV2ItemFieldValue struct {
			ProjectV2Item struct {
				ID string `json:"id"`
			} `json:"projectV2Item"`
		} `json:"updateProjectV2ItemFieldValue"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.UpdateProjectV2ItemFieldValue.ProjectV2Item.ID, nil
}

// RemoveItemFromProject removes an item from a project and returns the
// deleted item's ID.
func (c *Client) RemoveItemFromProject(ctx context.Context, projectID, itemID string) (string, error) {
	req := graphql.NewRequest(`
		mutation RemoveProjectItem($projectId: ID!, $itemId: ID!) {
			deleteProjectV2Item(input: {
				projectId: $projectId
				itemId: $itemId
			}) {
				deletedItemId
			}
		}
	`)
	req.Var("projectId", projectID)
	req.Var("itemId", itemID)

	var resp struct {
		DeleteProjectV2Item struct {
			DeletedItemID string `json:"deletedItemId"`
		} `json:"deleteProjectV2Item"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.DeleteProjectV2Item.DeletedItemID, nil
}

// ArchiveItem archives an item in place; the item keeps its membership and
// field values but is hidden from default views.
func (c *Client) ArchiveItem(ctx context.Context, projectID, itemID string) (*domain.ArchivedItem, error) {
	req := graphql.NewRequest(`
		mutation ArchiveProjectItem($projectId: ID!, $itemId: ID!) {
			archiveProjectV2Item(input: {
				projectId: $projectId
				itemId: $itemId
			}) {
				item {
					id
					isArchived
				}
			}
		}
	`)
	req.Var("projectId", projectID)
	req.Var("itemId", itemID)

	var resp struct {
		ArchiveProjectV2Item struct {
			Item struct {
				ID         string `json:"id"`
				IsArchived bool   `json:"isArchived"`
			} `json:"item"`
		} `json:"archiveProjectV2Item"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &domain.ArchivedItem{
		ID:         resp.ArchiveProjectV2Item.Item.ID,
		IsArchived: resp.ArchiveProjectV2Item.Item.IsArchived,
	}, nil
}
