package gh

import (
	"context"

	"github.com/machinebox/graphql"
	"github.com/rgoodman/github-projects-mcp/internal/domain"
)

// GetProjectFields fetches a project's field definitions, including options
// for SINGLE_SELECT fields and configured iterations for ITERATION fields.
// Options come back in their configured order from GitHub.
func (c *Client) GetProjectFields(ctx context.Context, projectID string) ([]domain.Field, error) {
	req := graphql.NewRequest(`
		query GetProjectFields($id: ID!) {
			node(id: $id) {
				... on ProjectV2 {
					fields(first: 50) {
						nodes {
							... on ProjectV2Field {
								id
								name
								dataType
							}
							... on ProjectV2SingleSelectField {
								id
								name
								dataType
								options {
									id
									name
								}
							}
							... on ProjectV2IterationField {
								id
								name
								dataType
								configuration {
									iterations {
										id
										title
									}
								}
							}
						}
					}
				}
			}
		}
	`)
	req.Var("id", projectID)

	var resp struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					ID       string `json:"id"`
					Name     string `json:"name"`
					DataType string `json:"dataType"`
					Options  []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"options"`
					Configuration *struct {
						Iterations []struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"iterations"`
					} `json:"configuration"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}

	fields := make([]domain.Field, 0, len(resp.Node.Fields.Nodes))
	for _, node := range resp.Node.Fields.Nodes {
		field := domain.Field{
			ID:       node.ID,
			Name:     node.Name,
			DataType: node.DataType,
		}
		if node.DataType == domain.FieldTypeSingleSelect && len(node.Options) > 0 {
			field.Options = make([]domain.Option, 0, len(node.Options))
			for _, opt := range node.Options {
				field.Options = append(field.Options, domain.Option{ID: opt.ID, Name: opt.Name})
			}
		}
		if node.Configuration != nil {
			field.Iterations = make([]domain.Iteration, 0, len(node.Configuration.Iterations))
			for _, it := range node.Configuration.Iterations {
				field.Iterations = append(field.Iterations, domain.Iteration{ID: it.ID, Title: it.Title})
			}
		}
		fields = append(fields, field)
	}

	return fields, nil
}
