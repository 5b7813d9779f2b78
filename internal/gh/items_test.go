package gh

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoodman/github-projects-mcp/internal/domain"
)

func TestFormatFieldValue(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"text": "hello"}, FormatFieldValue("hello"))
	assert.Equal(t, map[string]interface{}{"number": 42.0}, FormatFieldValue(42.0))
	assert.Equal(t, map[string]interface{}{"number": 42.0}, FormatFieldValue(42))

	// Structured values pass through unchanged.
	structured := map[string]interface{}{"singleSelectOptionId": "OPT_1"}
	assert.Equal(t, structured, FormatFieldValue(structured))

	// Anything else is stringified into the text variant.
	assert.Equal(t, map[string]interface{}{"text": "true"}, FormatFieldValue(true))
	assert.Equal(t, map[string]interface{}{"text": "[1 2]"}, FormatFieldValue([]int{1, 2}))
}

func TestGetProjectItems_DecodesUnions(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		graphQLData(w, twoItemPage())
	})

	page, err := client.GetProjectItems(context.Background(), "PVT_1", 50, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	issue := page.Items[0]
	assert.Equal(t, "ITEM_1", issue.ID)
	assert.Equal(t, "ISSUE", issue.Type)
	require.NotNil(t, issue.Content)
	assert.Equal(t, domain.ContentTypeIssue, issue.Content.Type)
	assert.Equal(t, "OPEN", issue.Content.State)
	assert.Equal(t, 42, issue.Content.Number)
	require.NotNil(t, issue.Content.Milestone)
	assert.Equal(t, "MVP", issue.Content.Milestone.Title)
	require.Len(t, issue.FieldValues, 1)
	assert.Equal(t, domain.ValueKindSingleSelect, issue.FieldValues[0].Kind)
	require.NotNil(t, issue.FieldValues[0].Option)
	assert.Equal(t, "In Progress", *issue.FieldValues[0].Option)

	draft := page.Items[1]
	require.NotNil(t, draft.Content)
	assert.Equal(t, domain.ContentTypeDraftIssue, draft.Content.Type)
	require.Len(t, draft.FieldValues, 3)
	assert.Equal(t, domain.ValueKindText, draft.FieldValues[0].Kind)
	assert.Equal(t, domain.ValueKindMilestone, draft.FieldValues[1].Kind)
	assert.Equal(t, domain.ValueKindNumber, draft.FieldValues[2].Kind)
	require.NotNil(t, draft.FieldValues[2].Number)
	assert.Equal(t, 5.0, *draft.FieldValues[2].Number)
}

func TestGetProjectItems_DropsUnknownValueVariants(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		graphQLData(w, map[string]interface{}{
			"node": map[string]interface{}{
				"items": map[string]interface{}{
					"pageInfo": map[string]interface{}{"hasNextPage": false, "endCursor": ""},
					"nodes": []interface{}{
						map[string]interface{}{
							"id":   "ITEM_1",
							"type": "ISSUE",
							"fieldValues": map[string]interface{}{
								"nodes": []interface{}{
									// Empty object: connections return these
									// for variants outside the selection.
									map[string]interface{}{},
									map[string]interface{}{
										"__typename": "ProjectV2ItemFieldTextValue",
										"text":       "kept",
										"field":      map[string]interface{}{"id": "F_1", "name": "Notes"},
									},
								},
							},
						},
					},
				},
			},
		})
	})

	page, err := client.GetProjectItems(context.Background(), "PVT_1", 50, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Len(t, page.Items[0].FieldValues, 1)
	assert.Equal(t, domain.ValueKindText, page.Items[0].FieldValues[0].Kind)
}

func TestAddItemToProject(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Contains(t, req.Query, "addProjectV2ItemById")
		assert.Equal(t, "PVT_1", req.Variables["projectId"])
		assert.Equal(t, "I_9", req.Variables["contentId"])
		graphQLData(w, map[string]interface{}{
			"addProjectV2ItemById": map[string]interface{}{
				"item": map[string]interface{}{"id": "ITEM_9"},
			},
		})
	})

	itemID, err := client.AddItemToProject(context.Background(), "PVT_1", "I_9")
	require.NoError(t, err)
	assert.Equal(t, "ITEM_9", itemID)
}

func TestUpdateItemFieldValue_ShapesValue(t *testing.T) {
	var sentValue interface{}
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		sentValue = req.Variables["value"]
		graphQLData(w, map[string]interface{}{
			"updateProjectV2ItemFieldValue": map[string]interface{}{
				"projectV2Item": map[string]interface{}{"id": "ITEM_1"},
			},
		})
	})
	ctx := context.Background()

	_, err := client.UpdateItemFieldValue(ctx, "PVT_1", "ITEM_1", "F_1", "new text")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"text": "new text"}, sentValue)

	_, err = client.UpdateItemFieldValue(ctx, "PVT_1", "ITEM_1", "F_1", 8.0)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"number": 8.0}, sentValue)

	_, err = client.UpdateItemFieldValue(ctx, "PVT_1", "ITEM_1", "F_1",
		map[string]interface{}{"iterationId": "IT_1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"iterationId": "IT_1"}, sentValue)
}

func TestRemoveItemFromProject(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		graphQLData(w, map[string]interface{}{
			"deleteProjectV2Item": map[string]interface{}{"deletedItemId": "ITEM_1"},
		})
	})

	deletedID, err := client.RemoveItemFromProject(context.Background(), "PVT_1", "ITEM_1")
	require.NoError(t, err)
	assert.Equal(t, "ITEM_1", deletedID)
}

func TestArchiveItem(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		graphQLData(w, map[string]interface{}{
			"archiveProjectV2Item": map[string]interface{}{
				"item": map[string]interface{}{"id": "ITEM_1", "isArchived": true},
			},
		})
	})

	archived, err := client.ArchiveItem(context.Background(), "PVT_1", "ITEM_1")
	require.NoError(t, err)
	assert.Equal(t, "ITEM_1", archived.ID)
	assert.True(t, archived.IsArchived)
}
