package gh

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoodman/github-projects-mcp/internal/domain"
)

func orgProjectsData() map[string]interface{} {
	return map[string]interface{}{
		"organization": map[string]interface{}{
			"projectsV2": map[string]interface{}{
				"pageInfo": map[string]interface{}{"hasNextPage": true, "endCursor": "P_CUR"},
				"nodes": []interface{}{
					map[string]interface{}{
						"id":               "PVT_1",
						"title":            "Roadmap",
						"shortDescription": "Q3 planning",
						"public":           true,
						"closed":           false,
						"number":           7,
						"url":              "https://github.com/orgs/acme/projects/7",
						"owner": map[string]interface{}{
							"__typename": "Organization",
							"login":      "acme",
						},
					},
				},
			},
		},
	}
}

func TestGetOrganizationProjects(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "acme", req.Variables["login"])
		graphQLData(w, orgProjectsData())
	})

	page, err := client.GetOrganizationProjects(context.Background(), "acme", 20, "")
	require.NoError(t, err)

	require.Len(t, page.Projects, 1)
	project := page.Projects[0]
	assert.Equal(t, "PVT_1", project.ID)
	assert.Equal(t, "Roadmap", project.Title)
	assert.Equal(t, 7, project.Number)
	require.NotNil(t, project.Owner)
	assert.Equal(t, "acme", project.Owner.Login)
	assert.Equal(t, "Organization", project.Owner.Type)
	assert.True(t, page.PageInfo.HasNextPage)
	assert.Equal(t, "P_CUR", page.PageInfo.EndCursor)
}

func TestGetProject_NotFound(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		graphQLData(w, map[string]interface{}{"node": nil})
	})

	_, err := client.GetProject(context.Background(), "PVT_missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "not found")
}

func TestCreateProject(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Equal(t, "O_1", req.Variables["ownerId"])
		assert.Equal(t, "New Board", req.Variables["title"])
		assert.Nil(t, req.Variables["description"])
		graphQLData(w, map[string]interface{}{
			"createProjectV2": map[string]interface{}{
				"projectV2": map[string]interface{}{
					"id":    "PVT_new",
					"title": "New Board",
				},
			},
		})
	})

	project, err := client.CreateProject(context.Background(), "O_1", "New Board", "")
	require.NoError(t, err)
	assert.Equal(t, "PVT_new", project.ID)
}

func TestUpdateProject_OnlySetFields(t *testing.T) {
	var vars map[string]interface{}
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		vars = decodeRequest(t, r).Variables
		graphQLData(w, map[string]interface{}{
			"updateProjectV2": map[string]interface{}{
				"projectV2": map[string]interface{}{
					"id":    "PVT_1",
					"title": "Renamed",
				},
			},
		})
	})

	title := "Renamed"
	public := false
	project, err := client.UpdateProject(context.Background(), "PVT_1", domain.ProjectUpdate{
		Title:  &title,
		Public: &public,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", project.Title)
	assert.Equal(t, "Renamed", vars["title"])
	assert.Equal(t, false, vars["public"])
	assert.Nil(t, vars["readme"])
	assert.Nil(t, vars["description"])
}

func TestDeleteProject(t *testing.T) {
	client := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		assert.Contains(t, req.Query, "deleteProjectV2")
		graphQLData(w, map[string]interface{}{
			"deleteProjectV2": map[string]interface{}{
				"projectV2": map[string]interface{}{"id": "PVT_1"},
			},
		})
	})

	deletedID, err := client.DeleteProject(context.Background(), "PVT_1")
	require.NoError(t, err)
	assert.Equal(t, "PVT_1", deletedID)
}
