package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/rgoodman/github-projects-mcp/internal/domain"
	"github.com/rgoodman/github-projects-mcp/internal/gh"
)

// Default page sizes when a caller omits `first`.
const (
	defaultProjectPageSize = 20
	defaultItemPageSize    = 50
)

// handler owns the tool implementations. Every handler validates or clamps
// its simple parameters, delegates to the API, and normalizes failures into
// tool error results; nothing below this layer reaches the caller raw.
type handler struct {
	api ProjectsAPI
	log zerolog.Logger
}

// jsonResult marshals a successful payload into a text tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failure converts a classified client error (or anything unexpected) into a
// caller-facing tool error carrying the failure class and remote detail.
func (h *handler) failure(tool string, err error) *mcp.CallToolResult {
	h.log.Warn().Err(err).Str("tool", tool).Msg("tool call failed")

	var rateLimitErr *gh.RateLimitError
	var apiErr *gh.APIError
	var validationErr *gh.ValidationError
	if errors.As(err, &rateLimitErr) || errors.As(err, &apiErr) || errors.As(err, &validationErr) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError("unexpected error: " + err.Error())
}

// pageArgs extracts and clamps the shared pagination parameters.
func pageArgs(request mcp.CallToolRequest, defaultFirst int) (int, string) {
	first := gh.ClampPageSize(request.GetInt("first", defaultFirst))
	after := request.GetString("after", "")
	return first, after
}

// decodeJSONObject parses an encoded-JSON tool argument. Malformed input is
// a validation error: it never reaches the network.
func decodeJSONObject(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &gh.ValidationError{Message: "invalid JSON object: " + err.Error()}
	}
	return decoded, nil
}

func withPagination(defaultFirst int) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("first",
			mcp.Description("Page size (clamped to 1..100)"),
			mcp.DefaultNumber(float64(defaultFirst)),
		),
		mcp.WithString("after",
			mcp.Description("Opaque continuation cursor from a previous page"),
		),
	}
}

func registerProjectTools(s *server.MCPServer, h *handler) {
	s.AddTool(mcp.NewTool("list_projects",
		append([]mcp.ToolOption{
			mcp.WithDescription("List projects accessible to the authenticated user. Returns one page; iterate with the cursor for the full set."),
		}, withPagination(defaultProjectPageSize)...)...,
	), h.listProjects)

	s.AddTool(mcp.NewTool("get_organization_projects",
		append([]mcp.ToolOption{
			mcp.WithDescription("List an organization's projects. Returns one page; iterate with the cursor for the full set."),
			mcp.WithString("org_login", mcp.Required(), mcp.Description("Organization login name")),
		}, withPagination(defaultProjectPageSize)...)...,
	), h.getOrganizationProjects)

	s.AddTool(mcp.NewTool("get_user_projects",
		append([]mcp.ToolOption{
			mcp.WithDescription("List a user's projects. Returns one page; iterate with the cursor for the full set."),
			mcp.WithString("user_login", mcp.Required(), mcp.Description("User login name")),
		}, withPagination(defaultProjectPageSize)...)...,
	), h.getUserProjects)

	s.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get a single project by its node ID."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
	), h.getProject)

	s.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project under an owner (organization or user)."),
		mcp.WithString("owner_id", mcp.Required(), mcp.Description("Owner node ID")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Project title")),
		mcp.WithString("description", mcp.Description("Optional short description")),
	), h.createProject)

	s.AddTool(mcp.NewTool("update_project",
		mcp.WithDescription("Update a project's title, description, readme, or visibility. Omitted fields are left unchanged."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New short description")),
		mcp.WithString("readme", mcp.Description("New readme")),
		mcp.WithBoolean("public", mcp.Description("New visibility")),
	), h.updateProject)

	s.AddTool(mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project. Irreversible."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
	), h.deleteProject)
}

func registerItemTools(s *server.MCPServer, h *handler) {
	s.AddTool(mcp.NewTool("get_project_items",
		append([]mcp.ToolOption{
			mcp.WithDescription("List a project's items with content and field values. Returns one page; iterate with the cursor for the full set."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		}, withPagination(defaultItemPageSize)...)...,
	), h.getProjectItems)

	s.AddTool(mcp.NewTool("get_project_items_advanced",
		append([]mcp.ToolOption{
			mcp.WithDescription("List project items with a custom field selection and/or filter fragment. Falls back to the default listing if the customized query fails."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("custom_fields", mcp.Description("Replacement GraphQL selection for each item node")),
			mcp.WithString("custom_filters", mcp.Description("GraphQL arguments appended to the items() listing, e.g. an orderBy clause")),
			mcp.WithString("custom_variables", mcp.Description("JSON object of extra query variables; types are inferred from the values")),
		}, withPagination(defaultItemPageSize)...)...,
	), h.getProjectItemsAdvanced)

	s.AddTool(mcp.NewTool("get_project_fields",
		mcp.WithDescription("List a project's field definitions, including single-select options and iterations."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
	), h.getProjectFields)

	s.AddTool(mcp.NewTool("add_item_to_project",
		mcp.WithDescription("Add an existing issue or pull request to a project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		mcp.WithString("content_id", mcp.Required(), mcp.Description("Issue or pull request node ID")),
	), h.addItemToProject)

	s.AddTool(mcp.NewTool("update_item_field_value",
		mcp.WithDescription("Set a field value on a project item. String values map to the text variant, numbers to the number variant, and JSON objects (e.g. {\"singleSelectOptionId\": ...}) pass through unchanged."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Project item node ID")),
		mcp.WithString("field_id", mcp.Required(), mcp.Description("Field node ID")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value; also accepts a number or a JSON object")),
	), h.updateItemFieldValue)

	s.AddTool(mcp.NewTool("remove_item_from_project",
		mcp.WithDescription("Remove an item from a project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Project item node ID")),
	), h.removeItemFromProject)

	s.AddTool(mcp.NewTool("archive_item",
		mcp.WithDescription("Archive a project item without removing it."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Project item node ID")),
	), h.archiveItem)
}

func registerQueryTools(s *server.MCPServer, h *handler) {
	s.AddTool(mcp.NewTool("execute_custom_query",
		mcp.WithDescription("Execute an arbitrary read-only GraphQL query. Mutations, subscriptions, and schema introspection are rejected before any network call."),
		mcp.WithString("query", mcp.Required(), mcp.Description("GraphQL query document")),
		mcp.WithString("variables", mcp.Description("JSON object of query variables")),
	), h.executeCustomQuery)

	s.AddTool(mcp.NewTool("search_project_items",
		append([]mcp.ToolOption{
			mcp.WithDescription("Search one page of project items by case-insensitive substring against content title/body and text or single-select field values. Filters a single page only; iterate with the cursor for exhaustive search."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		}, withPagination(defaultItemPageSize)...)...,
	), h.searchProjectItems)

	s.AddTool(mcp.NewTool("get_items_by_field_value",
		append([]mcp.ToolOption{
			mcp.WithDescription("Filter one page of project items by an exact field value match. Filters a single page only; iterate with the cursor for exhaustive results."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("field_id", mcp.Required(), mcp.Description("Field node ID to match against")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Target value (numbers stringified, label sets matched by membership)")),
		}, withPagination(defaultItemPageSize)...)...,
	), h.getItemsByFieldValue)

	s.AddTool(mcp.NewTool("get_items_by_milestone",
		append([]mcp.ToolOption{
			mcp.WithDescription("Filter one page of project items by exact, case-sensitive milestone title. Filters a single page only; iterate with the cursor for exhaustive results."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project node ID")),
			mcp.WithString("milestone", mcp.Required(), mcp.Description("Milestone title")),
		}, withPagination(defaultItemPageSize)...)...,
	), h.getItemsByMilestone)
}

func (h *handler) listProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	first, after := pageArgs(request, defaultProjectPageSize)
	page, err := h.api.GetViewerProjects(ctx, first, after)
	if err != nil {
		return h.failure("list_projects", err), nil
	}
	return jsonResult(page)
}

func (h *handler) getOrganizationProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgLogin, err := request.RequireString("org_login")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	first, after := pageArgs(request, defaultProjectPageSize)
	page, err := h.api.GetOrganizationProjects(ctx, orgLogin, first, after)
	if err != nil {
		return h.failure("get_organization_projects", err), nil
	}
	return jsonResult(page)
}

func (h *handler) getUserProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userLogin, err := request.RequireString("user_login")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	first, after := pageArgs(request, defaultProjectPageSize)
	page, err := h.api.GetUserProjects(ctx, userLogin, first, after)
	if err != nil {
		return h.failure("get_user_projects", err), nil
	}
	return jsonResult(page)
}

func (h *handler) getProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project, err := h.api.GetProject(ctx, projectID)
	if err != nil {
		return h.failure("get_project", err), nil
	}
	return jsonResult(project)
}

func (h *handler) createProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ownerID, err := request.RequireString("owner_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project, err := h.api.CreateProject(ctx, ownerID, title, request.GetString("description", ""))
	if err != nil {
		return h.failure("create_project", err), nil
	}
	return jsonResult(project)
}

func (h *handler) updateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var upd domain.ProjectUpdate
	args := request.GetArguments()
	if v, ok := args["title"].(string); ok {
		upd.Title = &v
	}
	if v, ok := args["description"].(string); ok {
		upd.ShortDescription = &v
	}
	if v, ok := args["readme"].(string); ok {
		upd.Readme = &v
	}
	if v, ok := args["public"].(bool); ok {
		upd.Public = &v
	}

	project, err := h.api.UpdateProject(ctx, projectID, upd)
	if err != nil {
		return h.failure("update_project", err), nil
	}
	return jsonResult(project)
}

func (h *handler) deleteProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deletedID, err := h.api.DeleteProject(ctx, projectID)
	if err != nil {
		return h.failure("delete_project", err), nil
	}
	return jsonResult(map[string]string{"deletedProjectId": deletedID})
}

func (h *handler) getProjectItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	first, after := pageArgs(request, defaultItemPageSize)
	page, err := h.api.GetProjectItems(ctx, projectID, first, after)
	if err != nil {
		return h.failure("get_project_items", err), nil
	}
	return jsonResult(page)
}

func (h *handler) getProjectItemsAdvanced(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	variables, err := decodeJSONObject(request.GetString("custom_variables", ""))
	if err != nil {
		return h.failure("get_project_items_advanced", err), nil
	}
	first, after := pageArgs(request, defaultItemPageSize)

	items, err := h.api.GetProjectItemsAdvanced(ctx, projectID, first, after, gh.ItemsQuery{
		Fields:    request.GetString("custom_fields", ""),
		Filter:    request.GetString("custom_filters", ""),
		Variables: variables,
	})
	if err != nil {
		return h.failure("get_project_items_advanced", err), nil
	}
	return jsonResult(items)
}

func (h *handler) getProjectFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := h.api.GetProjectFields(ctx, projectID)
	if err != nil {
		return h.failure("get_project_fields", err), nil
	}
	return jsonResult(fields)
}

func (h *handler) addItemToProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contentID, err := request.RequireString("content_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemID, err := h.api.AddItemToProject(ctx, projectID, contentID)
	if err != nil {
		return h.failure("add_item_to_project", err), nil
	}
	return jsonResult(map[string]string{"itemId": itemID})
}

func (h *handler) updateItemFieldValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldID, err := request.RequireString("field_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The value keeps its wire type: the shaping heuristic needs to see
	// strings, numbers, and objects as the caller sent them.
	value, ok := request.GetArguments()["value"]
	if !ok {
		return mcp.NewToolResultError("required argument \"value\" not found"), nil
	}

	updatedID, err := h.api.UpdateItemFieldValue(ctx, projectID, itemID, fieldID, value)
	if err != nil {
		return h.failure("update_item_field_value", err), nil
	}
	return jsonResult(map[string]string{"itemId": updatedID})
}

func (h *handler) removeItemFromProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deletedID, err := h.api.RemoveItemFromProject(ctx, projectID, itemID)
	if err != nil {
		return h.failure("remove_item_from_project", err), nil
	}
	return jsonResult(map[string]string{"deletedItemId": deletedID})
}

func (h *handler) archiveItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemID, err := request.RequireString("item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	archived, err := h.api.ArchiveItem(ctx, projectID, itemID)
	if err != nil {
		return h.failure("archive_item", err), nil
	}
	return jsonResult(archived)
}

func (h *handler) executeCustomQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	variables, err := decodeJSONObject(request.GetString("variables", ""))
	if err != nil {
		return h.failure("execute_custom_query", err), nil
	}
	result, err := h.api.ExecuteCustomQuery(ctx, query, variables)
	if err != nil {
		return h.failure("execute_custom_query", err), nil
	}
	return jsonResult(result)
}

func (h *handler) searchProjectItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	first, after := pageArgs(request, defaultItemPageSize)
	page, err := h.api.SearchProjectItems(ctx, projectID, query, first, after)
	if err != nil {
		return h.failure("search_project_items", err), nil
	}
	return jsonResult(page)
}

func (h *handler) getItemsByFieldValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldID, err := request.RequireString("field_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	first, after := pageArgs(request, defaultItemPageSize)
	page, err := h.api.GetItemsByFieldValue(ctx, projectID, fieldID, value, first, after)
	if err != nil {
		return h.failure("get_items_by_field_value", err), nil
	}
	return jsonResult(page)
}

func (h *handler) getItemsByMilestone(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	milestone, err := request.RequireString("milestone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	first, after := pageArgs(request, defaultItemPageSize)
	page, err := h.api.GetItemsByMilestone(ctx, projectID, milestone, first, after)
	if err != nil {
		return h.failure("get_items_by_milestone", err), nil
	}
	return jsonResult(page)
}
