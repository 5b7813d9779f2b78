package gh

import (
	"context"

	"github.com/machinebox/graphql"
	"github.com/rgoodman/github-projects-mcp/internal/domain"
)

// projectFields is the selection shared by every project-returning operation.
// It must track the remote ProjectV2 object type.
const projectFields = `
	id
	title
	shortDescription
	readme
	public
	closed
	createdAt
	updatedAt
	number
	url
	owner {
		__typename
		... on Organization {
			login
		}
		... on User {
			login
		}
	}
`

// projectNode mirrors the JSON shape produced by projectFields.
type projectNode struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Readme           string `json:"readme"`
	Public           bool   `json:"public"`
	Closed           bool   `json:"closed"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
	Number           int    `json:"number"`
	URL              string `json:"url"`
	Owner            *struct {
		Typename string `json:"__typename"`
		Login    string `json:"login"`
	} `json:"owner"`
}

func (n *projectNode) toDomain() domain.Project {
	p := domain.Project{
		ID:               n.ID,
		Title:            n.Title,
		ShortDescription: n.ShortDescription,
		Readme:           n.Readme,
		Public:           n.Public,
		Closed:           n.Closed,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
		Number:           n.Number,
		URL:              n.URL,
	}
	if n.Owner != nil {
		p.Owner = &domain.Owner{Login: n.Owner.Login, Type: n.Owner.Typename}
	}
	return p
}

type pageInfoNode struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

func (n pageInfoNode) toDomain() domain.PageInfo {
	return domain.PageInfo{EndCursor: n.EndCursor, HasNextPage: n.HasNextPage}
}

type projectConnection struct {
	PageInfo pageInfoNode  `json:"pageInfo"`
	Nodes    []projectNode `json:"nodes"`
}

func (conn *projectConnection) toPage() *domain.ProjectPage {
	page := &domain.ProjectPage{
		Projects: make([]domain.Project, 0, len(conn.Nodes)),
		PageInfo: conn.PageInfo.toDomain(),
	}
	for i := range conn.Nodes {
		page.Projects = append(page.Projects, conn.Nodes[i].toDomain())
	}
	return page
}

// setPagination applies the shared first/after variables of a listing
// request. A zero cursor means the first page.
func setPagination(req *graphql.Request, first int, after string) {
	req.Var("first", clampPageSize(first))
	if after != "" {
		req.Var("after", after)
	} else {
		req.Var("after", nil)
	}
}

// GetViewerProjects lists the projects directly accessible to the
// authenticated user, one page at a time.
func (c *Client) GetViewerProjects(ctx context.Context, first int, after string) (*domain.ProjectPage, error) {
	req := graphql.NewRequest(`
		query GetViewerProjects($first: Int!, $after: String) {
			viewer {
				projectsV2(first: $first, after: $after) {
					pageInfo {
						hasNextPage
						endCursor
					}
					nodes {` + projectFields + `}
				}
			}
		}
	`)
	setPagination(req, first, after)

	var resp struct {
		Viewer struct {
			ProjectsV2 projectConnection `json:"projectsV2"`
		} `json:"viewer"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Viewer.ProjectsV2.toPage(), nil
}

// GetOrganizationProjects lists one page of an organization's projects.
func (c *Client) GetOrganizationProjects(ctx context.Context, orgLogin string, first int, after string) (*domain.ProjectPage, error) {
	req := graphql.NewRequest(`
		query GetOrgProjects($login: String!, $first: Int!, $after: String) {
			organization(login: $login) {
				projectsV2(first: $first, after: $after) {
					pageInfo {
						hasNextPage
						endCursor
					}
					nodes {` + projectFields + `}
				}
			}
		}
	`)
	req.Var("login", orgLogin)
	setPagination(req, first, after)

	var resp struct {
		Organization struct {
			ProjectsV2 projectConnection `json:"projectsV2"`
		} `json:"organization"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Organization.ProjectsV2.toPage(), nil
}

// GetUserProjects lists one page of a user's projects.
func (c *Client) GetUserProjects(ctx context.Context, userLogin string, first int, after string) (*domain.ProjectPage, error) {
	req := graphql.NewRequest(`
		query GetUserProjects($login: String!, $first: Int!, $after: String) {
			user(login: $login) {
				projectsV2(first: $first, after: $after) {
					pageInfo {
						hasNextPage
						endCursor
					}
					nodes {` + projectFields + `}
				}
			}
		}
	`)
	req.Var("login", userLogin)
	setPagination(req, first, after)

	var resp struct {
		User struct {
			ProjectsV2 projectConnection `json:"projectsV2"`
		} `json:"user"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.User.ProjectsV2.toPage(), nil
}

// GetProject fetches a single project by its node ID.
func (c *Client) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	req := graphql.NewRequest(`
		query GetProject($id: ID!) {
			node(id: $id) {
				... on ProjectV2 {` + projectFields + `}
			}
		}
	`)
	req.Var("id", projectID)

	var resp struct {
		Node projectNode `json:"node"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Node.ID == "" {
		return nil, &APIError{Message: "project not found: " + projectID}
	}
	project := resp.Node.toDomain()
	return &project, nil
}

// CreateProject creates a new project under the given owner (organization or
// user node ID). Description is optional.
func (c *Client) CreateProject(ctx context.Context, ownerID, title, description string) (*domain.Project, error) {
	req := graphql.NewRequest(`
		mutation CreateProject($ownerId: ID!, $title: String!, $description: String) {
			createProjectV2(input: {
				ownerId: $ownerId
				title: $title
				shortDescription: $description
			}) {
				projectV2 {
					id
					title
					shortDescription
					number
					url
				}
			}
		}
	`)
	req.Var("ownerId", ownerID)
	req.Var("title", title)
	if description != "" {
		req.Var("description", description)
	} else {
		req.Var("description", nil)
	}

	var resp struct {
		CreateProjectV2 struct {
			ProjectV2 projectNode `json:"projectV2"`
		} `json:"createProjectV2"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	project := resp.CreateProjectV2.ProjectV2.toDomain()
	return &project, nil
}

// UpdateProject applies the non-nil fields of upd to an existing project.
// Business-rule validation is entirely the remote service's responsibility.
func (c *Client) UpdateProject(ctx context.Context, projectID string, upd domain.ProjectUpdate) (*domain.Project, error) {
	req := graphql.NewRequest(`
		mutation UpdateProject(
			$projectId: ID!, $title: String, $description: String, $readme: String, $public: Boolean
		) {
			updateProjectV2(input: {
				projectId: $projectId
				title: $title
				shortDescription: $description
				readme: $readme
				public: $public
			}) {
				projectV2 {
					id
					title
					shortDescription
					readme
					public
					number
					url
				}
			}
		}
	`)
	req.Var("projectId", projectID)
	req.Var("title", orNil(upd.Title))
	req.Var("description", orNil(upd.ShortDescription))
	req.Var("readme", orNil(upd.Readme))
	if upd.Public != nil {
		req.Var("public", *upd.Public)
	} else {
		req.Var("public", nil)
	}

	var resp struct {
		UpdateProjectV2 struct {
			ProjectV2 projectNode `json:"projectV2"`
		} `json:"updateProjectV2"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return nil, err
	}
	project := resp.UpdateProjectV2.ProjectV2.toDomain()
	return &project, nil
}

// DeleteProject deletes a project and returns the deleted project's ID.
func (c *Client) DeleteProject(ctx context.Context, projectID string) (string, error) {
	req := graphql.NewRequest(`
		mutation DeleteProject($projectId: ID!) {
			deleteProjectV2(input: {
				projectId: $projectId
			}) {
				projectV2 {
					id
				}
			}
		}
	`)
	req.Var("projectId", projectID)

	var resp struct {
		DeleteProjectV2 struct {
			ProjectV2 struct {
				ID string `json:"id"`
			} `json:"projectV2"`
		} `json:"deleteProjectV2"`
	}
	if err := c.execute(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.DeleteProjectV2.ProjectV2.ID, nil
}

// orNil converts an optional string to a GraphQL variable value.
func orNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
