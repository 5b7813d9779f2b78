package gh

import (
	"context"
	"strconv"
	"strings"

	"github.com/rgoodman/github-projects-mcp/internal/domain"
)

// The filtering helpers below fetch a single bounded page with the broad
// field selection and apply in-process predicates before returning. They are
// single-page previews: PageInfo of the fetched page is passed through
// unchanged so callers needing exhaustive results can iterate externally.

func (c *Client) filterItems(ctx context.Context, projectID string, first int, after string, match func(*domain.Item) bool) (*domain.FilteredItemPage, error) {
	page, err := c.GetProjectItems(ctx, projectID, first, after)
	if err != nil {
		return nil, err
	}

	filtered := &domain.FilteredItemPage{
		Items:    make([]domain.Item, 0, len(page.Items)),
		PageInfo: page.PageInfo,
	}
	for i := range page.Items {
		if match(&page.Items[i]) {
			filtered.Items = append(filtered.Items, page.Items[i])
		}
	}
	filtered.MatchCount = len(filtered.Items)
	return filtered, nil
}

// SearchProjectItems matches items whose content title or body contains the
// query as a case-insensitive substring. Items without a content match are
// still included when any populated text or single-select field value
// contains the query.
func (c *Client) SearchProjectItems(ctx context.Context, projectID, query string, first int, after string) (*domain.FilteredItemPage, error) {
	needle := strings.ToLower(query)
	return c.filterItems(ctx, projectID, first, after, func(item *domain.Item) bool {
		if item.Content != nil {
			if strings.Contains(strings.ToLower(item.Content.Title), needle) ||
				strings.Contains(strings.ToLower(item.Content.Body), needle) {
				return true
			}
		}
		for i := range item.FieldValues {
			fv := &item.FieldValues[i]
			if fv.Text != nil && strings.Contains(strings.ToLower(*fv.Text), needle) {
				return true
			}
			if fv.Option != nil && strings.Contains(strings.ToLower(*fv.Option), needle) {
				return true
			}
		}
		return false
	})
}

// valueMatches reports whether one field value's populated variant equals the
// target: text, single-select name, date, stringified number, or set
// membership for label values.
func valueMatches(fv *domain.FieldValue, target string) bool {
	switch {
	case fv.Text != nil:
		return *fv.Text == target
	case fv.Option != nil:
		return *fv.Option == target
	case fv.Date != nil:
		return *fv.Date == target
	case fv.Number != nil:
		return strconv.FormatFloat(*fv.Number, 'f', -1, 64) == target
	case len(fv.Labels) > 0:
		for _, label := range fv.Labels {
			if label == target {
				return true
			}
		}
	}
	return false
}

// GetItemsByFieldValue matches items holding a value for the given field
// whose variant equals (or, for label sets, contains) the target value.
func (c *Client) GetItemsByFieldValue(ctx context.Context, projectID, fieldID, value string, first int, after string) (*domain.FilteredItemPage, error) {
	return c.filterItems(ctx, projectID, first, after, func(item *domain.Item) bool {
		for i := range item.FieldValues {
			fv := &item.FieldValues[i]
			if fv.Field.ID == fieldID && valueMatches(fv, value) {
				return true
			}
		}
		return false
	})
}

// GetItemsByMilestone matches items whose underlying content milestone title
// or any milestone-typed field value title equals the given name exactly.
// Matching is case-sensitive.
func (c *Client) GetItemsByMilestone(ctx context.Context, projectID, milestone string, first int, after string) (*domain.FilteredItemPage, error) {
	return c.filterItems(ctx, projectID, first, after, func(item *domain.Item) bool {
		if item.Content != nil && item.Content.Milestone != nil && item.Content.Milestone.Title == milestone {
			return true
		}
		for i := range item.FieldValues {
			fv := &item.FieldValues[i]
			if fv.Milestone != nil && fv.Milestone.Title == milestone {
				return true
			}
		}
		return false
	})
}
