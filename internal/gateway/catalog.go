package gateway

import (
	"net/http"
	"net/url"

	"github.com/providentiaww/strapi-mcp/internal/strapi"
	"github.com/providentiaww/strapi-mcp/pkg/mcp"
)

// callArgs is the normalised view of a call's arguments handed to a route.
type callArgs struct {
	contentType string
	id          string
	raw         map[string]interface{}
}

// route maps one tool onto one outbound request.
type route struct {
	tool    mcp.Tool
	method  string
	path    func(a callArgs) string
	query   func(a callArgs, enc strapi.FiltersEncoding) (url.Values, error)
	body    func(a callArgs) interface{}
	success []int
	failure func(a callArgs) string
}

func (r route) succeeded(status int) bool {
	for _, s := range r.success {
		if s == status {
			return true
		}
	}
	return false
}

func contentTypeParam(description string) mcp.ToolParameter {
	return mcp.ToolParameter{Name: "contentType", Type: "string", Description: description, Required: true}
}

func idParam(description string) mcp.ToolParameter {
	return mcp.ToolParameter{Name: "id", Type: "string", Description: description, Required: true}
}

func dataParam(description string) mcp.ToolParameter {
	return mcp.ToolParameter{Name: "data", Type: "object", Description: description, Required: true}
}

func collectionPath(a callArgs) string { return strapi.CollectionPath(a.contentType) }
func entryPath(a callArgs) string      { return strapi.EntryPath(a.contentType, a.id) }
func contentTypesPath(callArgs) string { return strapi.ContentTypesPath }

func wrapData(a callArgs) interface{} {
	return map[string]interface{}{"data": a.raw["data"]}
}

func filtersQuery(a callArgs, enc strapi.FiltersEncoding) (url.Values, error) {
	q := url.Values{}
	if err := strapi.EncodeFilters(q, "filters", a.raw["filters"], enc); err != nil {
		return nil, err
	}
	return q, nil
}

func fixedFailure(detail string) func(callArgs) string {
	return func(callArgs) string { return detail }
}

var ok200 = []int{http.StatusOK}

// routes is the tool table in catalog order.
var routes = []route{
	{
		tool: mcp.Tool{
			Name:        "content.list",
			Description: "List available content types",
		},
		method:  http.MethodGet,
		path:    contentTypesPath,
		success: ok200,
		failure: fixedFailure("Failed to fetch content types"),
	},
	{
		tool: mcp.Tool{
			Name:        "content.find",
			Description: "Query content entries with filters",
			Parameters: []mcp.ToolParameter{
				contentTypeParam("The content type to query"),
				{Name: "filters", Type: "object", Description: "Filters to apply to the query"},
			},
		},
		method:  http.MethodGet,
		path:    collectionPath,
		query:   filtersQuery,
		success: ok200,
		failure: func(a callArgs) string { return "Failed to fetch " + a.contentType },
	},
	{
		tool: mcp.Tool{
			Name:        "content.findOne",
			Description: "Retrieve a specific content entry",
			Parameters: []mcp.ToolParameter{
				contentTypeParam("The content type to query"),
				idParam("The ID of the entry to retrieve"),
			},
		},
		method:  http.MethodGet,
		path:    entryPath,
		success: ok200,
		failure: func(a callArgs) string { return "Failed to fetch " + a.contentType + "/" + a.id },
	},
	{
		tool: mcp.Tool{
			Name:        "content.create",
			Description: "Create a new content entry",
			Parameters: []mcp.ToolParameter{
				contentTypeParam("The content type to create"),
				dataParam("The data for the new entry"),
			},
		},
		method:  http.MethodPost,
		path:    collectionPath,
		body:    wrapData,
		success: []int{http.StatusOK, http.StatusCreated},
		failure: func(a callArgs) string { return "Failed to create " + a.contentType },
	},
	{
		tool: mcp.Tool{
			Name:        "content.update",
			Description: "Update an existing content entry",
			Parameters: []mcp.ToolParameter{
				contentTypeParam("The content type to update"),
				idParam("The ID of the entry to update"),
				dataParam("The updated data"),
			},
		},
		method:  http.MethodPut,
		path:    entryPath,
		body:    wrapData,
		success: ok200,
		failure: func(a callArgs) string { return "Failed to update " + a.contentType + "/" + a.id },
	},
	{
		tool: mcp.Tool{
			Name:        "content.delete",
			Description: "Delete a content entry",
			Parameters: []mcp.ToolParameter{
				contentTypeParam("The content type to delete from"),
				idParam("The ID of the entry to delete"),
			},
		},
		method:  http.MethodDelete,
		path:    entryPath,
		success: ok200,
		failure: func(a callArgs) string { return "Failed to delete " + a.contentType + "/" + a.id },
	},
	{
		tool: mcp.Tool{
			Name:        "schema.getContentTypes",
			Description: "Retrieve content type definitions",
		},
		method:  http.MethodGet,
		path:    contentTypesPath,
		success: ok200,
		failure: fixedFailure("Failed to fetch content types schema"),
	},
}
