package httpapi

import (
	"net/http"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// APIPrefix is the root path of every route.
const APIPrefix = "/api"

// RegisterRoutes adds the API web service to container.
func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path(APIPrefix).
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(http.StatusOK, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/discover-locations").
			To(handler.DiscoverLocations).
			Doc("List searchable storage locations").
			Metadata(restfulspec.KeyOpenAPITags, []string{"locations"}).
			Writes(LocationsResponse{}).
			Returns(http.StatusOK, "OK", LocationsResponse{}).
			Returns(http.StatusInternalServerError, "Internal Server Error", ErrorResponse{}))

	ws.
		Route(ws.POST("/search").
			To(handler.Search).
			Doc("Search locations by filename and content").
			Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
			Reads(SearchBody{}).
			Writes(SearchResponse{}).
			Returns(http.StatusOK, "OK", SearchResponse{}).
			Returns(http.StatusBadRequest, "Bad Request", ErrorResponse{}).
			Returns(StatusClientClosedRequest, "Cancelled", ErrorResponse{}).
			Returns(http.StatusInternalServerError, "Internal Server Error", ErrorResponse{}))

	ws.
		Route(ws.POST("/search/{searchId}/cancel").
			To(handler.CancelSearch).
			Doc("Cancel a running search").
			Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
			Consumes(restful.MIME_JSON, "*/*").
			Param(ws.PathParameter("searchId", "Search identifier").DataType("string")).
			Writes(CancelResponse{}).
			Returns(http.StatusOK, "OK", CancelResponse{}))

	ws.
		Route(ws.GET("/search/{searchId}/progress").
			To(handler.SearchProgress).
			Doc("Live progress of a running search").
			Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
			Param(ws.PathParameter("searchId", "Search identifier").DataType("string")).
			Writes(domain.SearchProgress{}).
			Returns(http.StatusOK, "OK", domain.SearchProgress{}).
			Returns(http.StatusNotFound, "No such search is running", ErrorResponse{}))

	ws.
		Route(ws.POST("/format-llm").
			To(handler.FormatLLM).
			Doc("Render selected files into one LLM-ready document").
			Metadata(restfulspec.KeyOpenAPITags, []string{"format"}).
			Reads(FormatBody{}).
			Writes(FormatResponse{}).
			Returns(http.StatusOK, "OK", FormatResponse{}).
			Returns(http.StatusBadRequest, "Bad Request", ErrorResponse{}))

	ws.
		Route(ws.GET("/file-content").
			To(handler.FileContent).
			Doc("Extracted text of one file").
			Metadata(restfulspec.KeyOpenAPITags, []string{"format"}).
			Param(ws.QueryParameter("path", "Absolute path or file:// URI").DataType("string").Required(true)).
			Writes(FileContentResponse{}).
			Returns(http.StatusOK, "OK", FileContentResponse{}).
			Returns(http.StatusBadRequest, "Bad Request", ErrorResponse{}).
			Returns(http.StatusNotFound, "File Not Found", ErrorResponse{}))

	ws.
		Route(ws.GET("/file-content/{path:*}").
			To(handler.FileContent).
			Doc("Extracted text of one file").
			Metadata(restfulspec.KeyOpenAPITags, []string{"format"}).
			Param(ws.PathParameter("path", "File path").DataType("string")).
			Writes(FileContentResponse{}).
			Returns(http.StatusOK, "OK", FileContentResponse{}).
			Returns(http.StatusNotFound, "File Not Found", ErrorResponse{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the generated OpenAPI document for every web
// service already in container.
func RegisterOpenAPI(container *restful.Container, version string) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       APIPrefix + "/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject(version),
	}
	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(version string) restfulspec.PostBuildSwaggerObjectFunc {
	return func(swo *spec.Swagger) {
		swo.Info = &spec.Info{
			InfoProps: spec.InfoProps{
				Title:       "k3ss-search API",
				Description: "Storage discovery, file search and LLM formatting",
				Version:     version,
			},
		}
		swo.Tags = []spec.Tag{
			{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
			{TagProps: spec.TagProps{Name: "locations", Description: "Storage discovery"}},
			{TagProps: spec.TagProps{Name: "search", Description: "File search"}},
			{TagProps: spec.TagProps{Name: "format", Description: "LLM formatting and file content"}},
		}
	}
}
