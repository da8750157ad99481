// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"encoding/json"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-describe/internal/catalog"
	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/feature"
	"github.com/joeblew999/plat-describe/internal/geometry"
	"github.com/joeblew999/plat-describe/internal/proximity"
	"github.com/joeblew999/plat-describe/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Describe *service.DescribeService
	Catalog  *catalog.Catalog
}

// RegisterRoutes registers every REST route.
func RegisterRoutes(api huma.API, svc *Services, info Info) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(info, svc).RegisterRoutes(api)
	var cat *catalog.Catalog
	if svc != nil {
		cat = svc.Catalog
	}
	NewDBHandler(cat).RegisterRoutes(api)
}

// Types

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// DescribeRequest is a description query in geographic coordinates.
type DescribeRequest struct {
	Lat        float64               `json:"lat" minimum:"-90" maximum:"90" doc:"Latitude of the user" example:"43.6465"`
	Lon        float64               `json:"lon" minimum:"-180" maximum:"180" doc:"Longitude of the user" example:"-79.3775"`
	Heading    *float64              `json:"heading,omitempty" minimum:"0" maximum:"360" doc:"Compass heading in degrees; north is assumed when absent" example:"90"`
	Radius     float64               `json:"radius,omitempty" minimum:"0" maximum:"2000" doc:"Search radius in meters; 0 uses the area threshold" example:"400"`
	Detail     describe.DetailLevel  `json:"detail,omitempty" enum:"brief,standard,detailed" doc:"Detail level" example:"standard"`
	Include    *describe.Include     `json:"include,omitempty" doc:"Sections to include; all when absent"`
	Thresholds *proximity.Thresholds `json:"thresholds,omitempty" doc:"Zone thresholds in meters; defaults when absent"`
}

// Query converts the request to a pipeline query.
func (r DescribeRequest) Query() describe.Query {
	q := describe.At(r.Lat, r.Lon)
	if r.Heading != nil {
		q = q.WithHeading(*r.Heading)
	}
	q.Radius = r.Radius
	if r.Detail != "" {
		q.Detail = r.Detail
	}
	if r.Include != nil {
		q.Include = *r.Include
	}
	if r.Thresholds != nil {
		q.Thresholds = *r.Thresholds
	}
	return q
}

type DescribeOutput struct {
	Body describe.Description
}

// DirectionsInput re-renders the targets of an earlier description for a
// new heading.
type DirectionsInput struct {
	Body struct {
		Targets []describe.Target    `json:"targets" doc:"Targets from a /api/v1/describe response"`
		Heading float64              `json:"heading" minimum:"0" maximum:"360" doc:"New compass heading in degrees" example:"270"`
		Detail  describe.DetailLevel `json:"detail,omitempty" enum:"brief,standard,detailed" doc:"Detail level" example:"standard"`
	}
}

type DirectionsBody struct {
	Text string `json:"text" doc:"Directions relative to the new heading"`
}

type FeaturesInput struct {
	Lat    float64 `query:"lat" required:"true" minimum:"-90" maximum:"90" doc:"Latitude" example:"43.6465"`
	Lon    float64 `query:"lon" required:"true" minimum:"-180" maximum:"180" doc:"Longitude" example:"-79.3775"`
	Radius float64 `query:"radius" minimum:"1" maximum:"2000" default:"200" doc:"Radius in meters"`
}

type FeaturesOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterDescribe registers the description routes.
func (h *APIHandler) RegisterDescribe(api huma.API) {
	huma.Post(api, "/api/v1/describe", h.Describe, huma.OperationTags("describe"))
	huma.Post(api, "/api/v1/directions", h.Directions, huma.OperationTags("describe"))
}

// RegisterFeatures registers the GeoJSON export route.
func (h *APIHandler) RegisterFeatures(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-features",
		Method:      "GET",
		Path:        "/api/v1/features",
		Summary:     "Features near a point as GeoJSON",
		Tags:        []string{"features"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "GeoJSON FeatureCollection",
				Content:     map[string]*huma.MediaType{"application/geo+json": {}},
			},
		},
	}, h.GetFeatures)
}

// RegisterTiles registers tile listing and reload routes.
func (h *APIHandler) RegisterTiles(api huma.API) {
	huma.Get(api, "/api/v1/tiles", h.GetTiles, huma.OperationTags("tiles"))
	huma.Post(api, "/api/v1/tiles/reload", h.ReloadTiles, huma.OperationTags("tiles"))
}

// Handlers

func (h *APIHandler) ready() bool {
	return h.svc != nil && h.svc.Describe != nil
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) Describe(ctx context.Context, input *struct{ Body DescribeRequest }) (*DescribeOutput, error) {
	if !h.ready() {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	return &DescribeOutput{Body: h.svc.Describe.Describe(input.Body.Query())}, nil
}

func (h *APIHandler) Directions(ctx context.Context, input *DirectionsInput) (*struct{ Body DirectionsBody }, error) {
	desc := describe.Description{Targets: input.Body.Targets, Detail: input.Body.Detail}
	text := describe.DirectionalInfo(desc, input.Body.Heading)
	return &struct{ Body DirectionsBody }{Body: DirectionsBody{Text: text}}, nil
}

func (h *APIHandler) GetFeatures(ctx context.Context, input *FeaturesInput) (*FeaturesOutput, error) {
	if !h.ready() {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	near := h.svc.Describe.Nearby(geometry.Project(input.Lat, input.Lon), input.Radius)
	features := make([]*feature.Feature, len(near))
	for i, m := range near {
		features[i] = m.Feature
	}
	data, err := json.Marshal(feature.FeatureCollection(features))
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to encode features", err)
	}
	return &FeaturesOutput{ContentType: "application/geo+json", Body: data}, nil
}

func (h *APIHandler) GetTiles(ctx context.Context, input *struct{}) (*struct{ Body []service.TileFile }, error) {
	if !h.ready() {
		return &struct{ Body []service.TileFile }{Body: []service.TileFile{}}, nil
	}
	tiles, err := h.svc.Describe.Tiles().List()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tiles", err)
	}
	return &struct{ Body []service.TileFile }{Body: tiles}, nil
}

func (h *APIHandler) ReloadTiles(ctx context.Context, input *struct{}) (*struct{ Body service.ReloadResult }, error) {
	if !h.ready() {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	res, err := h.svc.Describe.Reload(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("reload failed", err)
	}
	return &struct{ Body service.ReloadResult }{Body: res}, nil
}
