package live

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/logger"
	"github.com/joeblew999/plat-describe/internal/service"
)

// Handler serves the live view: a page, Datastar SSE endpoints for
// describing and turning, and a stream of reload events.
type Handler struct {
	renderer *Renderer
	describe *service.DescribeService
	bus      *service.EventBus
}

// NewHandler creates a live handler. bus may be nil, in which case the
// events stream only reports the current status.
func NewHandler(renderer *Renderer, svc *service.DescribeService, bus *service.EventBus) *Handler {
	return &Handler{renderer: renderer, describe: svc, bus: bus}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/live/describe", h.Describe, huma.OperationTags("live"))
	huma.Post(api, "/api/v1/live/directions", h.Directions, huma.OperationTags("live"))
	huma.Get(api, "/api/v1/live/events", h.Events, huma.OperationTags("live"))
}

// Page serves the live view HTML.
func (h *Handler) Page(lat, lon float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		html, err := h.renderer.Render("page", map[string]any{
			"Title": "plat-describe",
			"Lat":   lat,
			"Lon":   lon,
		})
		if err != nil {
			logger.L().Error("render page", "error", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}
}

// query builds a describe query from the form signals.
func query(signals Signals) (describe.Query, error) {
	lat, okLat := signals.Number("lat")
	lon, okLon := signals.Number("lon")
	if !okLat || !okLon || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return describe.Query{}, huma.Error400BadRequest("lat and lon must be valid coordinates")
	}
	q := describe.At(lat, lon)
	if heading, ok := signals.Number("heading"); ok {
		q = q.WithHeading(heading)
	}
	if d := signals.String("detail"); d != "" {
		q.Detail = describe.DetailLevel(strings.ToLower(d))
	}
	return q, nil
}

func (h *Handler) Describe(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	q, err := query(signals)
	if err != nil {
		return nil, err
	}
	desc := h.describe.Describe(q)

	return stream(func(sse SSE) {
		html, err := h.renderer.Render("description", desc)
		if err != nil {
			sse.Error("render failed: " + err.Error())
			return
		}
		sse.Signals(map[string]any{
			"summary": desc.Summary,
			"targets": desc.Targets,
			"error":   "",
		})
		sse.Patch(html, "#description")
	}), nil
}

func (h *Handler) Directions(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	var targets []describe.Target
	if err := signals.Decode("targets", &targets); err != nil {
		return nil, huma.Error400BadRequest("Invalid targets: " + err.Error())
	}
	heading, _ := signals.Number("heading")
	desc := describe.Description{
		Targets: targets,
		Detail:  describe.DetailLevel(signals.String("detail")),
	}
	text := describe.DirectionalInfo(desc, heading)

	return stream(func(sse SSE) {
		html, err := h.renderer.Render("directions", text)
		if err != nil {
			sse.Error("render failed: " + err.Error())
			return
		}
		sse.Patch(html, "#directions")
	}), nil
}

// Events streams reload notifications until the client goes away.
func (h *Handler) Events(ctx context.Context, input *struct{}) (*huma.StreamResponse, error) {
	return stream(func(sse SSE) {
		h.patchStatus(sse, service.SetEvent("loaded", h.describe.Snapshot()))
		if h.bus == nil {
			return
		}

		ch := h.bus.Subscribe()
		defer h.bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-ch:
				h.patchStatus(sse, ev)
				sse.DispatchCustomEvent("resource-changed", map[string]any{
					"resource": ev.Resource,
					"action":   ev.Action,
					"features": ev.Features,
					"skipped":  len(ev.Skipped),
				})
			}
		}
	}), nil
}

func (h *Handler) patchStatus(sse SSE, ev service.Event) {
	html, err := h.renderer.Render("status", ev)
	if err != nil {
		logger.L().Warn("render status", "error", err)
		return
	}
	sse.Patch(html, "#status")
}
