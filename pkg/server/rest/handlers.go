package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/kv"
	"github.com/naufal-dp/routerx/pkg/server"
	"github.com/naufal-dp/routerx/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type NavigationService interface {
	ShortestPath(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64,
		mode datastructure.CostMode, algorithm string) (*service.ShortestPathResult, error)
	NearestNode(ctx context.Context, lat, lon float64) (datastructure.Node, float64, error)
	NearestStreetSegments(ctx context.Context, lat, lon float64, k int) ([]kv.KVEdge, []float64, error)
	GraphInfo(ctx context.Context) service.GraphInfo
}

type NavigationHandler struct {
	svc NavigationService
}

func NavigationRouter(r *chi.Mux, svc NavigationService) {
	handler := &NavigationHandler{svc}

	r.Group(func(r chi.Router) {
		r.Route("/api/navigation", func(r chi.Router) {
			r.Post("/shortest-path", handler.ShortestPath)
			r.Post("/nearest-node", handler.NearestNode)
			r.Post("/nearest-street-segments", handler.NearestStreetSegments)
			r.Get("/graph-info", handler.GraphInfo)
		})
	})
}

// Coord uses range-only validation: zero is a legitimate coordinate
// (equator, prime meridian), so presence is checked on the enclosing
// pointer fields instead.
type Coord struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

type ShortestPathRequest struct {
	Source      *Coord `json:"source" validate:"required"`
	Destination *Coord `json:"destination" validate:"required"`
	CostMode    string `json:"cost_mode" validate:"omitempty,oneof=distance time"`
	Algorithm   string `json:"algorithm" validate:"omitempty,oneof=astar dijkstra"`
}

func (s *ShortestPathRequest) Bind(r *http.Request) error {
	if s.Source == nil || s.Destination == nil {
		return errors.New("invalid request")
	}
	return nil
}

type ShortestPathResponse struct {
	Path     string  `json:"path"`
	Dist     float64 `json:"distance_meters"`
	ETA      float64 `json:"eta_seconds"`
	Expanded int     `json:"expanded_nodes"`
	From     Coord   `json:"from"`
	To       Coord   `json:"to"`
	Coords   []Coord `json:"coordinates,omitempty"`
}

func RenderShortestPathResponse(result *service.ShortestPathResult) *ShortestPathResponse {
	coords := make([]Coord, 0, len(result.Coords))
	for _, c := range result.Coords {
		coords = append(coords, Coord{Lat: c.Lat, Lon: c.Lon})
	}
	return &ShortestPathResponse{
		Path:     result.Polyline,
		Dist:     result.Dist,
		ETA:      result.ETA,
		Expanded: result.Expanded,
		From:     Coord{Lat: result.FromNode.Lat, Lon: result.FromNode.Lon},
		To:       Coord{Lat: result.ToNode.Lat, Lon: result.ToNode.Lon},
		Coords:   coords,
	}
}

func (h *NavigationHandler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errRend := validateRequest(data); errRend != nil {
		render.Render(w, r, errRend)
		return
	}

	mode, ok := datastructure.ParseCostMode(data.CostMode)
	if !ok {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("unknown cost mode %q", data.CostMode)))
		return
	}

	result, err := h.svc.ShortestPath(r.Context(), data.Source.Lat, data.Source.Lon,
		data.Destination.Lat, data.Destination.Lon, mode, data.Algorithm)
	if err != nil {
		render.Render(w, r, renderServiceError(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderShortestPathResponse(result))
}

type NearestNodeRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

func (s *NearestNodeRequest) Bind(r *http.Request) error {
	if s.Lat == nil || s.Lon == nil {
		return errors.New("invalid request")
	}
	return nil
}

type NearestNodeResponse struct {
	NodeID   int64   `json:"node_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance_meters"`
}

func (h *NavigationHandler) NearestNode(w http.ResponseWriter, r *http.Request) {
	data := &NearestNodeRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errRend := validateRequest(data); errRend != nil {
		render.Render(w, r, errRend)
		return
	}

	node, dist, err := h.svc.NearestNode(r.Context(), *data.Lat, *data.Lon)
	if err != nil {
		render.Render(w, r, renderServiceError(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &NearestNodeResponse{
		NodeID:   node.ID,
		Lat:      node.Lat,
		Lon:      node.Lon,
		Distance: dist,
	})
}

type NearestStreetSegmentsRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	K   int      `json:"k" validate:"omitempty,gt=0"`
}

func (s *NearestStreetSegmentsRequest) Bind(r *http.Request) error {
	if s.Lat == nil || s.Lon == nil {
		return errors.New("invalid request")
	}
	return nil
}

type NearestStreetSegmentsResponse struct {
	Segments []struct {
		Edge     kv.KVEdge `json:"edge"`
		Distance float64   `json:"distance_meters"`
	} `json:"segments"`
}

func RenderNearestStreetSegmentsResponse(edges []kv.KVEdge, dists []float64) *NearestStreetSegmentsResponse {
	segments := make([]struct {
		Edge     kv.KVEdge `json:"edge"`
		Distance float64   `json:"distance_meters"`
	}, 0, len(edges))
	for i, e := range edges {
		segments = append(segments, struct {
			Edge     kv.KVEdge `json:"edge"`
			Distance float64   `json:"distance_meters"`
		}{
			Edge:     e,
			Distance: dists[i],
		})
	}
	return &NearestStreetSegmentsResponse{Segments: segments}
}

func (h *NavigationHandler) NearestStreetSegments(w http.ResponseWriter, r *http.Request) {
	data := &NearestStreetSegmentsRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errRend := validateRequest(data); errRend != nil {
		render.Render(w, r, errRend)
		return
	}

	edges, dists, err := h.svc.NearestStreetSegments(r.Context(), *data.Lat, *data.Lon, data.K)
	if err != nil {
		render.Render(w, r, renderServiceError(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderNearestStreetSegmentsResponse(edges, dists))
}

type GraphInfoResponse struct {
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	MaxSpeedMS float64 `json:"max_speed_ms"`
}

func (h *NavigationHandler) GraphInfo(w http.ResponseWriter, r *http.Request) {
	info := h.svc.GraphInfo(r.Context())

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &GraphInfoResponse{
		Nodes:      info.Nodes,
		Edges:      info.Edges,
		MaxSpeedMS: info.MaxSpeedMS,
	})
}

func validateRequest(data interface{}) render.Renderer {
	validate := validator.New()
	if err := validate.Struct(data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		return ErrValidation(err, vv)
	}
	return nil
}

func renderServiceError(err error) render.Renderer {
	switch server.ErrorCodeOf(err) {
	case server.ErrNotFound, server.ErrUnknownNode:
		return ErrNotFoundRend(err)
	case server.ErrNoPathFound:
		return ErrNotFoundRend(err)
	case server.ErrBadRequest:
		return ErrInvalidRequest(err)
	case server.ErrSearchAborted:
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusUnprocessableEntity,
			StatusText:     "Search aborted.",
			ErrorText:      err.Error(),
		}
	default:
		return ErrInternalServerErrorRend(errors.New("internal server error"))
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrNotFoundRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 404,
		StatusText:     "Resource not found.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}
