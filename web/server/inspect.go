package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/renderer"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

// InspectResponse represents the JSON response for entity inspection
type InspectResponse struct {
	Hit        bool                   `json:"hit"`
	Entity     *entity.Descriptor     `json:"entity,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// extractProperties extracts the optical properties of an entity with type assertions
func extractProperties(e entity.Entity) map[string]interface{} {
	properties := make(map[string]interface{})

	switch m := e.(type) {
	case *entity.Mirror:
		properties["reflectivity"] = m.Reflectivity
	case *entity.Lens:
		properties["refractiveIndex"] = m.RefractiveIndex
	case *entity.Prism:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["dispersion"] = m.Dispersion
		properties["indices"] = map[string]float64{
			string(core.ColorRed):   m.IndexFor(core.ColorRed),
			string(core.ColorGreen): m.IndexFor(core.ColorGreen),
			string(core.ColorBlue):  m.IndexFor(core.ColorBlue),
		}
	case *entity.Splitter:
		properties["splitRatio"] = entity.SplitRatio
	case *entity.Filter:
		properties["passColor"] = m.PassColor
		properties["transmission"] = m.Transmission
		properties["rgb"] = m.PassColor.RGB().Hex()
	case *entity.Target:
		properties["hit"] = m.IsHit()
		properties["hitIntensity"] = m.HitIntensity()
		properties["hitColor"] = m.HitColor()
		properties["hitCount"] = m.HitCount()
	case *entity.Wormhole:
		properties["partnerId"] = m.PartnerID
		properties["spinRate"] = m.SpinRate
	case *entity.Laser:
		properties["active"] = m.Active
		properties["intensity"] = m.Intensity
		properties["rgb"] = m.Color.RGB().Hex()
	}

	return properties
}

// inspectPoint traces the scene and reports the entity nearest to the point
func inspectPoint(sceneObj *scene.Scene, point core.Vec2, radius float64) InspectResponse {
	found, ok := sceneObj.EntityAt(point, radius)
	if !ok {
		return InspectResponse{Hit: false}
	}

	descriptor := entity.Describe(found)
	return InspectResponse{
		Hit:        true,
		Entity:     &descriptor,
		Properties: extractProperties(found),
	}
}

// handleInspect reports what sits at a point of a level, after one trace so
// detector state is current
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	level, err := s.loadLevel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleLevelError(w, err)
		return
	}
	sceneObj, err := level.Build()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	query := r.URL.Query()
	x, err := parseFloatParam(query, "x", 0, -1e6, 1e6)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseFloatParam(query, "y", 0, -1e6, 1e6)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius, err := parseFloatParam(query, "radius", 5, 0, 500)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raycaster := renderer.NewRaycaster(sceneObj, s.cfg.Tracer().WithSettings(level.Settings), newRequestLogger(r))
	raycaster.TraceAll()

	writeJSON(w, http.StatusOK, inspectPoint(sceneObj, core.NewVec2(x, y), radius))
}
