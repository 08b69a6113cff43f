package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	SphereIndex  int                    `json:"sphereIndex"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
	Path         *PathInfo              `json:"path,omitempty"`
}

// PathInfo describes one full trace through the inspected pixel
type PathInfo struct {
	Outcome  string       `json:"outcome"`
	Color    [3]float32   `json:"color"`
	Vertices []VertexInfo `json:"vertices"`
}

// VertexInfo is one surface interaction of an inspected path
type VertexInfo struct {
	Point      [3]float32 `json:"point"`
	Normal     [3]float32 `json:"normal"`
	Material   string     `json:"material"`
	Throughput [3]float32 `json:"throughput"`
}

// extractMaterialInfo describes the material a reference points to
func (s *Server) extractMaterialInfo(repo *world.Repository, ref world.MaterialRef) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	properties["index"] = ref.Index

	switch ref.Kind {
	case world.KindLambertian:
		albedo := repo.LoadAlbedo(ref)
		properties["albedo"] = toArray(albedo)
		properties["color"] = hexColor(albedo)
		return "lambertian", properties

	case world.KindMetal:
		albedo := repo.LoadAlbedo(ref)
		properties["albedo"] = toArray(albedo)
		properties["color"] = hexColor(albedo)
		properties["fuzz"] = repo.LoadFuzz(ref)
		return "metal", properties

	default:
		return ref.Kind.String(), properties
	}
}

// InspectResult contains rich information about the sphere hit by an inspection ray
type InspectResult struct {
	Hit         bool
	HitRecord   geometry.Hit
	SphereIndex int
	Sphere      geometry.Sphere
	Path        integrator.Path
	PathErr     error
}

// inspectPixel casts the center ray of a pixel, finds the first sphere hit
// and records one full path through the pixel for the given seed
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int, seed uint64) InspectResult {
	camera := sceneObj.NewCamera(width, height)
	ray := camera.GetCenterRay(pixelX, pixelY)
	config := integrator.DefaultConfig()

	hit, isHit := geometry.WorldHit(sceneObj.Repository, ray, config.TMin, config.TFar)
	if !isHit {
		return InspectResult{Hit: false, SphereIndex: -1}
	}

	result := InspectResult{Hit: true, HitRecord: hit, SphereIndex: -1}

	// WorldHit does not report which sphere it hit, so find the one at the same t
	for i := 0; i < sceneObj.Repository.SphereCount(); i++ {
		sphere := geometry.LoadSphere(sceneObj.Repository, i)
		if sphereHit, ok := sphere.Hit(ray, config.TMin, config.TFar); ok && sphereHit.T == hit.T {
			result.SphereIndex = i
			result.Sphere = sphere
			break
		}
	}

	// Seeded the way the renderer seeds this pixel before its first frame
	store := rng.NewStore(width, height)
	store.SeedAll(seed)
	state := store.Load(pixelX, pixelY)
	pt := integrator.NewPathTracingIntegrator(config)
	result.Path, result.PathErr = pt.TracePath(ray, sceneObj.Repository, &state, uint32(sceneObj.SamplingConfig.MaxDepth))

	return result
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	seed, err := parseIntParam(r.URL.Query(), "seed", 1, 0, 1<<31-1)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if inspectReq.MaxDepth, err = parseIntParam(r.URL.Query(), "depth", 0, MinDepth, MaxDepth); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, err := s.createScene(inspectReq)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := inspectPixel(sceneObj, inspectReq.Width, inspectReq.Height, pixelX, pixelY, uint64(seed))
	if !result.Hit {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(InspectResponse{Hit: false, SphereIndex: -1})
		return
	}

	repo := sceneObj.Repository
	materialType, materialProps := s.extractMaterialInfo(repo, result.HitRecord.Material)

	geometryProps := map[string]interface{}{
		"center": toArray(result.Sphere.Center),
		"radius": result.Sphere.Radius,
	}

	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: "sphere",
		SphereIndex:  result.SphereIndex,
		Point:        toArray(result.HitRecord.Position),
		Normal:       toArray(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}

	if result.PathErr == nil {
		path := &PathInfo{
			Outcome: result.Path.Outcome.String(),
			Color:   toArray(result.Path.Color),
		}
		for _, v := range result.Path.Vertices {
			path.Vertices = append(path.Vertices, VertexInfo{
				Point:      toArray(v.Hit.Position),
				Normal:     toArray(v.Hit.Normal),
				Material:   v.Hit.Material.String(),
				Throughput: toArray(v.Throughput),
			})
		}
		response.Path = path
	} else {
		response.Properties["pathError"] = result.PathErr.Error()
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func toArray(v core.Vec3) [3]float32 {
	return [3]float32{v.X(), v.Y(), v.Z()}
}

func hexColor(c core.Vec3) string {
	c = core.Clamp(c, 0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X()*255), int(c.Y()*255), int(c.Z()*255))
}
