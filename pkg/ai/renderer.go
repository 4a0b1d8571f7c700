package ai

import (
	"context"
	"errors"

	"zerobuild/pkg/domain"
)

// ErrNoImagePayload is returned by render calls whose contract treats a
// missing inline image as a hard failure (room before/after renders).
var ErrNoImagePayload = errors.New("visualization engine returned no image payload")

// RenderMode selects which interior view a room render depicts.
type RenderMode string

const (
	ModeBefore RenderMode = "before"
	ModeAfter  RenderMode = "after"
)

// Turn is one entry of a role-tagged chat history ("user" or "model").
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ExteriorSpec carries everything an exterior render prompt needs.
type ExteriorSpec struct {
	Style    string
	Building domain.BuildingType
	Floors   int
	Color    string
	Location domain.LocationType
}

// RoomSpec carries everything an interior render prompt needs.
type RoomSpec struct {
	Type  domain.RoomType
	Color string
}

// FloorPlanSpec carries everything a conceptual floor-plan prompt needs.
type FloorPlanSpec struct {
	Building  domain.BuildingType
	Length    float64
	Breadth   float64
	RoomNames []string
}

// BlueprintSpec carries everything a blueprint-reasoning prompt needs.
type BlueprintSpec struct {
	Length   float64
	Breadth  float64
	PlotArea float64
	Location domain.LocationType
	Building domain.BuildingType
	Floors   int
	Style    string
}

// Renderer translates project and room state into generative requests and
// interprets the responses. All calls are stateless round trips; there is no
// streaming, retrying, or caching at this layer.
//
// Failure policy differs per call:
//   - RenderExterior and RenderFloorPlan degrade to "" when the service
//     returns no usable payload.
//   - RenderRoom fails with ErrNoImagePayload so the caller can surface it.
//   - DescribeBlueprint and Chat fall back to fixed reply strings.
type Renderer interface {
	RenderExterior(ctx context.Context, spec ExteriorSpec) (string, error)
	RenderRoom(ctx context.Context, spec RoomSpec, mode RenderMode) (string, error)
	RenderFloorPlan(ctx context.Context, spec FloorPlanSpec) (string, error)
	DescribeBlueprint(ctx context.Context, spec BlueprintSpec) (string, error)
	Chat(ctx context.Context, message string, history []Turn) (string, error)
}
