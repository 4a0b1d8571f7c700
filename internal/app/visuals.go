package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"zerobuild/pkg/ai"
	"zerobuild/pkg/domain"
)

// GenerateExterior renders the building exterior and stores the resulting
// data URI on the project. A render that yields no image clears the field.
func (a *App) GenerateExterior(ctx context.Context, caller Identity, projectID string) (domain.Project, error) {
	p, err := a.ownedProject(caller, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	uri, err := a.renderer.RenderExterior(ctx, ai.ExteriorSpec{
		Style:    p.ArchitecturalStyle,
		Building: p.BuildingType,
		Floors:   p.Floors,
		Color:    p.BuildingColor,
		Location: p.LocationType,
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("render exterior: %w", err)
	}
	p.VisualImage = uri
	if err := a.store.SaveProject(p); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return p, nil
}

// GenerateFloorPlan asks for a conceptual SVG floor plan and stores it on the
// project. A reply without a usable SVG clears the field.
func (a *App) GenerateFloorPlan(ctx context.Context, caller Identity, projectID string) (domain.Project, error) {
	p, err := a.ownedProject(caller, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	names := make([]string, 0, len(p.Rooms))
	for _, room := range p.Rooms {
		names = append(names, room.Name)
	}
	doc, err := a.renderer.RenderFloorPlan(ctx, ai.FloorPlanSpec{
		Building:  p.BuildingType,
		Length:    p.Length,
		Breadth:   p.Breadth,
		RoomNames: names,
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("render floor plan: %w", err)
	}
	p.FloorPlanSVG = doc
	if err := a.store.SaveProject(p); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return p, nil
}

// GenerateBlueprint produces the textual architectural recommendation for a
// project. The text is returned to the caller and not persisted.
func (a *App) GenerateBlueprint(ctx context.Context, caller Identity, projectID string) (string, error) {
	p, err := a.GetProject(caller, projectID)
	if err != nil {
		return "", err
	}
	text, err := a.renderer.DescribeBlueprint(ctx, ai.BlueprintSpec{
		Length:   p.Length,
		Breadth:  p.Breadth,
		PlotArea: p.PlotArea,
		Location: p.LocationType,
		Building: p.BuildingType,
		Floors:   p.Floors,
		Style:    p.ArchitecturalStyle,
	})
	if err != nil {
		return "", fmt.Errorf("blueprint reasoning: %w", err)
	}
	return text, nil
}

// RenderRoomViews generates the before and after interiors for one room as
// two independent concurrent calls. Both must yield an image; when either
// fails, nothing is stored and the room keeps its previous images.
func (a *App) RenderRoomViews(ctx context.Context, caller Identity, projectID, roomID string) (domain.Room, error) {
	p, err := a.ownedProject(caller, projectID)
	if err != nil {
		return domain.Room{}, err
	}
	room, found := p.RoomByID(roomID)
	if !found {
		return domain.Room{}, ErrRoomNotFound
	}
	spec := ai.RoomSpec{Type: room.Type, Color: room.Color}

	var before, after string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		before, err = a.renderer.RenderRoom(gctx, spec, ai.ModeBefore)
		return err
	})
	g.Go(func() error {
		var err error
		after, err = a.renderer.RenderRoom(gctx, spec, ai.ModeAfter)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Room{}, fmt.Errorf("render room: %w", err)
	}

	room.BeforeImage = before
	room.AfterImage = after
	if err := a.store.SaveProject(p); err != nil {
		return domain.Room{}, fmt.Errorf("save project: %w", err)
	}
	return *room, nil
}

// Chat forwards a message with its running history to the design assistant.
// Any authenticated caller may chat.
func (a *App) Chat(ctx context.Context, message string, history []ai.Turn) (string, error) {
	reply, err := a.renderer.Chat(ctx, message, history)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return reply, nil
}

// ExportTarget names which generated visual of a project to export.
type ExportTarget string

const (
	ExportExterior   ExportTarget = "exterior"
	ExportFloorPlan  ExportTarget = "floorplan"
	ExportRoomBefore ExportTarget = "room-before"
	ExportRoomAfter  ExportTarget = "room-after"
)

// ExportVisual archives a generated visual to object storage and returns a
// presigned download URL. Room targets additionally need the room ID.
func (a *App) ExportVisual(ctx context.Context, caller Identity, projectID string, target ExportTarget, roomID string) (string, error) {
	if a.objects == nil {
		return "", ErrExportUnavailable
	}
	p, err := a.GetProject(caller, projectID)
	if err != nil {
		return "", err
	}

	var payload string
	switch target {
	case ExportExterior:
		payload = p.VisualImage
	case ExportFloorPlan:
		payload = p.FloorPlanSVG
	case ExportRoomBefore, ExportRoomAfter:
		room, found := p.RoomByID(roomID)
		if !found {
			return "", ErrRoomNotFound
		}
		if target == ExportRoomBefore {
			payload = room.BeforeImage
		} else {
			payload = room.AfterImage
		}
	default:
		return "", fmt.Errorf("unknown export target %q", target)
	}
	if payload == "" {
		return "", ErrNothingToExport
	}

	data, contentType, ext, err := decodeVisual(payload)
	if err != nil {
		return "", fmt.Errorf("decode visual: %w", err)
	}
	key := exportKey(p.ID, target, roomID, ext)
	if err := a.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("archive visual: %w", err)
	}
	url, err := a.objects.PresignGet(ctx, key, a.exportTTL)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

// decodeVisual turns a stored visual into raw bytes. Images are data URIs;
// floor plans are SVG text.
func decodeVisual(payload string) (data []byte, contentType, ext string, err error) {
	if !strings.HasPrefix(payload, "data:") {
		return []byte(payload), "image/svg+xml", "svg", nil
	}
	rest := strings.TrimPrefix(payload, "data:")
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", "", fmt.Errorf("malformed data URI")
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", "", fmt.Errorf("decode base64: %w", err)
	}
	ext = "png"
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "" {
		ext = sub
	}
	return data, contentType, ext, nil
}

func exportKey(projectID string, target ExportTarget, roomID, ext string) string {
	if roomID != "" {
		return fmt.Sprintf("projects/%s/rooms/%s/%s.%s", projectID, roomID, target, ext)
	}
	return fmt.Sprintf("projects/%s/%s.%s", projectID, target, ext)
}
