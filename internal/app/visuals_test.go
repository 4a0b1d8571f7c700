package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"zerobuild/pkg/ai"
	"zerobuild/pkg/domain"
	"zerobuild/pkg/store"
)

// memoryObjects is an in-process ObjectStore for export tests.
type memoryObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryObjects) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("no such object %q", key)
	}
	return "https://objects.local/" + key + "?signed", nil
}

func newExportApp(t *testing.T) (*App, *stubRenderer, *memoryObjects) {
	t.Helper()
	sessions, err := store.NewJWTSessionStore("test-secret", time.Hour, store.NewMemoryTokenRevoker())
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	renderer := &stubRenderer{}
	objects := newMemoryObjects()
	a, err := New(Config{
		Store:    store.NewMemoryStore(),
		Sessions: sessions,
		Renderer: renderer,
		Objects:  objects,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, renderer, objects
}

func TestGenerateExteriorPersistsResult(t *testing.T) {
	a, renderer := newTestApp(t)
	renderer.exterior = "data:image/png;base64,QUJD"
	caller := clientIdentity(t, a, "ada@example.com")

	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview", Length: 20, Breadth: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := a.GenerateExterior(context.Background(), caller, p.ID)
	if err != nil {
		t.Fatalf("generate exterior: %v", err)
	}
	if updated.VisualImage != renderer.exterior {
		t.Fatalf("visualImage = %q", updated.VisualImage)
	}
	stored, err := a.GetProject(caller, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.VisualImage != renderer.exterior {
		t.Fatal("exterior render not persisted")
	}

	// A degraded render clears the stored image.
	renderer.exterior = ""
	updated, err = a.GenerateExterior(context.Background(), caller, p.ID)
	if err != nil {
		t.Fatalf("generate exterior: %v", err)
	}
	if updated.VisualImage != "" {
		t.Fatalf("visualImage = %q, want cleared", updated.VisualImage)
	}
}

func TestGenerateFloorPlanPersistsSVG(t *testing.T) {
	a, renderer := newTestApp(t)
	renderer.floorPlan = `<svg viewBox="0 0 400 300"></svg>`
	caller := clientIdentity(t, a, "ada@example.com")

	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview", Length: 20, Breadth: 15})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := a.GenerateFloorPlan(context.Background(), caller, p.ID)
	if err != nil {
		t.Fatalf("generate floor plan: %v", err)
	}
	if updated.FloorPlanSVG != renderer.floorPlan {
		t.Fatalf("floorPlanSvg = %q", updated.FloorPlanSVG)
	}
}

func TestRenderRoomViewsStoresBothImages(t *testing.T) {
	a, renderer := newTestApp(t)
	renderer.before = "data:image/png;base64,QkVG"
	renderer.after = "data:image/png;base64,QUZU"
	caller := clientIdentity(t, a, "ada@example.com")

	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview", Length: 20, Breadth: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	room, err := a.AddRoom(caller, p.ID, "Primary Suite", domain.RoomBedroom, "#4f46e5")
	if err != nil {
		t.Fatalf("add room: %v", err)
	}

	rendered, err := a.RenderRoomViews(context.Background(), caller, p.ID, room.ID)
	if err != nil {
		t.Fatalf("render room views: %v", err)
	}
	if rendered.BeforeImage != renderer.before || rendered.AfterImage != renderer.after {
		t.Fatalf("rendered = %+v", rendered)
	}

	stored, err := a.GetProject(caller, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	storedRoom, ok := stored.RoomByID(room.ID)
	if !ok {
		t.Fatal("room missing after render")
	}
	if storedRoom.BeforeImage != renderer.before || storedRoom.AfterImage != renderer.after {
		t.Fatal("room images not persisted")
	}
}

func TestRenderRoomViewsFailureLeavesRoomUntouched(t *testing.T) {
	a, renderer := newTestApp(t)
	renderer.roomErr = ai.ErrNoImagePayload
	caller := clientIdentity(t, a, "ada@example.com")

	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview", Length: 20, Breadth: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	room, err := a.AddRoom(caller, p.ID, "Primary Suite", domain.RoomBedroom, "#4f46e5")
	if err != nil {
		t.Fatalf("add room: %v", err)
	}

	if _, err := a.RenderRoomViews(context.Background(), caller, p.ID, room.ID); !errors.Is(err, ai.ErrNoImagePayload) {
		t.Fatalf("want ErrNoImagePayload, got %v", err)
	}
	stored, err := a.GetProject(caller, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	storedRoom, _ := stored.RoomByID(room.ID)
	if storedRoom.BeforeImage != "" || storedRoom.AfterImage != "" {
		t.Fatal("failed render must not store partial images")
	}
}

func TestRenderRoomViewsUnknownRoom(t *testing.T) {
	a, _ := newTestApp(t)
	caller := clientIdentity(t, a, "ada@example.com")
	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := a.RenderRoomViews(context.Background(), caller, p.ID, "missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("want ErrRoomNotFound, got %v", err)
	}
}

func TestGenerateBlueprintReturnsText(t *testing.T) {
	a, renderer := newTestApp(t)
	renderer.blueprint = "A central load-bearing core suits this plot."
	caller := clientIdentity(t, a, "ada@example.com")

	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview", Length: 20, Breadth: 15})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	text, err := a.GenerateBlueprint(context.Background(), caller, p.ID)
	if err != nil {
		t.Fatalf("blueprint: %v", err)
	}
	if text != renderer.blueprint {
		t.Fatalf("text = %q", text)
	}
}

func TestExportVisual(t *testing.T) {
	a, renderer, objects := newExportApp(t)
	renderer.exterior = "data:image/png;base64,QUJD"
	caller := clientIdentity(t, a, "ada@example.com")

	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview", Length: 20, Breadth: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Nothing generated yet.
	if _, err := a.ExportVisual(context.Background(), caller, p.ID, ExportExterior, ""); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("want ErrNothingToExport, got %v", err)
	}

	if _, err := a.GenerateExterior(context.Background(), caller, p.ID); err != nil {
		t.Fatalf("generate exterior: %v", err)
	}
	url, err := a.ExportVisual(context.Background(), caller, p.ID, ExportExterior, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if url == "" {
		t.Fatal("expected a presigned URL")
	}
	key := "projects/" + p.ID + "/exterior.png"
	if string(objects.objects[key]) != "ABC" {
		t.Fatalf("archived bytes = %q, want decoded data URI", objects.objects[key])
	}
	if objects.types[key] != "image/png" {
		t.Fatalf("content type = %q", objects.types[key])
	}
}

func TestExportVisualSVG(t *testing.T) {
	a, renderer, objects := newExportApp(t)
	renderer.floorPlan = `<svg viewBox="0 0 400 400"></svg>`
	caller := clientIdentity(t, a, "ada@example.com")

	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview", Length: 20, Breadth: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := a.GenerateFloorPlan(context.Background(), caller, p.ID); err != nil {
		t.Fatalf("generate floor plan: %v", err)
	}
	if _, err := a.ExportVisual(context.Background(), caller, p.ID, ExportFloorPlan, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	key := "projects/" + p.ID + "/floorplan.svg"
	if objects.types[key] != "image/svg+xml" {
		t.Fatalf("content type = %q", objects.types[key])
	}
}

func TestExportVisualUnavailableWithoutObjectStore(t *testing.T) {
	a, _ := newTestApp(t)
	caller := clientIdentity(t, a, "ada@example.com")
	p, err := a.CreateProject(caller, ProjectInput{Title: "Skyview"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := a.ExportVisual(context.Background(), caller, p.ID, ExportExterior, ""); !errors.Is(err, ErrExportUnavailable) {
		t.Fatalf("want ErrExportUnavailable, got %v", err)
	}
}

func TestChatPassesThrough(t *testing.T) {
	a, renderer := newTestApp(t)
	renderer.chatReply = "Use a pitched roof."

	reply, err := a.Chat(context.Background(), "What roof?", []ai.Turn{{Role: "user", Text: "hi"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "Use a pitched roof." {
		t.Fatalf("reply = %q", reply)
	}
	if len(renderer.chatMsgs) != 1 || renderer.chatMsgs[0] != "What roof?" {
		t.Fatalf("chat messages = %v", renderer.chatMsgs)
	}
}
