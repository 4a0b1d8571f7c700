package ai

import (
	"fmt"
	"strings"
)

// Fixed persona for the floating assistant. Scope enforcement is prompt text
// only; nothing in code prevents off-topic replies.
const assistantPersona = "You are ZeroBuild AI Assistant. Help with residential buildings only. " +
	"If the user asks for engineering drawings, say: 'ZeroBuild.AI provides conceptual " +
	"architectural visualization, not construction drawings.'"

func exteriorPrompt(spec ExteriorSpec) string {
	return fmt.Sprintf(`SYSTEM: ZeroBuild.AI Architectural Visualization Engine.
MODE: EXTERIOR AFTER.
OBJECT: A %s style %s with %d floors.
COLOR THEME: %s.
SETTING: A professional architectural site photo in an %s landscape.
LIGHTING: Late afternoon golden hour, soft shadows, photorealistic.
DETAILS: Large glass windows, modern textures, landscaping, 8k resolution.
RULES: High-quality 3D render, photorealistic. No sketches. No cartoons.`,
		spec.Style, spec.Building, spec.Floors, spec.Color, spec.Location)
}

func roomPrompt(spec RoomSpec, mode RenderMode) string {
	if mode == ModeBefore {
		return fmt.Sprintf(`SYSTEM: You are the ZeroBuild.AI Interior Visualization Engine.
TASK: Generate a photorealistic 3D render of a BEFORE view.
ROOM TYPE: %s.
MODE: BEFORE
STRICT RULES:
- Show an EMPTY room, strictly NO furniture or decor.
- Plain concrete or white-washed walls, neutral flooring (concrete or light wood).
- Natural daylight from a single window.
- High-resolution architectural bare shell style.`, spec.Type)
	}
	return fmt.Sprintf(`SYSTEM: You are the ZeroBuild.AI Interior Visualization Engine.
TASK: Generate a photorealistic 3D render of an AFTER view.
ROOM TYPE: %s (Residential)
MODE: AFTER
COLOR ENFORCEMENT: Apply EXACT color "%s" to walls and accents.
STRICT RULES:
- Photorealistic 3D render of a fully furnished %s.
- Furniture: Matching modern high-end pieces for %s.
- Lighting: Recessed warm lighting combined with natural light.
- High resolution, professional interior photography style.`,
		spec.Type, spec.Color, spec.Type, spec.Type)
}

func floorPlanPrompt(spec FloorPlanSpec) string {
	return fmt.Sprintf(`You are the ZeroBuild.AI Technical Drafting Engine.
Generate a conceptual 2D Floor Plan in SVG format for a %s on a %gx%g plot.
Rooms to include: %s.

SVG STYLING RULES:
- Background: Light gray or white.
- Lines: Thin, precise dark blue or black lines (0.5px - 1px).
- Aesthetic: Technical blueprint / CAD drafting style.
- Include: Wall thickness (double lines), door swing arcs, window markers.
- Labels: All rooms must be clearly labeled with their names and estimated areas.
- Dimensions: Show dimension lines with arrows and numbers matching the %gx%g plot.
- Aspect Ratio: The SVG viewBox must exactly match %g / %g.

Return ONLY the raw SVG code. No text before or after.`,
		spec.Building, spec.Length, spec.Breadth, strings.Join(spec.RoomNames, ", "),
		spec.Length, spec.Breadth, spec.Length, spec.Breadth)
}

func blueprintPrompt(spec BlueprintSpec) string {
	return fmt.Sprintf(`Act as an expert architect for ZeroBuild.AI.
Based on this plot (%gx%g ft, %g sq ft) in an %s area, for a %s with %d floors.
Style: %s.
Provide a professional conceptual architectural recommendation focusing on structural integrity and spatial flow.
DISCLAIMER: This is for visualization only, not for construction drawings.`,
		spec.Length, spec.Breadth, spec.PlotArea, spec.Location, spec.Building, spec.Floors, spec.Style)
}
