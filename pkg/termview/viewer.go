package termview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/renderer"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

const (
	frameInterval = 33 * time.Millisecond
	moveStep      = 10.0
	rotateStep    = 5 * math.Pi / 180
)

var glyphs = map[entity.Kind]rune{
	entity.KindLaser:    'L',
	entity.KindMirror:   '=',
	entity.KindWall:     '#',
	entity.KindTarget:   'o',
	entity.KindLens:     ')',
	entity.KindPrism:    '^',
	entity.KindSplitter: '%',
	entity.KindFilter:   '|',
	entity.KindWormhole: '@',
}

var glyphStyles = map[entity.Kind]tcell.Style{
	entity.KindLaser:    tcell.StyleDefault.Foreground(tcell.ColorRed),
	entity.KindMirror:   tcell.StyleDefault.Foreground(tcell.ColorSilver),
	entity.KindWall:     tcell.StyleDefault.Foreground(tcell.ColorGray),
	entity.KindTarget:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
	entity.KindLens:     tcell.StyleDefault.Foreground(tcell.ColorAqua),
	entity.KindPrism:    tcell.StyleDefault.Foreground(tcell.ColorTeal),
	entity.KindSplitter: tcell.StyleDefault.Foreground(tcell.ColorBlue),
	entity.KindFilter:   tcell.StyleDefault.Foreground(tcell.ColorWhite),
	entity.KindWormhole: tcell.StyleDefault.Foreground(tcell.ColorPurple),
}

type polygonal interface {
	Vertices() []core.Vec2
}

// Viewer draws a scene and its traced beams on a terminal and lets the user
// move entities around
type Viewer struct {
	screen    tcell.Screen
	scene     *scene.Scene
	raycaster *renderer.Raycaster
	title     string

	width, height int
	selected      int
	segments      []renderer.Segment
}

// New creates a viewer on an initialized screen
func New(screen tcell.Screen, rc *renderer.Raycaster, title string) *Viewer {
	v := &Viewer{
		screen:    screen,
		scene:     rc.Scene(),
		raycaster: rc,
		title:     title,
	}
	v.width, v.height = screen.Size()
	return v
}

// Open creates and initializes a terminal screen
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// Run processes input and redraws until the user quits or ctx ends
func (v *Viewer) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go pollEvents(ctx, v.screen, eventChan)

	last := time.Now()
	v.Step(0)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-eventChan:
			if !ok || !v.HandleEvent(ev) {
				return
			}

		case now := <-ticker.C:
			v.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or ctx ends.
// events is closed only when the screen is finalized.
func pollEvents(ctx context.Context, screen tcell.Screen, events chan<- tcell.Event) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Step advances animations, traces and redraws
func (v *Viewer) Step(dt float64) {
	v.scene.Update(dt)
	v.segments = v.raycaster.TraceAll()
	v.Draw()
}

// Selected returns the entity under keyboard control, if any
func (v *Viewer) Selected() (entity.Entity, bool) {
	entities := v.scene.Entities()
	if len(entities) == 0 {
		return nil, false
	}
	return entities[v.selected%len(entities)], true
}

// HandleEvent applies one input event, returning false when the user quits
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			v.cycle(1)
		case tcell.KeyBacktab:
			v.cycle(-1)
		case tcell.KeyLeft:
			v.move(-moveStep, 0)
		case tcell.KeyRight:
			v.move(moveStep, 0)
		case tcell.KeyUp:
			v.move(0, -moveStep)
		case tcell.KeyDown:
			v.move(0, moveStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case '[':
				v.rotate(-rotateStep)
			case ']':
				v.rotate(rotateStep)
			case ' ':
				v.toggleLasers()
			}
		}

	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}

	return true
}

func (v *Viewer) cycle(delta int) {
	n := v.scene.Len()
	if n == 0 {
		return
	}
	v.selected = ((v.selected+delta)%n + n) % n
}

func (v *Viewer) move(dx, dy float64) {
	if e, ok := v.Selected(); ok {
		pose := e.Pose()
		pose.Position = pose.Position.Add(core.NewVec2(dx, dy))
	}
}

func (v *Viewer) rotate(delta float64) {
	if e, ok := v.Selected(); ok {
		pose := e.Pose()
		pose.Angle = math.Mod(pose.Angle+delta, 2*math.Pi)
	}
}

func (v *Viewer) toggleLasers() {
	for _, e := range v.scene.Entities() {
		if laser, ok := e.(*entity.Laser); ok {
			laser.Active = !laser.Active
		}
	}
}

// toCell maps scene coordinates onto the terminal, leaving the last row for the HUD
func (v *Viewer) toCell(p core.Vec2) (int, int) {
	rows := v.height - 1
	x := int(math.Floor(p.X / v.scene.Width * float64(v.width)))
	y := int(math.Floor(p.Y / v.scene.Height * float64(rows)))
	return x, y
}

func (v *Viewer) inPlayArea(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.width && y < v.height-1
}

func (v *Viewer) set(x, y int, r rune, style tcell.Style) {
	if v.inPlayArea(x, y) {
		v.screen.SetContent(x, y, r, nil, style)
	}
}

// Draw renders the current frame
func (v *Viewer) Draw() {
	v.screen.Clear()

	for _, segment := range v.segments {
		v.drawSegment(segment)
	}

	selected, _ := v.Selected()
	for _, e := range v.scene.Entities() {
		v.drawEntity(e, e == selected)
	}

	v.drawHUD()
	v.screen.Show()
}

func beamStyle(segment renderer.Segment) tcell.Style {
	c := segment.Color.RGB()
	i := math.Max(0.25, math.Min(1, segment.Intensity))
	r, g, b := colorful.Color{R: c.R * i, G: c.G * i, B: c.B * i}.Clamped().RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

func (v *Viewer) drawSegment(segment renderer.Segment) {
	style := beamStyle(segment)
	x1, y1 := v.toCell(segment.P1)
	x2, y2 := v.toCell(segment.P2)
	steps := max(abs(x2-x1), abs(y2-y1))
	// Escape segments run far off screen
	steps = min(steps, 4*(v.width+v.height))
	if steps == 0 {
		v.set(x1, y1, '·', style)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x1) + float64(x2-x1)*t))
		y := int(math.Round(float64(y1) + float64(y2-y1)*t))
		v.set(x, y, '·', style)
	}
}

func (v *Viewer) drawEntity(e entity.Entity, selected bool) {
	glyph, ok := glyphs[e.Kind()]
	if !ok {
		glyph = '?'
	}
	style := glyphStyles[e.Kind()]
	if target, ok := e.(*entity.Target); ok && target.IsHit() {
		glyph = 'O'
		style = beamStyle(renderer.Segment{Color: target.HitColor(), Intensity: 1}).Bold(true)
	}
	if selected {
		style = style.Reverse(true)
	}

	if shape, ok := e.(polygonal); ok {
		vertices := shape.Vertices()
		for i := range vertices {
			a, b := vertices[i], vertices[(i+1)%len(vertices)]
			steps := int(math.Max(1, a.Subtract(b).Length()/(v.scene.Width/float64(max(v.width, 1)))))
			for s := 0; s <= steps; s++ {
				p := a.Add(b.Subtract(a).Multiply(float64(s) / float64(steps)))
				x, y := v.toCell(p)
				v.set(x, y, glyph, style)
			}
		}
		return
	}

	x, y := v.toCell(e.Pose().Position)
	v.set(x, y, glyph, style)
}

func (v *Viewer) drawHUD() {
	hit, total := v.scene.TargetsHit()
	status := fmt.Sprintf("targets %d/%d", hit, total)
	if v.scene.Complete() {
		status += " COMPLETE"
	}

	selection := "none"
	if e, ok := v.Selected(); ok {
		selection = fmt.Sprintf("%s (%s)", e.ID(), e.Kind())
	}

	line := fmt.Sprintf(" %s | %s | selected: %s | tab select, arrows move, [ ] rotate, space lasers, q quit",
		v.title, status, selection)

	style := tcell.StyleDefault.Reverse(true)
	y := v.height - 1
	x := 0
	for _, r := range line {
		if x >= v.width {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < v.width; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
