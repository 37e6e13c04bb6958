package simulation

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"golang.org/x/image/font/basicfont"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/lao-tseu-is-alive/go-boids/pkg/ui"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	statsFace  = text.NewGoXFace(basicfont.Face7x13)

	background = color.RGBA{R: 12, G: 14, B: 24, A: 255}
	forceColor = color.RGBA{R: 50, G: 50, B: 205, A: 255}
	speedColor = color.RGBA{R: 50, G: 205, B: 205, A: 255}
)

type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *Snapshot
	lastState  *Snapshot
	tick       *durationpb.Duration

	// UI Controls
	panel        *ui.Panel
	widgetPause  *ui.Button
	widgetDebug  *ui.Checkbox
	paused       bool
	stepPending  bool
	awaitingStep bool

	cfg *Config

	// Timing instrumentation
	lastUpdateDuration time.Duration
	lastDrawDuration   time.Duration
	updateAvg          float64 // Rolling average in ms
	drawAvg            float64 // Rolling average in ms
}

func GetNewGame(ctx context.Context, cfg *Config, system actor.ActorSystem) (*Game, error) {
	// 1. Create Channels for communication
	snapshotCh := make(chan *Snapshot, 1)

	// 2. Spawn World Actor
	// We pass the channel to the World so it can push updates to us.
	worldPID, err := system.Spawn(ctx, "world", NewWorldActor(snapshotCh, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &Snapshot{}, // Avoid nil pointer
		tick:       cfg.Tick(),
		cfg:        cfg,
	}

	// 3. Initialize UI Panel
	g.panel = ui.NewPanel(10, 10, 170, "Controls")
	g.widgetPause = g.panel.AddButton("Pause  [Space]", g.togglePause)
	g.panel.AddButton("Step   [Right]", g.requestStep)
	g.widgetDebug = g.panel.AddCheckbox("Vectors [D]", cfg.DebugVectors)
	return g, nil
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	if g.paused {
		g.widgetPause.Label = "Resume [Space]"
	} else {
		g.widgetPause.Label = "Pause  [Space]"
	}
}

// requestStep advances a paused world by exactly one tick.
func (g *Game) requestStep() {
	if g.paused {
		g.stepPending = true
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.lastUpdateDuration = time.Since(start)
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(g.lastUpdateDuration.Microseconds())/1000.0*0.05
	}()

	// 1. Keyboard shortcuts, then the UI Panel
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.requestStep()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.widgetDebug.Value = !g.widgetDebug.Value
	}
	g.panel.Update()

	// 2. Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
		g.awaitingStep = false
	default:
		// Use previous state if new one isn't ready
	}

	// 3. Trigger Simulation Step, at most one in flight so none is dropped
	if g.awaitingStep || (g.paused && !g.stepPending) {
		return nil
	}
	g.stepPending = false
	if err := actor.Tell(g.ctx, g.worldPID, g.tick); err != nil {
		return fmt.Errorf("failed to tick world: %w", err)
	}
	g.awaitingStep = true
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.lastDrawDuration = time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(g.lastDrawDuration.Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	w, h := float64(g.cfg.WindowWidth), float64(g.cfg.WindowHeight)

	// 1. Draw all boids from the last known snapshot
	for i := range g.lastState.Boids {
		b := &g.lastState.Boids[i]
		x, y := b.Pos.X*w, b.Pos.Y*h
		if g.widgetDebug.Value {
			s := g.cfg.DebugVectorScale
			vector.StrokeLine(screen, float32(x), float32(y),
				float32(x+b.Force.X*s), float32(y+b.Force.Y*s), 1, forceColor, true)
			vector.StrokeLine(screen, float32(x), float32(y),
				float32(x+b.Vel.X*s), float32(y+b.Vel.Y*s), 1, speedColor, true)
		}
		drawBoid(screen, x, y, b.Vel.Angle())
	}

	// 2. Draw UI Panel
	g.panel.Draw(screen)

	// 3. Flock statistics under the panel
	st := g.lastState
	status := "running"
	if g.paused {
		status = "paused"
	}
	msg := fmt.Sprintf("Step: %d (%s)\nBoids: %d\nMean speed: %.4f\nMax speed:  %.4f\nMean force: %.4f\nAnomalies: %d",
		st.Step, status, len(st.Boids), st.Stats.MeanSpeed, st.Stats.MaxSpeed, st.Stats.MeanForce, st.Anomalies)
	op := &text.DrawOptions{}
	op.GeoM.Translate(20, 10+g.panel.Height()+10)
	op.ColorScale.ScaleWithColor(color.White)
	op.LineSpacing = 16
	text.Draw(screen, msg, statsFace, op)

	// Display timing breakdown for performance analysis
	perf := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\nTotal:  %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		g.updateAvg+g.drawAvg)
	// Print stats on the right side
	ebitenutil.DebugPrintAt(screen, perf, g.cfg.WindowWidth-150, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.WindowWidth, g.cfg.WindowHeight }

func init() {
	whiteImage.Fill(color.White)
}

// boidTriangle returns the tip, right and left corners of a boid heading along angle.
func boidTriangle(x, y, angle float64) [3][2]float32 {
	return [3][2]float32{
		{float32(x + math.Cos(angle)*6), float32(y + math.Sin(angle)*6)},
		{float32(x + math.Cos(angle+2.5)*5), float32(y + math.Sin(angle+2.5)*5)},
		{float32(x + math.Cos(angle-2.5)*5), float32(y + math.Sin(angle-2.5)*5)},
	}
}

func drawBoid(screen *ebiten.Image, x, y, angle float64) {
	corners := boidTriangle(x, y, angle)

	// Define the 3 vertices of the triangle
	vertices := make([]ebiten.Vertex, 0, 3)
	for _, c := range corners {
		vertices = append(vertices, ebiten.Vertex{
			DstX: c[0], DstY: c[1],
			SrcX: 1, SrcY: 1,
			ColorR: 0.85, ColorG: 0.9, ColorB: 1, ColorA: 1,
		})
	}

	indices := []uint16{0, 1, 2}

	op := &ebiten.DrawTrianglesOptions{}

	screen.DrawTriangles(vertices, indices, whiteImage, op)
}
