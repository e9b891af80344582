package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/colornames"

	"gokaleido/pkg/kaleido"
	"gokaleido/pkg/render"
	"gokaleido/pkg/utils"
)

const (
	screenWidth  = 640
	screenHeight = 480
	lineHeight   = 16
	indentWidth  = 14
	markerSize   = 6
)

var kindColors = map[render.Kind]color.RGBA{
	render.KindDecl:     colornames.Gold,
	render.KindNumber:   colornames.Lightskyblue,
	render.KindVariable: colornames.Palegreen,
	render.KindOperator: colornames.Orchid,
	render.KindCall:     colornames.Coral,
	render.KindControl:  colornames.Lightgray,
}

type Game struct {
	view    render.Viewport
	status  string // parse error, shown on the last row
	markers map[render.Kind]*ebiten.Image
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyDown) || inpututil.IsKeyJustPressed(ebiten.KeyJ):
		g.view.Scroll(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyUp) || inpututil.IsKeyJustPressed(ebiten.KeyK):
		g.view.Scroll(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown) || inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.view.Scroll(g.view.Rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.view.Scroll(-g.view.Rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.view.Scroll(-len(g.view.Lines))
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		g.view.Scroll(len(g.view.Lines))
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.view.Scroll(-int(dy * 3))
	}
	return nil
}

func (g *Game) marker(kind render.Kind) *ebiten.Image {
	if g.markers == nil {
		g.markers = make(map[render.Kind]*ebiten.Image)
	}
	img, ok := g.markers[kind]
	if !ok {
		img = ebiten.NewImage(markerSize, markerSize)
		img.Fill(kindColors[kind])
		g.markers[kind] = img
	}
	return img
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	for row, line := range g.view.Visible() {
		px := 4 + line.Depth*indentWidth
		py := row * lineHeight

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(px), float64(py+5))
		screen.DrawImage(g.marker(line.Kind), op)

		ebitenutil.DebugPrintAt(screen, line.String(), px+markerSize+4, py)
	}

	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 4, screenHeight-lineHeight)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// newGame parses every item of src. Items before a parse error are still shown.
func newGame(src string) *Game {
	fns, err := kaleido.ParseProgram(src, kaleido.DefaultPrecedence())
	g := &Game{view: render.Viewport{Lines: render.Program(fns)}}

	rows := screenHeight / lineHeight
	if err != nil {
		// Only the first line of the error fits; the snippet follows on the next.
		g.status = "error: " + strings.SplitN(err.Error(), "\n", 2)[0]
		rows--
	}
	g.view.Resize(rows)
	return g
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: astview FILE")
		os.Exit(2)
	}
	src, err := utils.ReadSource(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	game := newGame(src)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Kaleidoscope AST - " + os.Args[1])

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
