package render

import "gokaleido/pkg/kaleido"

// Program returns the outlines of fns one after another.
func Program(fns []*kaleido.Function) []Line {
	var lines []Line
	for _, fn := range fns {
		lines = append(lines, Tree(fn)...)
	}
	return lines
}

// Viewport is a scrollable window of Rows lines starting at Top.
type Viewport struct {
	Lines []Line
	Top   int
	Rows  int
}

// Scroll moves the window by delta lines, keeping it inside Lines.
func (v *Viewport) Scroll(delta int) {
	v.Top += delta
	v.clamp()
}

// Resize changes the number of visible rows.
func (v *Viewport) Resize(rows int) {
	if rows < 1 {
		rows = 1
	}
	v.Rows = rows
	v.clamp()
}

// Visible returns the lines inside the window.
func (v *Viewport) Visible() []Line {
	end := v.Top + v.Rows
	if end > len(v.Lines) {
		end = len(v.Lines)
	}
	if v.Top >= end {
		return nil
	}
	return v.Lines[v.Top:end]
}

func (v *Viewport) clamp() {
	if maxTop := len(v.Lines) - v.Rows; v.Top > maxTop {
		v.Top = maxTop
	}
	if v.Top < 0 {
		v.Top = 0
	}
}
