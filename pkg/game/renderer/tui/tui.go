package tui

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"keymaker/pkg/engine/terminal"
	"keymaker/pkg/engine/world"
	"keymaker/pkg/game/renderer"
	"keymaker/pkg/game/state"
)

// Icon constants for the trace grid
const (
	IconMover   = "@"
	IconTarget  = "K"
	IconMarker  = "B"
	IconHazard  = "#"
	IconVisited = "o"
	IconUnknown = "."
)

// MaxPaneWidth caps the message pane on wide terminals
const MaxPaneWidth = 60

// TUIRenderer writes a plain text trace of the session to a writer
type TUIRenderer struct {
	w        io.Writer
	po       *gotext.Po
	useColor bool

	colorMover   color.Style
	colorTarget  color.Style
	colorMarker  color.Style
	colorHazard  color.Style
	colorVisited color.Style
	colorSubtle  color.Style
	colorAction  color.Style

	regexpStringFunctions *regexp.Regexp
}

// New creates a renderer writing to w. With useColor false no escape codes
// are ever written.
func New(w io.Writer, po *gotext.Po, useColor bool) *TUIRenderer {
	t := &TUIRenderer{w: w, po: po, useColor: useColor}
	t.Init()
	return t
}

// Init initializes the colours and the markup parser
func (t *TUIRenderer) Init() {
	t.colorMover = color.Style{color.FgGreen, color.OpBold}
	t.colorTarget = color.Style{color.FgYellow, color.OpBold}
	t.colorMarker = color.Style{color.FgCyan}
	t.colorHazard = color.Style{color.FgRed}
	t.colorVisited = color.Style{color.FgBlue}
	t.colorSubtle = color.Style{color.FgGray}
	t.colorAction = color.Style{color.FgMagenta}

	t.regexpStringFunctions = regexp.MustCompile(`([a-zA-Z_]*){([^{}]+)}`)
}

// StyleText applies a style to text
func (t *TUIRenderer) StyleText(text string, style renderer.TextStyle) string {
	if !t.useColor {
		return text
	}
	switch style {
	case renderer.StyleMover:
		return t.colorMover.Sprint(text)
	case renderer.StyleTarget:
		return t.colorTarget.Sprint(text)
	case renderer.StyleMarker:
		return t.colorMarker.Sprint(text)
	case renderer.StyleHazard:
		return t.colorHazard.Sprint(text)
	case renderer.StyleVisited:
		return t.colorVisited.Sprint(text)
	case renderer.StyleSubtle:
		return t.colorSubtle.Sprint(text)
	case renderer.StyleAction:
		return t.colorAction.Sprint(text)
	default:
		return text
	}
}

// get looks a key up in the catalogue. Keys without an entry come back as is.
func (t *TUIRenderer) get(key string, args ...any) string {
	if t.po == nil {
		return key
	}
	// A method value keeps vet from treating key as a format string.
	lookup := t.po.Get
	return lookup(key, args...)
}

// FormatText formats a message with the markup system
func (t *TUIRenderer) FormatText(msg string, args ...any) string {
	ret := fmt.Sprintf(msg, args...)

	matches := t.regexpStringFunctions.FindAllStringSubmatch(ret, -1)

	for _, match := range matches {
		function := match[1]
		operand := match[2]

		var val string

		switch function {
		case "GT":
			val = t.get(operand)
		case "MOVER":
			val = t.StyleText(operand, renderer.StyleMover)
		case "TARGET":
			val = t.StyleText(operand, renderer.StyleTarget)
		case "HAZARD":
			val = t.StyleText(operand, renderer.StyleHazard)
		case "SUBTLE":
			val = t.StyleText(operand, renderer.StyleSubtle)
		default:
			val = fmt.Sprintf("ERROR, function not found: %v -> %v", function, operand)
		}

		ret = strings.Replace(ret, match[0], val, 1)
	}

	return ret
}

// RenderFrame renders the grid as the mover knows it, then the status line
// and the message pane. Rows are x, columns are y.
func (t *TUIRenderer) RenderFrame(s *state.Session) {
	t.printMap(s)
	fmt.Fprintln(t.w, t.StyleText(t.get("STATUS", s.Moves, s.Mover, s.Grid.HazardCount()), renderer.StyleAction))
	t.printMessagesPane(s)
}

// RenderSummary renders the outcome of a run
func (t *TUIRenderer) RenderSummary(sum renderer.Summary) {
	fmt.Fprintln(t.w, t.get("SUMMARY_STRATEGY", sum.Strategy, sum.Variant))
	fmt.Fprintln(t.w, t.get("SUMMARY_TARGET", sum.Target))
	if sum.Length < 0 {
		fmt.Fprintln(t.w, t.StyleText(t.get("SUMMARY_NONE"), renderer.StyleHazard))
	} else {
		fmt.Fprintln(t.w, t.StyleText(t.get("SUMMARY_FOUND", sum.Length), renderer.StyleMover))
	}
	fmt.Fprintln(t.w, t.get("SUMMARY_MOVES", sum.Moves, sum.Hazards))
	if sum.Rounds > 0 {
		fmt.Fprintln(t.w, t.get("SUMMARY_ROUNDS", sum.Rounds))
	}
}

// renderCell returns the string representation of a cell
func (t *TUIRenderer) renderCell(s *state.Session, c world.Cell) string {
	if c == s.Mover {
		return t.StyleText(IconMover, renderer.StyleMover)
	}
	if c == s.Grid.Target() {
		return t.StyleText(IconTarget, renderer.StyleTarget)
	}
	if s.Grid.IsHazard(c) {
		return t.StyleText(IconHazard, renderer.StyleHazard)
	}
	if marker, ok := s.Grid.Marker(); ok && marker == c {
		return t.StyleText(IconMarker, renderer.StyleMarker)
	}
	if s.Visited.Has(c) {
		return t.StyleText(IconVisited, renderer.StyleVisited)
	}
	return t.StyleText(IconUnknown, renderer.StyleSubtle)
}

func (t *TUIRenderer) printMap(s *state.Session) {
	var b strings.Builder

	b.WriteString(" ")
	for y := 0; y < world.Size; y++ {
		fmt.Fprintf(&b, " %d", y)
	}
	b.WriteString("\n")

	for x := 0; x < world.Size; x++ {
		fmt.Fprintf(&b, "%d", x)
		for y := 0; y < world.Size; y++ {
			b.WriteString(" ")
			b.WriteString(t.renderCell(s, world.At(x, y)))
		}
		b.WriteString("\n")
	}

	b.WriteString(t.FormatText("GT{LEGEND}: MOVER{%s} GT{LEGEND_MOVER}  TARGET{%s} GT{LEGEND_TARGET}  %s GT{LEGEND_MARKER}  HAZARD{%s} GT{LEGEND_HAZARD}  %s GT{LEGEND_VISITED}",
		IconMover, IconTarget, IconMarker, IconHazard, IconVisited))
	b.WriteString("\n")

	fmt.Fprint(t.w, b.String())
}

// printMessagesPane renders the messages log pane
func (t *TUIRenderer) printMessagesPane(s *state.Session) {
	width := terminal.GetWidth(t.w)
	if width > MaxPaneWidth {
		width = MaxPaneWidth
	}

	label := t.get("MESSAGES")
	labelLen := len([]rune(label))
	sideLen := (width - labelLen) / 2
	if sideLen < 1 {
		sideLen = 1
	}
	rightLen := width - sideLen - labelLen
	if rightLen < 1 {
		rightLen = 1
	}

	fmt.Fprintln(t.w, t.StyleText(strings.Repeat("─", sideLen)+label+strings.Repeat("─", rightLen), renderer.StyleSubtle))
	if len(s.Messages) == 0 {
		fmt.Fprintln(t.w, t.StyleText("  "+t.get("NO_MESSAGES"), renderer.StyleSubtle))
	} else {
		for _, msg := range s.Messages {
			fmt.Fprintf(t.w, "  %s\n", msg)
		}
	}
	fmt.Fprintln(t.w, t.StyleText(strings.Repeat("─", width), renderer.StyleSubtle))
}
