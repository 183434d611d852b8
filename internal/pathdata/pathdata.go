// Package pathdata builds and parses the subset of SVG path data used by
// glyphs, symbols and overlays: absolute and relative M, L, H, V and Z.
package pathdata

import (
	"fmt"
	"strconv"
	"strings"
)

// Number formats v in the shortest form that round-trips.
func Number(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Run is a half-open span [Start, End) of filled cells in one row.
type Run struct {
	Start, End int
}

// Runs scans n cells left to right and returns the contiguous spans for
// which filled reports true.
func Runs(n int, filled func(x int) bool) []Run {
	var runs []Run
	start := -1
	for x := 0; x < n; x++ {
		if filled(x) {
			if start < 0 {
				start = x
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{start, x})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{start, n})
	}
	return runs
}

// Builder accumulates absolute path commands. Compact omits the separator
// between a command letter and its first operand.
type Builder struct {
	sb      strings.Builder
	Compact bool
}

func (b *Builder) cmd(c byte) {
	if !b.Compact && b.sb.Len() > 0 {
		b.sb.WriteByte(' ')
	}
	b.sb.WriteByte(c)
	if !b.Compact {
		b.sb.WriteByte(' ')
	}
}

// MoveTo starts a new subpath at (x, y).
func (b *Builder) MoveTo(x, y float64) {
	b.cmd('M')
	b.sb.WriteString(Number(x))
	b.sb.WriteByte(' ')
	b.sb.WriteString(Number(y))
}

// LineTo draws a straight edge to (x, y).
func (b *Builder) LineTo(x, y float64) {
	b.cmd('L')
	b.sb.WriteString(Number(x))
	b.sb.WriteByte(' ')
	b.sb.WriteString(Number(y))
}

// HLineTo draws a horizontal edge to x.
func (b *Builder) HLineTo(x float64) {
	b.cmd('H')
	b.sb.WriteString(Number(x))
}

// VLineTo draws a vertical edge to y.
func (b *Builder) VLineTo(y float64) {
	b.cmd('V')
	b.sb.WriteString(Number(y))
}

// Close closes the current subpath.
func (b *Builder) Close() {
	if !b.Compact && b.sb.Len() > 0 {
		b.sb.WriteByte(' ')
	}
	b.sb.WriteByte('z')
}

// Append copies already formatted path data onto the end of the builder.
func (b *Builder) Append(d string) {
	if d == "" {
		return
	}
	if !b.Compact && b.sb.Len() > 0 {
		b.sb.WriteByte(' ')
	}
	b.sb.WriteString(d)
}

// Len reports the number of bytes written.
func (b *Builder) Len() int { return b.sb.Len() }

// String returns the accumulated path data.
func (b *Builder) String() string { return b.sb.String() }

// Segment is a straight edge in absolute coordinates.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// Subpath is the list of edges between one move and the next. Closed
// subpaths end with the edge back to their start.
type Subpath struct {
	Segments []Segment
	Closed   bool
}

// Parse resolves d into absolute subpaths. Implicit repeats of the last
// command are accepted; a lone move produces an empty subpath.
func Parse(d string) ([]Subpath, error) {
	toks, err := tokenize(d)
	if err != nil {
		return nil, err
	}
	var (
		out          []Subpath
		cur          *Subpath
		x, y, sx, sy float64
		cmd          byte
		i            int
	)
	num := func() (float64, error) {
		if i >= len(toks) || toks[i].op != 0 {
			return 0, fmt.Errorf("pathdata: missing operand for %q", cmd)
		}
		v := toks[i].v
		i++
		return v, nil
	}
	line := func(nx, ny float64) {
		if cur == nil {
			out = append(out, Subpath{})
			cur = &out[len(out)-1]
			sx, sy = x, y
		}
		cur.Segments = append(cur.Segments, Segment{x, y, nx, ny})
		x, y = nx, ny
	}
	for i < len(toks) {
		if toks[i].op != 0 {
			cmd = toks[i].op
			i++
		} else if cmd == 0 {
			return nil, fmt.Errorf("pathdata: operand before command")
		}
		rel := cmd >= 'a'
		switch cmd | 0x20 {
		case 'm':
			nx, err := num()
			if err != nil {
				return nil, err
			}
			ny, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				nx, ny = x+nx, y+ny
			}
			x, y, sx, sy = nx, ny, nx, ny
			out = append(out, Subpath{})
			cur = &out[len(out)-1]
			// Further pairs after a move are line-tos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'l':
			nx, err := num()
			if err != nil {
				return nil, err
			}
			ny, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				nx, ny = x+nx, y+ny
			}
			line(nx, ny)
		case 'h':
			nx, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				nx += x
			}
			line(nx, y)
		case 'v':
			ny, err := num()
			if err != nil {
				return nil, err
			}
			if rel {
				ny += y
			}
			line(x, ny)
		case 'z':
			if cur != nil {
				if x != sx || y != sy {
					cur.Segments = append(cur.Segments, Segment{x, y, sx, sy})
				}
				cur.Closed = true
				cur = nil
			}
			x, y = sx, sy
			if i < len(toks) && toks[i].op == 0 {
				return nil, fmt.Errorf("pathdata: operand after close")
			}
		default:
			return nil, fmt.Errorf("pathdata: unsupported command %q", cmd)
		}
	}
	return out, nil
}

type token struct {
	op byte
	v  float64
}

func tokenize(d string) ([]token, error) {
	var toks []token
	for i := 0; i < len(d); {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.IndexByte("MmLlHhVvZz", c) >= 0:
			toks = append(toks, token{op: c})
			i++
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(d) {
				cj := d[j]
				if (cj >= '0' && cj <= '9') || cj == '.' || cj == 'e' || cj == 'E' ||
					((cj == '-' || cj == '+') && (d[j-1] == 'e' || d[j-1] == 'E')) {
					j++
					continue
				}
				break
			}
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("pathdata: bad number %q", d[i:j])
			}
			toks = append(toks, token{v: v})
			i = j
		default:
			return nil, fmt.Errorf("pathdata: unexpected %q at %d", c, i)
		}
	}
	return toks, nil
}
