// Package chatfmt implements the chat text formatting codes: a section sign
// followed by one character selecting a color, a style or a reset.
package chatfmt

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
)

// Prefix starts every formatting code.
const Prefix = '§'

type Formatting int

const (
	Black Formatting = iota
	DarkBlue
	DarkGreen
	DarkAqua
	DarkRed
	DarkPurple
	Gold
	Gray
	DarkGray
	Blue
	Green
	Aqua
	Red
	LightPurple
	Yellow
	White
	Obfuscated
	Bold
	Strikethrough
	Underline
	Italic
	Reset
)

type definition struct {
	code   rune
	name   string
	format bool
	ansi   color.Attribute
}

var definitions = [...]definition{
	Black:         {'0', "black", false, color.FgBlack},
	DarkBlue:      {'1', "dark_blue", false, color.FgBlue},
	DarkGreen:     {'2', "dark_green", false, color.FgGreen},
	DarkAqua:      {'3', "dark_aqua", false, color.FgCyan},
	DarkRed:       {'4', "dark_red", false, color.FgRed},
	DarkPurple:    {'5', "dark_purple", false, color.FgMagenta},
	Gold:          {'6', "gold", false, color.FgYellow},
	Gray:          {'7', "gray", false, color.FgWhite},
	DarkGray:      {'8', "dark_gray", false, color.FgHiBlack},
	Blue:          {'9', "blue", false, color.FgHiBlue},
	Green:         {'a', "green", false, color.FgHiGreen},
	Aqua:          {'b', "aqua", false, color.FgHiCyan},
	Red:           {'c', "red", false, color.FgHiRed},
	LightPurple:   {'d', "light_purple", false, color.FgHiMagenta},
	Yellow:        {'e', "yellow", false, color.FgHiYellow},
	White:         {'f', "white", false, color.FgHiWhite},
	Obfuscated:    {'k', "obfuscated", true, color.BlinkSlow},
	Bold:          {'l', "bold", true, color.Bold},
	Strikethrough: {'m', "strikethrough", true, color.CrossedOut},
	Underline:     {'n', "underline", true, color.Underline},
	Italic:        {'o', "italic", true, color.Italic},
	Reset:         {'r', "reset", false, color.Reset},
}

var (
	byCode = make(map[rune]Formatting, len(definitions))
	byName = make(map[string]Formatting, len(definitions))

	stripPattern = regexp.MustCompile("(?i)" + string(Prefix) + "[0-9A-FK-OR]")
)

func init() {
	for f, d := range definitions {
		byCode[d.code] = Formatting(f)
		byName[d.name] = Formatting(f)
	}
}

// Values returns every formatting in code order.
func Values() []Formatting {
	out := make([]Formatting, len(definitions))
	for i := range definitions {
		out[i] = Formatting(i)
	}
	return out
}

func (f Formatting) valid() bool { return f >= 0 && int(f) < len(definitions) }

// Code is the character following the prefix.
func (f Formatting) Code() rune {
	if !f.valid() {
		return 0
	}
	return definitions[f].code
}

// IsFormat reports whether f is a style rather than a color.
func (f Formatting) IsFormat() bool { return f.valid() && definitions[f].format }

// IsColor reports whether f is a color. Reset is neither.
func (f Formatting) IsColor() bool { return f.valid() && !f.IsFormat() && f != Reset }

// Name is the lower-case name, e.g. "dark_red".
func (f Formatting) Name() string {
	if !f.valid() {
		return ""
	}
	return definitions[f].name
}

// String returns the code as it appears in text, e.g. "§c".
func (f Formatting) String() string {
	if !f.valid() {
		return ""
	}
	return string([]rune{Prefix, definitions[f].code})
}

// ByName looks a formatting up by name, ignoring case.
func ByName(name string) (Formatting, bool) {
	if name == "" {
		return 0, false
	}
	f, ok := byName[cases.Fold().String(name)]
	return f, ok
}

// ByCode looks a formatting up by its code character, ignoring case.
func ByCode(code rune) (Formatting, bool) {
	if code >= 'A' && code <= 'Z' {
		code += 'a' - 'A'
	}
	f, ok := byCode[code]
	return f, ok
}

// Names lists formatting names in code order. Colors and styles are
// included on request; reset is always listed.
func Names(colors, formats bool) []string {
	var names []string
	for i, d := range definitions {
		f := Formatting(i)
		if (!f.IsColor() || colors) && (!f.IsFormat() || formats) {
			names = append(names, d.name)
		}
	}
	return names
}

// Strip removes every formatting code from s.
func Strip(s string) string {
	return stripPattern.ReplaceAllString(s, "")
}

// Format prefixes text with the given codes and appends a reset.
func Format(text string, codes ...Formatting) string {
	var b strings.Builder
	for _, f := range codes {
		b.WriteString(f.String())
	}
	b.WriteString(text)
	if len(codes) > 0 {
		b.WriteString(Reset.String())
	}
	return b.String()
}

// ToANSI renders formatted text for a terminal. A color code clears any
// active styles, a style code adds to them and reset clears everything.
func ToANSI(s string) string {
	var (
		out   strings.Builder
		run   strings.Builder
		attrs []color.Attribute
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if len(attrs) == 0 {
			out.WriteString(run.String())
		} else {
			c := color.New(attrs...)
			c.EnableColor()
			out.WriteString(c.Sprint(run.String()))
		}
		run.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == Prefix && i+1 < len(runes) {
			if f, ok := ByCode(runes[i+1]); ok {
				flush()
				switch {
				case f == Reset:
					attrs = nil
				case f.IsColor():
					attrs = []color.Attribute{definitions[f].ansi}
				default:
					attrs = append(attrs, definitions[f].ansi)
				}
				i++
				continue
			}
		}
		run.WriteRune(runes[i])
	}
	flush()
	return out.String()
}
