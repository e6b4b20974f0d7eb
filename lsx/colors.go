package lsx

import (
	"strings"

	"github.com/fatih/color"

	"github.com/signadot/ls-format/go-ls/resource"
)

type Colorable struct {
	Type resource.DataType
	Attr ColorAttr
}

type ColorAttr int

const (
	ElementColor ColorAttr = iota
	KeyColor
	IDColor
	ValueColor
	TypeColor
	PunctColor
)

type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

// NewColors returns the terminal palette. Values are colored by the kind
// of their attribute, everything else is keyed under DTNone.
func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	able := Colorable{Type: resource.DTNone}
	able.Attr = ElementColor
	colors.Map[able] = color.RGB(74, 92, 138).SprintfFunc()
	able.Attr = KeyColor
	colors.Map[able] = color.RGB(128, 168, 196).SprintfFunc()
	able.Attr = IDColor
	colors.Map[able] = color.RGB(196, 96, 16).SprintfFunc()
	able.Attr = PunctColor
	colors.Map[able] = color.RGB(96, 96, 96).SprintfFunc()

	for _, t := range resource.DataTypes() {
		able := Colorable{Type: t, Attr: TypeColor}
		colors.Map[able] = color.RGB(255, 0, 196).SprintfFunc()
		able.Attr = ValueColor
		switch {
		case t == resource.DTBool:
			colors.Map[able] = color.CyanString
		case t.IsString(), t == resource.DTTranslatedString:
			colors.Map[able] = color.RGB(8, 196, 16).SprintfFunc()
		case t == resource.DTScratchBuffer:
			colors.Map[able] = color.RGB(198, 198, 46).SprintfFunc()
		case t == resource.DTNone:
			colors.Map[able] = color.RGB(168, 0, 196).SprintfFunc()
		default:
			colors.Map[able] = color.RGB(128, 216, 236).SprintfFunc()
		}
	}
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.Replace(v, "%", "%%", -1))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

func (c *Colors) Color(t resource.DataType, a ColorAttr, s string) string {
	return c.Get(t, a)(s)
}

func (c *Colors) Get(t resource.DataType, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Type: t, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
