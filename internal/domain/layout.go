package domain

import "errors"

var ErrUnknownLayout = errors.New("unknown layout")

type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutSpeaker Layout = "speaker"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutGrid, LayoutSpeaker:
		return Layout(s), nil
	}
	return "", ErrUnknownLayout
}
