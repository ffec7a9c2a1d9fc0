package core

// Color is a foreground color for a screen cell. The platform layer maps it
// to a terminal style.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorOrange
	ColorGray
)

// Arena palette.
const (
	ColorPlayer     = ColorBrightGreen
	ColorEnemy      = ColorBrightRed
	ColorProjectile = ColorBrightYellow
	ColorGround     = ColorGray
	ColorHUD        = ColorCyan
)
