package styles

import "github.com/raphi011/rbee/internal/plug"

// Symbols holds the icon set based on nerdfont configuration
type Symbols struct {
	Success string
	Warning string
	Error   string
}

// Default symbols
var defaultSymbols = Symbols{
	Success: "✓",
	Warning: "!",
	Error:   "✗",
}

// Nerd font symbols
var nerdfontSymbols = Symbols{
	Success: "\uf00c", // nf-fa-check
	Warning: "\uf071", // nf-fa-warning
	Error:   "\uf00d", // nf-fa-times
}

// useNerdfont tracks whether nerd font symbols are enabled
var useNerdfont bool

// currentSymbols holds the active symbol set
var currentSymbols = defaultSymbols

// SetNerdfont enables or disables nerd font symbols
func SetNerdfont(enabled bool) {
	useNerdfont = enabled
	if enabled {
		currentSymbols = nerdfontSymbols
	} else {
		currentSymbols = defaultSymbols
	}
}

// NerdfontEnabled returns whether nerd font symbols are enabled
func NerdfontEnabled() bool {
	return useNerdfont
}

// CurrentSymbols returns the current symbol set
func CurrentSymbols() Symbols {
	return currentSymbols
}

// StatusSymbol returns the plain symbol for a status, or "" for an invalid one.
func StatusSymbol(s plug.Status) string {
	switch s {
	case plug.Success:
		return currentSymbols.Success
	case plug.Warning:
		return currentSymbols.Warning
	case plug.Error:
		return currentSymbols.Error
	default:
		return ""
	}
}

// FormatStatus returns the colored status label, e.g. "ERROR" in red.
func FormatStatus(s plug.Status) string {
	return StatusStyle(s).Render(s.String())
}

// FormatStatusSymbol returns the colored status symbol.
func FormatStatusSymbol(s plug.Status) string {
	return StatusStyle(s).Render(StatusSymbol(s))
}
