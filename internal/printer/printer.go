package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
)

func prefixed(prefix, msg string) string {
	if strings.HasPrefix(msg, prefix) {
		return msg
	}
	return prefix + " " + msg
}

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	green.Print(prefixed("✓", fmt.Sprintf(format, a...)))
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func Warning(format string, a ...any) {
	yellow.Print(prefixed("⚠️ ", fmt.Sprintf(format, a...)))
}

// Disconnected prints the notice shown when polling sync gives up, with the
// command that brings it back.
func Disconnected(failures int, reconnectHint string) {
	red.Printf("✗ Sync disconnected after %d consecutive failures\n", failures)
	if reconnectHint != "" {
		gray.Printf("  %s\n", reconnectHint)
	}
}

// Error creates a formatted error message with title, explanation, and suggestions
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext creates a formatted error with context details
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(os.Stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(os.Stderr, "%s\n", explanation)
	}

	// Context keys are printed sorted so output is stable
	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for key := range context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(os.Stderr, "\n")
		for _, key := range keys {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", key, context[key])
		}
	}

	writeSuggestions(os.Stderr, suggestions)

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}

func writeSuggestions(w io.Writer, suggestions []string) {
	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(w, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(w, "\nEither:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, suggestion)
		}
	}
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Printf("→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func Println(a ...any) {
	fmt.Println(a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Notifier writes mutation confirmations and warnings as single colored lines.
// It is safe for concurrent use.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewNotifier writes to out, or stdout when out is nil.
func NewNotifier(out io.Writer) *Notifier {
	if out == nil {
		out = os.Stdout
	}
	return &Notifier{out: out}
}

func (n *Notifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	green.Fprintln(n.out, prefixed("✓", message))
}

func (n *Notifier) Warning(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	yellow.Fprintln(n.out, prefixed("⚠️ ", message))
}
