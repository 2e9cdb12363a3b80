package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

// Context keys rendered in dedicated places instead of the detail list.
var locationKeys = map[string]bool{
	"dialect": true, "table": true, "column": true, "sql": true, "helps": true,
}

// FormatError formats an error for CLI display:
//
//	error[E4001]: failed to add column
//	  --> postgres: users.email
//	   |
//	   | rebuild_step: 4
//	   = sql: INSERT INTO ...
//	note: cause: duplicate key value
//	help: drop the throwaway table
//
// Errors that do not carry an *alerr.Error anywhere in their chain are printed
// on a single line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatStructured(ae)
	}
	return Error("error") + ": " + err.Error() + "\n"
}

func formatStructured(err *alerr.Error) string {
	var b strings.Builder
	ctx := err.GetContext()

	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.GetCode())))
	b.WriteString("]: ")
	b.WriteString(err.GetMessage())
	b.WriteString("\n")

	if loc := location(ctx); loc != "" {
		fmt.Fprintf(&b, "  %s %s\n", Arrow(), Header(loc))
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !locationKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	sql, _ := ctx["sql"].(string)
	if len(keys) > 0 || sql != "" {
		fmt.Fprintf(&b, "   %s\n", Pipe())
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "   %s %s: %v\n", Pipe(), k, ctx[k])
	}
	if sql != "" {
		fmt.Fprintf(&b, "   = %s: %s\n", Note("sql"), strings.TrimSpace(sql))
	}

	if cause := err.GetCause(); cause != nil {
		fmt.Fprintf(&b, "%s: %s\n", Note("cause"), causeMessage(cause))
	}
	for _, help := range err.Helps() {
		fmt.Fprintf(&b, "%s: %s\n", Help("help"), help)
	}
	return b.String()
}

// location renders "dialect: table.column" from whatever parts are present.
func location(ctx map[string]any) string {
	dialect, _ := ctx["dialect"].(string)
	table, _ := ctx["table"].(string)
	column, _ := ctx["column"].(string)

	target := table
	if column != "" {
		if target != "" {
			target += "."
		}
		target += column
	}
	switch {
	case dialect == "":
		return target
	case target == "":
		return dialect
	default:
		return dialect + ": " + target
	}
}

// causeMessage keeps the first line of a nested structured error so the
// cause does not repeat its own context block.
func causeMessage(cause error) string {
	msg := cause.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}

// FormatWarning formats a warning line.
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatNote formats a note line.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp formats a help line.
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess formats a success line.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
