package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hlop3z/ddlkit/internal/alerr"
)

func init() {
	// Plain mode keeps style functions free of ANSI codes.
	SetDefault(&Config{Mode: ModePlain})
}

func TestNewConfig(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		name string
		json bool
		want OutputMode
	}{
		{"buffer is never a terminal", false, ModePlain},
		{"json wins", true, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(&buf, tt.json)
			if cfg.Mode != tt.want {
				t.Errorf("Mode = %v, want %v", cfg.Mode, tt.want)
			}
			if cfg.Writer != &buf {
				t.Error("writer not kept")
			}
		})
	}

	t.Setenv("NO_COLOR", "1")
	if NewConfig(nil, false).IsTTY() {
		t.Error("NO_COLOR should force plain output")
	}
}

func TestOutputModeString(t *testing.T) {
	for mode, want := range map[OutputMode]string{ModeTTY: "tty", ModePlain: "plain", ModeJSON: "json"} {
		if got := mode.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", mode, got, want)
		}
	}
}

func TestPlainStylesAreIdentity(t *testing.T) {
	for _, fn := range []func(string) string{Error, Warning, Note, Help, Success, Code, Header, Dim, Highlight, Done, Failed} {
		if got := fn("x"); got != "x" {
			t.Errorf("styled %q in plain mode", got)
		}
	}
	if Pipe() != "|" || Arrow() != "-->" {
		t.Error("gutter characters styled in plain mode")
	}
}

func TestFormatError_Structured(t *testing.T) {
	err := alerr.Wrap(alerr.ErrSQLExecution, errors.New("duplicate key"), "failed to copy rows").
		WithDialect("postgres").
		WithTable("users").
		WithSQL("  INSERT INTO users SELECT * FROM t  ").
		With("rebuild_step", 4).
		WithHelp("drop the throwaway table and retry")

	out := FormatError(err)
	for _, want := range []string{
		"error[E4001]: failed to copy rows\n",
		"  --> postgres: users\n",
		"   | rebuild_step: 4\n",
		"   = sql: INSERT INTO users SELECT * FROM t\n",
		"cause: duplicate key\n",
		"help: drop the throwaway table and retry\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatError() missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "helps") {
		t.Errorf("helps rendered as a detail:\n%s", out)
	}
}

func TestFormatError_Wrapped(t *testing.T) {
	inner := alerr.New(alerr.ErrUnknownColumn, "column not found").WithTable("users").WithColumn("emial")
	out := FormatError(fmt.Errorf("apply: %w", inner))
	if !strings.HasPrefix(out, "error[E1007]: column not found\n  --> users.emial\n") {
		t.Errorf("FormatError() = %q", out)
	}
}

func TestFormatError_Generic(t *testing.T) {
	if got := FormatError(errors.New("boom")); got != "error: boom\n" {
		t.Errorf("FormatError() = %q", got)
	}
	if got := FormatError(nil); got != "" {
		t.Errorf("FormatError(nil) = %q", got)
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		ctx  map[string]any
		want string
	}{
		{map[string]any{}, ""},
		{map[string]any{"dialect": "mysql"}, "mysql"},
		{map[string]any{"column": "a"}, "a"},
		{map[string]any{"table": "t", "column": "a"}, "t.a"},
		{map[string]any{"dialect": "sqlite", "table": "t"}, "sqlite: t"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := location(tt.ctx); got != tt.want {
				t.Errorf("location(%v) = %q, want %q", tt.ctx, got, tt.want)
			}
		})
	}
}

func TestFormatLines(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatWarning("w"), "warning: w\n"},
		{FormatNote("n"), "note: n\n"},
		{FormatHelp("h"), "help: h\n"},
		{FormatSuccess("s"), "success: s\n"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTable_Plain(t *testing.T) {
	tbl := NewTable("COLUMN", "TYPE", "NULL")
	tbl.AddRow("id", "identity", "no")
	tbl.AddRow("email", "string(255)")

	want := "COLUMN  TYPE         NULL\n" +
		"------  -----------  ----\n" +
		"id      identity     no\n" +
		"email   string(255)\n"
	if got := tbl.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d", tbl.Len())
	}
	if NewTable().String() != "" {
		t.Error("headerless table should render empty")
	}
}

func TestStripAnsi(t *testing.T) {
	if got := stripAnsi("\x1b[1mbold\x1b[0m"); got != "bold" {
		t.Errorf("stripAnsi() = %q", got)
	}
	if got := padRightAnsi("\x1b[1mab\x1b[0m", 4); stripAnsi(got) != "ab  " {
		t.Errorf("padRightAnsi() = %q", got)
	}
}

func TestSectionAndCount(t *testing.T) {
	if got := Section("Indexes", "none\n"); got != "Indexes\n───────\nnone\n" {
		t.Errorf("Section() = %q", got)
	}
	if FormatCount(1, "table", "tables") != "1 table" || FormatCount(0, "table", "tables") != "0 tables" {
		t.Error("FormatCount() plural handling")
	}
}

func TestBadgesPlain(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{RenderOKBadge(), "[OK]"},
		{RenderDriftBadge(), "[DRIFT]"},
		{RenderErrorBadge(), "[ERROR]"},
		{RenderInfoBadge("sqlite"), "[sqlite]"},
		{RenderTitle("users"), "=== users ==="},
		{KeyValue("comment", "people"), "comment: people"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTaskProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewTaskProgress([]string{"create_table users", "add_column users.bio", "drop_table old"})
	p.SetWriter(&buf)

	p.Start(0)
	p.Complete()
	p.Start(1)
	p.Failed()
	p.Summary()

	out := buf.String()
	for _, want := range []string{
		"[1/3] create_table users ",
		" done (",
		"[2/3] add_column users.bio ",
		" failed (",
		"Stopped after 2 tasks in ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "drop_table") {
		t.Error("task that never started was printed")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    string
		want string
	}{
		{"500us", "500µs"},
		{"12ms", "12ms"},
		{"1500ms", "1.5s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			d, err := time.ParseDuration(tt.d)
			if err != nil {
				t.Fatal(err)
			}
			if got := formatDuration(d); got != tt.want {
				t.Errorf("formatDuration(%s) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
