package tui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/smileynet/storefront/internal/toast"
)

// --- isTTY ---

func TestIsTTY_NonFileWriter(t *testing.T) {
	var buf bytes.Buffer
	if isTTY(&buf) {
		t.Error("non-*os.File writer should not be a TTY")
	}
}

func TestIsTTY_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "test")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if isTTY(f) {
		t.Error("regular file should not be a TTY")
	}
}

// --- NewDisplay ---

func TestNewDisplay_PlainForBuffer(t *testing.T) {
	d := NewDisplay(DisplayOptions{Writer: &bytes.Buffer{}})
	if _, ok := d.(*PlainDisplay); !ok {
		t.Errorf("NewDisplay(buffer) = %T, want *PlainDisplay", d)
	}
}

func TestNewDisplay_ForcePlain(t *testing.T) {
	d := NewDisplay(DisplayOptions{Writer: os.Stdout, ForcePlain: true})
	if _, ok := d.(*PlainDisplay); !ok {
		t.Errorf("NewDisplay(ForcePlain) = %T, want *PlainDisplay", d)
	}
}

// --- PlainDisplay ---

func TestPlainDisplay_TableAlignsColumns(t *testing.T) {
	// Given: a plain display and rows of uneven width
	var buf bytes.Buffer
	d := NewDisplay(DisplayOptions{Writer: &buf})

	// When: a table is printed
	d.Table([]string{"ID", "NAME", "ACTIVE"}, [][]string{
		{"1", "Lips", "yes"},
		{"12", "Eyeshadow", "no"},
	})

	// Then: every column starts at the same offset
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	want := []string{
		"ID  NAME       ACTIVE",
		"1   Lips       yes",
		"12  Eyeshadow  no",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPlainDisplay_FieldsSkipsEmptyValues(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(DisplayOptions{Writer: &buf})

	d.Fields([][2]string{{"Name", "Velvet"}, {"Discount", ""}, {"Category", "Lips"}})

	got := buf.String()
	want := "Name:      Velvet\nCategory:  Lips\n"
	if got != want {
		t.Errorf("Fields output = %q, want %q", got, want)
	}
}

func TestPlainDisplay_Toasts(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(DisplayOptions{Writer: &buf})

	d.Toasts([]toast.Toast{
		{Kind: toast.KindSuccess, Text: "Category created successfully"},
		{Kind: toast.KindError, Text: "Network error"},
	})

	got := buf.String()
	want := "✓ Category created successfully\n✗ Network error\n"
	if got != want {
		t.Errorf("Toasts output = %q, want %q", got, want)
	}
}

func TestPlainDisplay_Line(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(DisplayOptions{Writer: &buf})

	d.Line("backend %s", "UP")

	if got := buf.String(); got != "backend UP\n" {
		t.Errorf("Line output = %q, want %q", got, "backend UP\n")
	}
}

// --- StyledDisplay ---

func TestStyledDisplay_KeepsContent(t *testing.T) {
	var buf bytes.Buffer
	d := &StyledDisplay{PlainDisplay{w: &buf}}

	d.Table([]string{"ID", "NAME"}, [][]string{{"7", "Velvet"}})
	d.Toasts([]toast.Toast{{Kind: toast.KindInfo, Text: "Logged out"}})

	out := buf.String()
	for _, want := range []string{"ID", "NAME", "Velvet", "Logged out"} {
		if !strings.Contains(out, want) {
			t.Errorf("styled output missing %q:\n%s", want, out)
		}
	}
}
