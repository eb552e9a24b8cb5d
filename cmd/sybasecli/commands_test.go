package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruslano69/tdtp-sybase/pkg/adapters/sybase"
)

func TestParseWhere(t *testing.T) {
	pairs, err := ParseWhere("name = bob, age=42")
	if err != nil {
		t.Fatalf("ParseWhere() error = %v", err)
	}
	if len(pairs) != 2 || pairs[0] != [2]string{"name", "bob"} || pairs[1] != [2]string{"age", "42"} {
		t.Errorf("ParseWhere() = %v", pairs)
	}

	if pairs, _ := ParseWhere("  "); pairs != nil {
		t.Errorf("empty filter = %v, want nil", pairs)
	}
	if _, err := ParseWhere("name"); err == nil {
		t.Error("expected error for filter without '='")
	}
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := parseFlags(fs, []string{"-select", "users", "-offset", "10", "-limit", "5", "-pretend"})

	if *f.Select != "users" || *f.Offset != 10 || *f.Limit != 5 || !*f.Pretend {
		t.Errorf("unexpected flags: select=%s offset=%d limit=%d pretend=%v",
			*f.Select, *f.Offset, *f.Limit, *f.Pretend)
	}
	if *f.Config != "config.yaml" {
		t.Errorf("default config = %s", *f.Config)
	}
}

func TestApp_DDLPrintsStatements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	blueprint := `
table: users
create: true
columns:
  - name: id
    type: integer
    auto_increment: true
  - name: email
    type: string
    length: 100
`
	if err := os.WriteFile(path, []byte(blueprint), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	app := &App{adapter: sybase.New(), out: &out}

	if err := app.DDL(context.Background(), path, false); err != nil {
		t.Fatalf("DDL() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "CREATE TABLE users (") {
		t.Errorf("DDL output = %q", out.String())
	}
}

func TestApp_SelectPretend(t *testing.T) {
	var out bytes.Buffer
	app := &App{adapter: sybase.New(), out: &out, pretend: true}

	if err := app.Select(context.Background(), "users", "name=bob", 0, 0); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "select: ") || !strings.Contains(got, "'bob'") {
		t.Errorf("pretend output = %q", got)
	}
}

func TestApp_ListWithoutConnection(t *testing.T) {
	app := &App{adapter: sybase.New(), out: &bytes.Buffer{}}

	if err := app.List(context.Background()); err == nil {
		t.Error("List() on a disconnected adapter must fail")
	}
}
