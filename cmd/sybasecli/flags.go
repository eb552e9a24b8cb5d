package main

import (
	"flag"
	"os"
)

// Flags holds all command-line flags
type Flags struct {
	// Commands
	DDL    *string
	Select *string
	List   *bool
	Exists *string

	// Select filters
	Where  *string
	Limit  *int64
	Offset *int64

	// Options
	Config  *string
	Apply   *bool
	Pretend *bool

	// Misc
	Version *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) *Flags {
	f := &Flags{}

	// Commands
	f.DDL = fs.String("ddl", "", "Compile blueprint YAML file to Sybase DDL (file path)")
	f.Select = fs.String("select", "", "Select rows from table (table name)")
	f.List = fs.Bool("list", false, "List all user tables in database")
	f.Exists = fs.String("exists", "", "Check that table exists (table name)")

	// Select filters
	f.Where = fs.String("where", "", "Equality filters: 'col=val,col2=val2'")
	f.Limit = fs.Int64("limit", 0, "LIMIT rows (0 = no limit)")
	f.Offset = fs.Int64("offset", 0, "OFFSET rows to skip (uses temp table pagination)")

	// Options
	f.Config = fs.String("config", "config.yaml", "Configuration file path")
	f.Apply = fs.Bool("apply", false, "Execute compiled DDL instead of printing it (use with --ddl)")
	f.Pretend = fs.Bool("pretend", false, "Print statements that would run without executing them")

	// Misc
	f.Version = fs.Bool("version", false, "Show version information")

	fs.Parse(args)
	return f
}
