package main

import (
	"flag"
	"fmt"

	"github.com/example/texturemixer/internal/compose"
)

type patternsCmd struct {
	*root
	fs    *flag.FlagSet
	n     int
	slugs bool
}

func (c *patternsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parsePatternsCmd(args []string, r *root) (*patternsCmd, error) {
	fs := flag.NewFlagSet("patterns", flag.ExitOnError)
	c := &patternsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.IntVar(&c.n, "n", 2, "number of sources")
	fs.BoolVar(&c.slugs, "slugs", false, "also print the slug accepted by -pattern")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.n < 2 {
		return nil, usageErrorf(c, "-n must be at least 2")
	}
	return c, nil
}

func (c *patternsCmd) Run() error {
	names := compose.Catalog(c.n)
	fmt.Fprintf(c.stdout, "patterns for %d sources (* marks the default):\n", c.n)
	def := compose.Default(c.n).Name(c.n)
	for _, name := range names {
		marker := " "
		if name == def {
			marker = "*"
		}
		if !c.slugs {
			fmt.Fprintf(c.stdout, "%s %s\n", marker, name)
			continue
		}
		p, err := compose.ParsePattern(name, c.n)
		if err != nil {
			return err
		}
		slug := p.Kind.Slug()
		if p.Reverse {
			slug += "-reverse"
		}
		fmt.Fprintf(c.stdout, "%s %-28s %s\n", marker, name, slug)
	}
	return nil
}
