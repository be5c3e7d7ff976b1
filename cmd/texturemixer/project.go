package main

import (
	"flag"
	"fmt"
	"text/tabwriter"
	"time"
)

type projectCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *projectCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseProjectCmd(args []string, r *root) (*projectCmd, error) {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	c := &projectCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *projectCmd) Run() error {
	args := c.fs.Args()
	switch args[0] {
	case "list", "ls":
		return c.runList()
	case "delete", "rm":
		if len(args) != 2 {
			return usageErrorf(c, "delete requires a project name")
		}
		return c.runDelete(args[1])
	case "export":
		if len(args) != 3 {
			return usageErrorf(c, "export requires a project name and an output file")
		}
		return c.runExport(args[1], args[2])
	default:
		return fmt.Errorf("unknown project command: %s", args[0])
	}
}

func (c *projectCmd) runList() error {
	s, err := c.openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	list, err := s.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.stdout, "no projects")
		return nil
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tUNDO\tREDO\tUPDATED")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%dx%d\t%d\t%d\t%s\n", p.Name, p.Width, p.Height, p.Undo-1, p.Redo, p.Updated.Format(time.DateTime))
	}
	return tw.Flush()
}

func (c *projectCmd) runDelete(name string) error {
	s, err := c.openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Delete(name); err != nil {
		return err
	}
	fmt.Fprintf(c.stderr, "deleted project %s\n", name)
	return nil
}

func (c *projectCmd) runExport(name, output string) error {
	s, err := c.openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	p, err := s.Load(name)
	if err != nil {
		return err
	}
	return c.export(p.Image.NRGBA(), output, false)
}
