package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/texturemixer/internal/theme"
)

// Compose holds defaults for the compose subcommand.
type Compose struct {
	Size    int
	Pattern string
	Scale   int
}

// Overlay holds overlay canvas and interaction settings.
type Overlay struct {
	CanvasWidth  int
	CanvasHeight int
	MinSize      int
	HandleSize   int
}

// Fill controls the stepwise bucket fill.
type Fill struct {
	Steps    int
	Interval time.Duration
	Mode     string
}

// Notify holds notification settings.
type Notify struct {
	Export  bool
	Copy    bool
	Project bool
}

// Config holds the application configuration.
type Config struct {
	Theme      string
	SaveDir    string
	ProjectsDB string
	Compose    Compose
	Overlay    Overlay
	Fill       Fill
	Notify     Notify
	Themes     map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // empty lets the environment or the default theme apply
		Compose: Compose{
			Size:    256,
			Pattern: "horizontal-split",
			Scale:   1,
		},
		Overlay: Overlay{
			CanvasWidth:  512,
			CanvasHeight: 512,
			MinSize:      50,
			HandleSize:   8,
		},
		Fill: Fill{
			Steps:    20,
			Interval: 20 * time.Millisecond,
			Mode:     "whole",
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.ProjectsDB != "" {
		fmt.Fprintf(&sb, "projects_db = %s\n", c.ProjectsDB)
	}
	sb.WriteString("\n")

	sb.WriteString("[compose]\n")
	fmt.Fprintf(&sb, "size = %d\n", c.Compose.Size)
	fmt.Fprintf(&sb, "pattern = %s\n", c.Compose.Pattern)
	fmt.Fprintf(&sb, "scale = %d\n", c.Compose.Scale)
	sb.WriteString("\n")

	sb.WriteString("[overlay]\n")
	fmt.Fprintf(&sb, "canvas_width = %d\n", c.Overlay.CanvasWidth)
	fmt.Fprintf(&sb, "canvas_height = %d\n", c.Overlay.CanvasHeight)
	fmt.Fprintf(&sb, "min_size = %d\n", c.Overlay.MinSize)
	fmt.Fprintf(&sb, "handle_size = %d\n", c.Overlay.HandleSize)
	sb.WriteString("\n")

	sb.WriteString("[fill]\n")
	fmt.Fprintf(&sb, "steps = %d\n", c.Fill.Steps)
	fmt.Fprintf(&sb, "interval = %s\n", c.Fill.Interval)
	fmt.Fprintf(&sb, "mode = %s\n", c.Fill.Mode)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "project = %v\n", c.Notify.Project)
	sb.WriteString("\n")

	// Sorted for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, kv := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", kv[0], kv[1])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ResolveTheme returns the theme called name, checking the config's own
// [theme.NAME] sections before the loader.
func (c *Config) ResolveTheme(name string, l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[name]; ok {
		return t, nil
	}
	return l.Load(name)
}
