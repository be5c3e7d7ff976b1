package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/texturemixer/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if themeName, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Missing keys fall back to the default theme
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "compose":
			err = setComposeField(&cfg.Compose, key, value)
		case currentSection == "overlay":
			err = setOverlayField(&cfg.Overlay, key, value)
		case currentSection == "fill":
			err = setFillField(&cfg.Fill, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "projects_db":
		cfg.ProjectsDB = value
	}
	return nil
}

func setComposeField(c *Compose, key, value string) error {
	switch key {
	case "size":
		return setPositive(&c.Size, key, value)
	case "pattern":
		c.Pattern = value
	case "scale":
		return setPositive(&c.Scale, key, value)
	}
	return nil
}

func setOverlayField(o *Overlay, key, value string) error {
	switch key {
	case "canvas_width":
		return setPositive(&o.CanvasWidth, key, value)
	case "canvas_height":
		return setPositive(&o.CanvasHeight, key, value)
	case "min_size":
		return setPositive(&o.MinSize, key, value)
	case "handle_size":
		return setPositive(&o.HandleSize, key, value)
	}
	return nil
}

func setFillField(f *Fill, key, value string) error {
	switch key {
	case "steps":
		return setPositive(&f.Steps, key, value)
	case "interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
		if d < 0 {
			return fmt.Errorf("negative duration for key %s", key)
		}
		f.Interval = d
	case "mode":
		f.Mode = value
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	case "project":
		n.Project = b
	}
	return nil
}

func setPositive(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if v < 1 {
		return fmt.Errorf("key %s must be positive, got %d", key, v)
	}
	*dst = v
	return nil
}
