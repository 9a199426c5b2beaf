package commands

import (
	"fmt"

	"github.com/bryanchriswhite/platwin/internal/config"
	"github.com/bryanchriswhite/platwin/internal/window"
)

// defaultWindow is opened when the config lists none.
var defaultWindow = config.WindowConfig{Name: "platwin", Width: 500, Height: 300}

func createInfo(wc config.WindowConfig) (window.CreateInfo, error) {
	flags, err := window.ParseFlags(wc.Flags...)
	if err != nil {
		return window.CreateInfo{}, fmt.Errorf("window %q: %w", wc.Name, err)
	}
	return window.CreateInfo{
		Name:   wc.Name,
		X:      wc.X,
		Y:      wc.Y,
		Width:  wc.Width,
		Height: wc.Height,
		Flags:  flags,
	}, nil
}

// openWindows creates every configured window on c, or the default one.
func openWindows(c *window.Context, cfg *config.Config) ([]*window.Window, error) {
	configured := cfg.Windows
	if len(configured) == 0 {
		configured = []config.WindowConfig{defaultWindow}
	}
	opened := make([]*window.Window, 0, len(configured))
	for _, wc := range configured {
		info, err := createInfo(wc)
		if err != nil {
			return opened, err
		}
		w, err := c.CreateWindow(info)
		if err != nil {
			return opened, fmt.Errorf("window %q: %w", wc.Name, err)
		}
		opened = append(opened, w)
	}
	return opened, nil
}

// addWindow validates wc and appends it to the persisted startup list.
func addWindow(m *config.Manager, wc config.WindowConfig) error {
	if wc.Name == "" {
		return fmt.Errorf("window name is required")
	}
	if wc.Width == 0 || wc.Height == 0 {
		return fmt.Errorf("window %q: width and height must be positive", wc.Name)
	}
	if _, err := createInfo(wc); err != nil {
		return err
	}
	return m.AddWindow(wc)
}
