package config

import "time"

// BrowserConfig configures the browser driver.
type BrowserConfig struct {
	Driver           string `yaml:"driver"` // "rod" | "recording"
	Headless         bool   `yaml:"headless"`
	NavigationTimeoutSec int `yaml:"navigation_timeout_sec"`
	ActionTimeoutSec     int `yaml:"action_timeout_sec"`
	ViewportWidth    int    `yaml:"viewport_width"`
	ViewportHeight   int    `yaml:"viewport_height"`
	ScreenshotOnFailure bool `yaml:"screenshot_on_failure"`
}

// DefaultBrowserConfig returns sensible viewport and timeout defaults.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Driver:               "rod",
		Headless:             true,
		NavigationTimeoutSec: 30,
		ActionTimeoutSec:     30,
		ViewportWidth:        1280,
		ViewportHeight:       800,
		ScreenshotOnFailure:  true,
	}
}

func (c BrowserConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSec) * time.Second
}

func (c BrowserConfig) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutSec) * time.Second
}

func (c BrowserConfig) IsHeadless() bool { return c.Headless }
