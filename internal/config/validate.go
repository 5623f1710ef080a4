package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRegistry(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateAttendance(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRegistry() error {
	if strings.TrimSpace(c.Registry.BaseURL) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/foyer/config.toml"
		}
		return fmt.Errorf("registry.base_url is required; edit %s (create with 'foyer config init')", defaultPath)
	}
	return ensurePositiveMap(map[string]int{
		"registry.fetch_timeout":     c.Registry.FetchTimeout,
		"registry.demo_notice_delay": c.Registry.DemoNoticeDelay,
		"registry.sync_interval":     c.Registry.SyncInterval,
	})
}

func (c *Config) validateScanner() error {
	if strings.TrimSpace(c.Scanner.DecoderBinary) == "" {
		return errors.New("scanner.decoder_binary must be set")
	}
	return ensurePositiveMap(map[string]int{
		"scanner.decode_timeout":      c.Scanner.DecodeTimeout,
		"scanner.restart_delay":       c.Scanner.RestartDelay,
		"scanner.max_auto_restarts":   c.Scanner.MaxAutoRestarts,
		"scanner.manual_prompt_delay": c.Scanner.ManualPromptDelay,
	})
}

func (c *Config) validateSession() error {
	if c.Session.TickInterval <= 0 {
		return errors.New("session.tick_interval must be positive")
	}
	return nil
}

func (c *Config) validateAttendance() error {
	if c.Attendance.MaxRecords <= 0 {
		return errors.New("attendance.max_records must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
