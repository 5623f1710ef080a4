package config

import (
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRegistry()
	c.normalizeScanner()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeRegistry() {
	c.Registry.BaseURL = strings.TrimRight(strings.TrimSpace(c.Registry.BaseURL), "/")
	if c.Registry.FetchTimeout <= 0 {
		c.Registry.FetchTimeout = defaultRegistryFetchTimeout
	}
	if c.Registry.DemoNoticeDelay <= 0 {
		c.Registry.DemoNoticeDelay = defaultRegistryDemoNoticeDelay
	}
	if c.Registry.SyncInterval <= 0 {
		c.Registry.SyncInterval = defaultRegistrySyncInterval
	}
}

func (c *Config) normalizeScanner() {
	c.Scanner.Device = strings.TrimSpace(c.Scanner.Device)
	if strings.TrimSpace(c.Scanner.DecoderBinary) == "" {
		c.Scanner.DecoderBinary = defaultScannerDecoderBinary
	}
	if c.Scanner.DecodeTimeout <= 0 {
		c.Scanner.DecodeTimeout = defaultScannerDecodeTimeout
	}
	if c.Scanner.StartPauseMillis < 0 {
		c.Scanner.StartPauseMillis = defaultScannerStartPauseMillis
	}
	if c.Scanner.RestartDelay <= 0 {
		c.Scanner.RestartDelay = defaultScannerRestartDelay
	}
	if c.Scanner.MaxAutoRestarts <= 0 {
		c.Scanner.MaxAutoRestarts = defaultScannerMaxAutoRestarts
	}
	if c.Scanner.ManualPromptDelay <= 0 {
		c.Scanner.ManualPromptDelay = defaultScannerManualPromptDelay
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
