package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/studyshare/internal/flagx"
	"github.com/dmitrijs2005/studyshare/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used only for unmarshalling the config file.
type FileConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SessionDB          *string         `json:"session_db" yaml:"session_db"`
	MaxUploadSize      *int64          `json:"max_upload_size" yaml:"max_upload_size"`
	LogLevel           *string         `json:"log_level" yaml:"log_level"`
}

func parseFile(cfg *Config) {
	path := flagx.ConfigFile(EnvPrefix + "CONFIG")
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(fmt.Errorf("parse config file %s: %w", path, err))
	}

	if fc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *fc.ServerEndpointAddr
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.SessionDB != nil {
		cfg.SessionDB = *fc.SessionDB
	}
	if fc.MaxUploadSize != nil {
		cfg.MaxUploadSize = *fc.MaxUploadSize
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
}
