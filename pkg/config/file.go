package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rg3/battery-monitor/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		PollIntervalSeconds:  ptr.To(20),
		SafetyWindowSeconds:  ptr.To(60),
		SignDwellSeconds:     ptr.To(5),
		ShutdownDelayMinutes: ptr.To(2),
		AllowNonRootAccess:   ptr.To(false),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		defaults := *defaultFileConfig
		c = &defaults
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	PollIntervalSeconds  *int  `json:"pollIntervalSeconds,omitempty"`
	SafetyWindowSeconds  *int  `json:"safetyWindowSeconds,omitempty"`
	SignDwellSeconds     *int  `json:"signDwellSeconds,omitempty"`
	ShutdownDelayMinutes *int  `json:"shutdownDelayMinutes,omitempty"`
	AllowNonRootAccess   *bool `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		PollIntervalSeconds:  ptr.To(int(c.PollInterval() / time.Second)),
		SafetyWindowSeconds:  ptr.To(int(c.SafetyWindow() / time.Second)),
		SignDwellSeconds:     ptr.To(int(c.SignDwell() / time.Second)),
		ShutdownDelayMinutes: ptr.To(c.ShutdownDelayMinutes()),
		AllowNonRootAccess:   ptr.To(c.AllowNonRootAccess()),
	}

	return rawConfig, nil
}

func (f *File) PollInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var seconds int

	if f.c.PollIntervalSeconds != nil {
		seconds = *f.c.PollIntervalSeconds
	} else {
		seconds = *defaultFileConfig.PollIntervalSeconds
	}

	if seconds < MinPollIntervalSeconds {
		seconds = MinPollIntervalSeconds
	}
	if seconds > MaxPollIntervalSeconds {
		seconds = MaxPollIntervalSeconds
	}

	return time.Duration(seconds) * time.Second
}

func (f *File) SafetyWindow() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var seconds int

	if f.c.SafetyWindowSeconds != nil {
		seconds = *f.c.SafetyWindowSeconds
	} else {
		seconds = *defaultFileConfig.SafetyWindowSeconds
	}

	return time.Duration(seconds) * time.Second
}

func (f *File) SignDwell() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var seconds int

	if f.c.SignDwellSeconds != nil {
		seconds = *f.c.SignDwellSeconds
	} else {
		seconds = *defaultFileConfig.SignDwellSeconds
	}

	return time.Duration(seconds) * time.Second
}

func (f *File) ShutdownDelayMinutes() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var minutes int

	if f.c.ShutdownDelayMinutes != nil {
		minutes = *f.c.ShutdownDelayMinutes
	} else {
		minutes = *defaultFileConfig.ShutdownDelayMinutes
	}

	return minutes
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var allowNonRootAccess bool

	if f.c.AllowNonRootAccess != nil {
		allowNonRootAccess = *f.c.AllowNonRootAccess
	} else {
		allowNonRootAccess = *defaultFileConfig.AllowNonRootAccess
	}

	return allowNonRootAccess
}

func (f *File) SetPollIntervalSeconds(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	if i < MinPollIntervalSeconds || i > MaxPollIntervalSeconds {
		panic("poll interval out of range")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.PollIntervalSeconds = &i
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}
	configString := string(b)

	if strings.TrimSpace(configString) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	// No backing file means nothing to persist. Runtime changes still
	// apply, they just do not survive a restart.
	if f.filepath == "" {
		return nil
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"pollInterval":         f.PollInterval().String(),
		"safetyWindow":         f.SafetyWindow().String(),
		"signDwell":            f.SignDwell().String(),
		"shutdownDelayMinutes": f.ShutdownDelayMinutes(),
		"allowNonRootAccess":   f.AllowNonRootAccess(),
	}
}
