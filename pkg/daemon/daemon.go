// Package daemon runs the battery monitor: the poll loop, its worker
// subsystems, and the local control socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rg3/battery-monitor/pkg/acpi"
	"github.com/rg3/battery-monitor/pkg/audio"
	"github.com/rg3/battery-monitor/pkg/config"
	"github.com/rg3/battery-monitor/pkg/shutdown"
	"github.com/rg3/battery-monitor/pkg/sign"
)

// Options carries everything the daemon needs to start. The sound paths,
// font, and shutdown command are required; the rest have defaults.
type Options struct {
	ConfigPath     string // optional; empty means built-in defaults, no SIGHUP reload
	UnixSocketPath string
	AllowNonRoot   bool

	LowBatterySound    string
	ShutdownStartSound string
	ShutdownStopSound  string
	Font               string
	ShutdownCommand    string

	// PollIntervalSeconds overrides the config file when non-zero.
	PollIntervalSeconds int
}

var (
	conf      config.Config
	pollLoop  *Loop
	sdControl *shutdown.Controller
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/state", getState)
	router.GET("/config", getConfig)
	router.PUT("/config/period", setPollInterval)
	router.GET("/battery-info", getBatteryInfo)
	router.GET("/shutdown-active", getShutdownActive)
	router.GET("/version", getVersion)

	return router
}

// Run starts the daemon and blocks until SIGINT/SIGTERM. The poll loop
// itself never terminates; only startup failures make Run return an error.
func Run(opts Options) error {
	var err error
	if opts.ConfigPath != "" {
		conf, err = config.NewFile(opts.ConfigPath)
		if err != nil {
			return err
		}
	} else {
		conf = config.NewFileFromConfig(nil, "")
	}
	if opts.PollIntervalSeconds != 0 {
		if opts.PollIntervalSeconds < config.MinPollIntervalSeconds || opts.PollIntervalSeconds > config.MaxPollIntervalSeconds {
			return pkgerrors.Errorf("poll interval must be between %d and %d seconds, got %d",
				config.MinPollIntervalSeconds, config.MaxPollIntervalSeconds, opts.PollIntervalSeconds)
		}
		conf.SetPollIntervalSeconds(opts.PollIntervalSeconds)
	}
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	// Receive SIGHUP to reload config
	if opts.ConfigPath != "" {
		go func() {
			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGHUP)
			for range sigc {
				err := conf.Load()
				if err != nil {
					logrus.Errorf("failed to reload config: %v", err)
					continue
				}
				logrus.Infof("config reloaded")
			}
		}()
	}

	// The monitor is pointless if it cannot make noise, so a missing
	// player is fatal.
	sounds, err := audio.NewDispatcher(opts.LowBatterySound, opts.ShutdownStartSound, opts.ShutdownStopSound)
	if err != nil {
		return err
	}

	// An unusable display is not fatal: signs degrade to log lines.
	var surface sign.Surface
	if s, err := sign.NewDBusSurface(opts.Font); err != nil {
		logrus.Warnf("failed to open display surface: %v", err)
	} else {
		surface = s
	}
	signs := sign.NewWorker(surface, conf.SignDwell())
	signs.Start()

	sdControl = shutdown.New(opts.ShutdownCommand, conf.ShutdownDelayMinutes(), sounds)

	pollLoop = NewLoop(conf, &acpiSource{reader: acpi.NewReader()}, signs, sounds, sdControl)

	// SIGUSR1 forces an immediate sample.
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGUSR1)
		for range sigc {
			pollLoop.Wake()
		}
	}()

	router := setupRoutes()
	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", opts.UnixSocketPath)
	if err != nil {
		return err
	}

	if conf.AllowNonRootAccess() || opts.AllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", opts.UnixSocketPath)
		err = os.Chmod(opts.UnixSocketPath, 0777)
		if err != nil {
			return err
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("control socket listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	go func() {
		logrus.Debugln("poll loop starts")

		pollLoop.Run()

		logrus.Errorf("poll loop exited unexpectedly")
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down control socket")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown control socket: %v", err)
	}
	cancel()

	if surface != nil {
		logrus.Info("closing display surface")
		if err := surface.Close(); err != nil {
			logrus.Errorf("failed to close display surface: %v", err)
		}
	}

	logrus.Info("exiting")
	return nil
}
