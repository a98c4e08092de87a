package daemon

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/distatus/battery"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rg3/battery-monitor/pkg/config"
	"github.com/rg3/battery-monitor/pkg/version"
)

func getState(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, pollLoop.Status())
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func setPollInterval(c *gin.Context) {
	var seconds int
	if err := c.BindJSON(&seconds); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if seconds < config.MinPollIntervalSeconds || seconds > config.MaxPollIntervalSeconds {
		err := fmt.Errorf("poll interval must be between %d and %d seconds, got %d",
			config.MinPollIntervalSeconds, config.MaxPollIntervalSeconds, seconds)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	// A failed save rolls the interval back, so the daemon never runs a
	// cadence the caller was told did not apply.
	prev := int(conf.PollInterval() / time.Second)
	conf.SetPollIntervalSeconds(seconds)
	if err := conf.Save(); err != nil {
		conf.SetPollIntervalSeconds(prev)
		logrus.Errorf("failed to save config: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set poll interval to %ds", seconds)

	// Sample immediately, so the new cadence takes effect without waiting
	// out the old sleep.
	pollLoop.Wake()

	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set poll interval to %ds", seconds))
}

func getBatteryInfo(c *gin.Context) {
	batteries, err := battery.GetAll()
	if err != nil {
		logrus.Errorf("getBatteryInfo failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if len(batteries) == 0 {
		logrus.Errorf("no batteries found")
		c.IndentedJSON(http.StatusInternalServerError, "no batteries found")
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("no batteries found"))
		return
	}

	// Single-battery host; the first one is the one the monitor watches.
	bat := batteries[0]
	if bat.State == battery.Discharging {
		bat.ChargeRate = -bat.ChargeRate
	}

	c.IndentedJSON(http.StatusOK, bat)
}

func getShutdownActive(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, sdControl.Active())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
