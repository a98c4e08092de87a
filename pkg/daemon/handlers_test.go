package daemon

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rg3/battery-monitor/pkg/acpi"
	"github.com/rg3/battery-monitor/pkg/config"
)

// newHandlerFixture wires the package-level daemon state the handlers read
// and returns the control API router.
func newHandlerFixture(c config.Config) http.Handler {
	conf = c
	pollLoop = NewLoop(c, &fakeSource{state: acpi.StateCharging}, &fakeSigns{}, &fakeSounds{}, &fakeShutdown{})
	return setupRoutes()
}

func putPollInterval(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/config/period", strings.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestSetPollInterval_NoConfigFile(t *testing.T) {
	// A daemon started without a config file must still accept interval
	// changes; they apply in memory and are simply not persisted.
	router := newHandlerFixture(config.NewFileFromConfig(nil, ""))

	w := putPollInterval(router, "42")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusCreated, w.Body.String())
	}
	if got := conf.PollInterval(); got != 42*time.Second {
		t.Errorf("PollInterval() = %s, want 42s", got)
	}
}

func TestSetPollInterval_FailedSaveKeepsOldInterval(t *testing.T) {
	// The config file sits in a directory that does not exist, so Save
	// fails. The reported failure must leave the running cadence alone.
	path := filepath.Join(t.TempDir(), "missing-dir", "config.json")
	router := newHandlerFixture(config.NewFileFromConfig(nil, path))

	w := putPollInterval(router, "42")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusInternalServerError, w.Body.String())
	}
	if got := conf.PollInterval(); got != 20*time.Second {
		t.Errorf("PollInterval() = %s after failed save, want the previous 20s", got)
	}
}

func TestSetPollInterval_RejectsOutOfRange(t *testing.T) {
	router := newHandlerFixture(config.NewFileFromConfig(nil, ""))

	for _, body := range []string{"0", "-5", "100000"} {
		w := putPollInterval(router, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status for %q = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
	if got := conf.PollInterval(); got != 20*time.Second {
		t.Errorf("PollInterval() = %s after rejected requests, want 20s", got)
	}
}
