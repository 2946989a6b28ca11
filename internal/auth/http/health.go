package http

import (
	"net/http"
	"time"

	"github.com/fieldbook/fieldbook/internal/auth/revocation"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/pkg/httpx"
)

type healthChecks struct {
	Directory   string `json:"directory"`
	Revocations string `json:"revocations"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

// LivezHandler is the liveness probe: 200 whenever the process is serving.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler is the readiness probe. It pings the principal directory and
// the revocation store; either one failing means the gate cannot make
// decisions and the instance should be pulled from rotation.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	revocations revocation.Store,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{
			Directory:   "ok",
			Revocations: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Directory = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := revocations.Ping(r.Context()); err != nil {
			checks.Revocations = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
