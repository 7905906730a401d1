package healthsvc

import (
	"encoding/json"
	"net/http"
	"time"

	libgorm "gorm.io/gorm"
)

type status struct {
	Status    string  `json:"status"`
	DBStatus  string  `json:"dbStatus"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
}

// NewHTTPHandler reports process liveness: uptime since start and whether the
// database answers a ping. 503 when it does not.
func NewHTTPHandler(db *libgorm.DB, start time.Time) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := status{
			Status:    "OK",
			DBStatus:  "connected",
			Uptime:    time.Since(start).Seconds(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		code := http.StatusOK
		if err := ping(db); err != nil {
			s.Status = "DOWN"
			s.DBStatus = "disconnected"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(s)
	})
}

func ping(db *libgorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
