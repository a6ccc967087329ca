package httpctl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/brutella/hc/log"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	tfaccessory "github.com/cloudkucooland/konkebridge/accessory"
	"github.com/cloudkucooland/konkebridge/config"
	"github.com/cloudkucooland/konkebridge/konke"
	"github.com/cloudkucooland/konkebridge/platform"
)

// Platform is the primary handle
type Platform struct {
	Running bool
}

var srv *http.Server

// NewRouter returns the control channel routes
func NewRouter(debug bool) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", homeHandler)
	konke.RegisterRoutes(r)
	if debug {
		r.Use(debugMW)
	}
	return r
}

// Startup is called by the platform management to get things running
func (h Platform) Startup(c *config.Config) platform.Control {
	if c.HTTPAddress == "" {
		log.Info.Print("no HTTPAddress set, HTTP control channel disabled")
		return h
	}

	srv = &http.Server{
		Addr:         c.HTTPAddress,
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      NewRouter(logrus.IsLevelEnabled(logrus.DebugLevel)),
	}

	go func() {
		log.Info.Printf("starting up HTTP control channel on %s", c.HTTPAddress)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Info.Print(err)
		}
	}()

	h.Running = true
	return h
}

// Shutdown is called by the platform management to shut things down
func (h Platform) Shutdown() platform.Control {
	if srv == nil {
		return h
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Info.Print(err)
	}
	h.Running = false
	return h
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	log.Debug.Print("HomeHandler requested")
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	fmt.Fprint(w, "{ \"status\": \"OK\" }")
}

func debugMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		dump, _ := httputil.DumpRequest(req, false)
		log.Debug.Print(string(dump))
		next.ServeHTTP(res, req)
	})
}

// AddAccessory - do not use, just satisfies the Platform interface
func (h Platform) AddAccessory(a *tfaccessory.TFAccessory) error {
	return fmt.Errorf("HTTP platform does not take accessories: [%s]", a.Name)
}

// GetAccessory - do not use, just satisfies the Platform interface
func (h Platform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	return nil, false
}

// Background - just satisfies the Platform interface
func (h Platform) Background() {
	// nothing to do
}
