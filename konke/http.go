package konke

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brutella/hc/log"
	"github.com/gorilla/mux"
)

// RegisterRoutes adds the Konke handlers to the HTTP control channel
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/konke/{name}", statusHandler).Methods(http.MethodGet)
	r.HandleFunc("/konke/{name}/send/{command}", sendHandler).Methods(http.MethodPost)
	r.HandleFunc("/konke/{name}/learn/{slot}", learnHandler).Methods(http.MethodPost)
}

type entityStatus struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	State string   `json:"state"`
	Power *float64 `json:"power,omitempty"`
}

type accessoryStatus struct {
	Name      string         `json:"name"`
	Host      string         `json:"host"`
	MAC       string         `json:"mac"`
	Available bool           `json:"available"`
	Entities  []entityStatus `json:"entities"`
}

func (b *binding) status() accessoryStatus {
	s := accessoryStatus{
		Name:      b.facade.Name(),
		Host:      b.facade.Device().Host(),
		MAC:       b.facade.UniqueID(),
		Available: b.facade.Available(),
	}
	for _, e := range b.entities {
		es := entityStatus{ID: e.UniqueID(), Name: e.Name(), State: StateUnknown.String()}
		if st, ok := e.(interface{ State() State }); ok {
			es.State = st.State().String()
		}
		if o, ok := e.(*Outlet); ok {
			if w, ok := o.CurrentPower(); ok {
				es.Power = &w
			}
		}
		s.Entities = append(s.Entities, es)
	}
	return s
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info.Println(err.Error())
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"status": "bad", "error": err.Error()})
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, ErrUnsupported):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	b, ok := lookup(mux.Vars(r)["name"])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown accessory"))
		return
	}
	writeJSON(w, http.StatusOK, b.status())
}

func remoteFor(w http.ResponseWriter, r *http.Request) (*Remote, bool) {
	b, ok := lookup(mux.Vars(r)["name"])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown accessory"))
		return nil, false
	}
	rem := b.remote()
	if rem == nil {
		writeError(w, http.StatusConflict, ErrUnsupported)
		return nil, false
	}
	return rem, true
}

// intQuery reads an optional non-negative integer query parameter
func intQuery(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("bad " + key)
	}
	return n, nil
}

// sendHandler emits one or more comma separated commands, e.g. ir_1001,ir_1002;
// repeats and delay (milliseconds) are optional query parameters
func sendHandler(w http.ResponseWriter, r *http.Request) {
	rem, ok := remoteFor(w, r)
	if !ok {
		return
	}
	repeats, err := intQuery(r, "repeats", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	delay, err := intQuery(r, "delay", int(DefaultSendDelay/time.Millisecond))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	commands := strings.Split(mux.Vars(r)["command"], ",")
	if err := rem.SendCommand(r.Context(), commands, repeats, time.Duration(delay)*time.Millisecond); err != nil {
		writeError(w, errorCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// learnHandler records the next code into slot; timeout is in seconds and
// defaults to DefaultLearnTimeout
func learnHandler(w http.ResponseWriter, r *http.Request) {
	rem, ok := remoteFor(w, r)
	if !ok {
		return
	}
	slot, err := strconv.Atoi(mux.Vars(r)["slot"])
	if err != nil || slot < MinSlot || slot > MaxSlot {
		writeError(w, http.StatusBadRequest, errors.New("bad slot"))
		return
	}
	timeout, err := intQuery(r, "timeout", int(DefaultLearnTimeout/time.Second))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	learned, err := rem.Learn(r.Context(), slot, time.Duration(timeout)*time.Second)
	if err != nil {
		writeError(w, errorCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slot": slot, "learned": learned})
}
