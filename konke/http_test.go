package konke

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tfaccessory "github.com/cloudkucooland/konkebridge/accessory"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(method, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestStatusHandler(t *testing.T) {
	dev := newFakeDevice(1, 1)
	dev.power = 12.5
	addAccessory(t, &tfaccessory.TFAccessory{Platform: "Konke", Name: "kettle", IP: "10.0.1.1", Model: "k2"}, dev)

	rec := serve(http.MethodGet, "/konke/kettle")
	require.Equal(t, http.StatusOK, rec.Code)
	var st accessoryStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "kettle", st.Name)
	assert.Equal(t, "28:d9:8a:01:02:03", st.MAC)
	assert.True(t, st.Available)
	require.Len(t, st.Entities, 2)
	assert.Equal(t, "off", st.Entities[0].State)
	require.NotNil(t, st.Entities[0].Power)
	assert.Equal(t, 12.5, *st.Entities[0].Power)
	assert.Equal(t, "28:d9:8a:01:02:03:usb", st.Entities[1].ID)
	assert.Nil(t, st.Entities[1].Power)

	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/konke/nobody").Code)
	assert.Equal(t, http.StatusConflict, serve(http.MethodPost, "/konke/kettle/send/ir_1001").Code)
}

func TestSendAndLearnHandlers(t *testing.T) {
	dev := newFakeDevice(1, 1)
	dev.ir = true
	dev.learnOK = true
	addAccessory(t, &tfaccessory.TFAccessory{Platform: "Konke", Name: "projector", IP: "10.0.1.2", Kind: "remote", Model: "minik pro"}, dev)

	rec := serve(http.MethodPost, "/konke/projector/send/ir_1001,ir_1002?repeats=2&delay=0")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"emit ir 1001", "emit ir 1002", "emit ir 1001", "emit ir 1002"}, dev.calls)

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/konke/projector/send/ir_1001?repeats=x").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(http.MethodGet, "/konke/projector/send/ir_1001").Code)

	dev.calls = nil
	rec = serve(http.MethodPost, "/konke/projector/learn/2000?timeout=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Slot    int  `json:"slot"`
		Learned bool `json:"learned"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2000, res.Slot)
	assert.True(t, res.Learned)
	assert.Equal(t, []string{"learn ir 2000 3s"}, dev.calls)

	dev.calls = nil
	require.Equal(t, http.StatusOK, serve(http.MethodPost, "/konke/projector/learn/2001").Code)
	require.Equal(t, http.StatusOK, serve(http.MethodPost, "/konke/projector/learn/2002?timeout=0").Code)
	assert.Equal(t, []string{"learn ir 2001 10s", "learn ir 2002 0s"}, dev.calls)

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/konke/projector/learn/5").Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/konke/projector/learn/1001?timeout=-1").Code)
}
