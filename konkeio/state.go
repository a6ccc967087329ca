package konkeio

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// flag is an on/off value as reported by the gateway. Konke firmware reports relays
// as the string "open" when on and "close" (or anything else) when off; newer gateways
// send plain JSON booleans. Both decode to true only for "open" / true.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = false
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = s == "open"
		return nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flag(v)
		return nil
	}
	return fmt.Errorf("konkeio: unexpected status value %s", b)
}

// flags is a per-socket status list. Single-socket devices report a scalar.
type flags []flag

func (fs *flags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []flag
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*fs = list
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*fs = nil
		return nil
	}
	var one flag
	if err := one.UnmarshalJSON(b); err != nil {
		return err
	}
	*fs = flags{one}
	return nil
}

func (fs flags) bools() []bool {
	out := make([]bool, len(fs))
	for i, f := range fs {
		out[i] = bool(f)
	}
	return out
}

// state is the document published on {prefix}/{host}/state
type state struct {
	Seq         uint64   `json:"seq"`
	Online      *bool    `json:"online"`
	MAC         string   `json:"mac"`
	Status      flags    `json:"status"`
	USBStatus   flags    `json:"usb_status"`
	LightStatus flag     `json:"light_status"`
	Brightness  int      `json:"brightness"`
	Color       [3]uint8 `json:"color"`
	CT          int      `json:"ct"`
	Power       float64  `json:"power"`
	IR          bool     `json:"ir"`
	RF          bool     `json:"rf"`
}

// online is true unless the gateway explicitly says otherwise
func (s *state) online() bool {
	return s.Online == nil || *s.Online
}

// request is published on {prefix}/{host}/get; the gateway echoes Seq in its answer
type request struct {
	Seq uint64 `json:"seq"`
}

type learnResult struct {
	Slot int  `json:"slot"`
	OK   bool `json:"ok"`
}

// command is published on {prefix}/{host}/set
type command struct {
	Op      string `json:"op"`
	Index   int    `json:"index"`
	Value   int    `json:"value,omitempty"`
	Color   []int  `json:"color,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Timeout int    `json:"timeout,omitempty"`
}
