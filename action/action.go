package action

// Action is run against another accessory when the source accessory changes state
type Action struct {
	// don't need to store the source device since this is linked
	TriggerState   string // On or Off
	TargetPlatform string
	TargetDevice   string // accessory name
	Verb           string // On, Off, Toggle, Send
	Value          string // per-verb: outlet number for On/Off/Toggle, comma separated commands for Send
}

// see runner for running actions -- circular imports suck
