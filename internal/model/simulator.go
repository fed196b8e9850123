package model

// SimulatorMode selects one of the four synthesis strategies in spec §4.4.
type SimulatorMode string

const (
	SimulatorLoopback    SimulatorMode = "loopback"
	SimulatorScripted    SimulatorMode = "scripted"
	SimulatorBurst       SimulatorMode = "burst"
	SimulatorErrorInject SimulatorMode = "error-inject"
)

// SimulatorAction is one scripted-event action.
type SimulatorAction string

const (
	SimActionSend       SimulatorAction = "send"
	SimActionReceive    SimulatorAction = "receive"
	SimActionError      SimulatorAction = "error"
	SimActionDisconnect SimulatorAction = "disconnect"
)

// SimulatorEvent is one entry in a scripted simulator timeline.
type SimulatorEvent struct {
	DelayMS int
	Action  SimulatorAction
	Data    []byte
}

// SimulatorScript is an ordered, optionally looping timeline of events.
type SimulatorScript struct {
	Events []SimulatorEvent
	Loop   bool
}

// SimulatorConfig configures one simulator handle, per spec §3.
type SimulatorConfig struct {
	Mode            SimulatorMode
	Script          *SimulatorScript
	ErrorRate       float64
	BurstSize       int
	BurstIntervalMS int
}
