package simulator

import (
	"time"

	"github.com/commwatch/commwatch/internal/model"
)

// runScripted drives the scripted mode's event timeline, per spec §4.4:
// each event waits its delay then performs its action; disconnect ends
// the stream permanently; a looping script restarts from index 0.
func (e *Engine) runScripted() {
	script := e.cfg.Script
	if script == nil || len(script.Events) == 0 {
		return
	}
	for {
		for _, ev := range script.Events {
			if !e.sleep(time.Duration(ev.DelayMS) * time.Millisecond) {
				return
			}
			switch ev.Action {
			case model.SimActionSend, model.SimActionReceive:
				e.emit(ev.Data)
			case model.SimActionError:
				e.stats.AddError()
			case model.SimActionDisconnect:
				return
			}
		}
		if !script.Loop {
			return
		}
	}
}

// sleep waits for d or the engine closing, whichever comes first. It
// reports whether the wait completed normally.
func (e *Engine) sleep(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-e.done:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-e.done:
		return false
	}
}
