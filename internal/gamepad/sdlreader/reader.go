// Package sdlreader polls controllers through SDL3 and emits navigation
// events. Importing it loads the SDL3 shared library.
package sdlreader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/mapnav/internal/gamepad"
	"github.com/soar/mapnav/internal/navigation"
)

const deadzone = 0.05

var ErrInit = errors.New("SDL joystick init failed")

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       sdl.JoystickID
}

// Config controls polling.
type Config struct {
	Threshold    float64
	PollInterval time.Duration
}

// Reader reads gamepad input from the SDL3 Joystick API and emits
// navigation events for the first connected joystick.
type Reader struct {
	translator *gamepad.Translator
	poll       time.Duration
	joysticks  map[sdl.JoystickID]*joystickInfo
	activeID   sdl.JoystickID
	hasActive  bool
	events     chan navigation.Event
}

func NewReader(cfg Config) *Reader {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 16 * time.Millisecond
	}
	return &Reader{
		translator: gamepad.NewTranslator(cfg.Threshold),
		poll:       poll,
		joysticks:  make(map[sdl.JoystickID]*joystickInfo),
		events:     make(chan navigation.Event, 64),
	}
}

// Events returns the channel on which navigation events are sent. It is
// closed when Run returns.
func (r *Reader) Events() <-chan navigation.Event {
	return r.events
}

// Run initializes SDL and polls until ctx is cancelled. SDL requires the
// calls to stay on one OS thread, so Run locks it.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.events)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("%w: %s", ErrInit, sdl.GetError())
	}
	defer sdl.Quit()

	log.Println("SDL3 Joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		case <-ticker.C:
		}

		r.processEvents()
		r.pollState()
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	info := &joystickInfo{
		joystick: js,
		mapping:  gamepad.GetMapping(vendorID, productID),
		name:     sdl.GetJoystickName(js),
		id:       jsID,
	}
	r.joysticks[jsID] = info

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) mapping=%s",
		info.name, vendorID, productID, info.mapping.Name)

	if !r.hasActive {
		r.activeID = jsID
		r.hasActive = true
		log.Printf("Active joystick set: %s (ID=%d)", info.name, jsID)
	}
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false
	// Release whatever the old controller was holding before promoting
	r.emit(r.translator.Next(gamepad.State{}))

	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activeID = id
			r.hasActive = true
			log.Printf("Active joystick switched to: %s (ID=%d)", js.name, id)
			return
		}
	}
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	r.hasActive = false
}

func (r *Reader) pollState() {
	if !r.hasActive {
		return
	}
	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}
	r.emit(r.translator.Next(readState(info)))
}

func readState(info *joystickInfo) gamepad.State {
	js := info.joystick
	state := gamepad.State{
		Connected:      true,
		Name:           info.name,
		ControllerType: info.mapping.Name,
	}

	for _, am := range info.mapping.Axes {
		val := gamepad.NormalizeAxis(sdl.GetJoystickAxis(js, am.Index))
		if am.Invert {
			val = -val
		}
		val = gamepad.ApplyDeadzone(val, deadzone)
		switch am.Target {
		case "left_x":
			state.LeftStick.X = val
		case "left_y":
			state.LeftStick.Y = val
		case "right_x":
			state.RightStick.X = val
		case "right_y":
			state.RightStick.Y = val
		}
	}

	numButtons := sdl.GetNumJoystickButtons(js)
	for _, bm := range info.mapping.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		if sdl.GetJoystickButton(js, bm.Index) {
			state.Press(bm.Target)
		}
	}

	if info.mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
		state.SetHat(sdl.GetJoystickHat(js, 0))
	}
	return state
}

func (r *Reader) emit(events []navigation.Event) {
	for _, ev := range events {
		select {
		case r.events <- ev:
		default:
			// Drop if channel is full to avoid blocking the SDL thread
			log.Printf("Gamepad event dropped: %+v", ev)
		}
	}
}
