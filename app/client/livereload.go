//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/sirupsen/logrus"
)

// connectLiveReload listens on the dev server's reload socket and reloads
// the page when told to. Only local pages connect.
func connectLiveReload(log logrus.FieldLogger) {
	loc := window.Get("location")
	switch loc.Get("hostname").String() {
	case "localhost", "127.0.0.1":
	default:
		return
	}

	scheme := "ws://"
	if loc.Get("protocol").String() == "https:" {
		scheme = "wss://"
	}
	ws := js.Global().Get("WebSocket").New(scheme + loc.Get("host").String() + "/__livereload")

	ws.Set("onopen", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ws.Call("send", `{"type":"HELLO"}`)
		return nil
	}))
	ws.Set("onmessage", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(args[0].Get("data").String()), &msg); err != nil {
			log.WithError(err).Debug("bad live reload message")
			return nil
		}
		if msg.Type == "RELOAD" {
			loc.Call("reload")
		}
		return nil
	}))
	ws.Set("onclose", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		log.Debug("live reload disconnected")
		return nil
	}))
}
