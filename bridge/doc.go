// Package bridge supervises the ipc-json-bridge subprocess.
//
// The bridge binary listens on (or connects to) a local socket and relays
// client traffic over its standard streams as newline-delimited JSON. A
// Bridge spawns it, waits for the versioned ready handshake, and turns every
// stdout frame into a typed event.
//
// # Basic Usage
//
//	b, err := bridge.New(
//	    bridge.WithBinaryDir("/opt/myapp/bin"),
//	    bridge.WithSocketPath("/tmp/myapp.sock"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b.OnConnect(func(m protocol.ConnectMessage) {
//	    fmt.Printf("client %s connected (pid %d)\n", m.ID, m.PID)
//	})
//	b.OnMessage(func(m protocol.IncomingMessage) {
//	    _ = b.Send(protocol.OutgoingMessage{ID: m.ID, Msg: m.Msg})
//	})
//	b.OnError(func(m protocol.ErrorMessage) {
//	    log.Printf("bridge: %s: %s", m.Error, m.Details)
//	})
//
//	if err := b.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Stop()
//
//	fmt.Println("listening on", b.SocketPath())
//
// # Client Mode
//
// WithClientMode makes the bridge dial an existing socket instead of
// listening:
//
//	b, err := bridge.New(bridge.WithClientMode("/tmp/server.sock"))
//
// # Events
//
// Listeners of each kind run in registration order on one goroutine per
// child process, so they never run concurrently with each other. A listener
// may call Send or Stop. Events queue up to WithEventBufferSize before the
// stdout reader waits for slow listeners.
//
// # Lifecycle
//
// A Bridge moves Unstarted -> Starting -> Ready -> Stopping -> Stopped and
// may be started again once Stopped. A failed start (timeout, early exit, or
// an error frame before the handshake) leaves it Failed for good; construct
// a new Bridge to retry.
package bridge
