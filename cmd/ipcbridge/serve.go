package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bazelment/yoloswe/ipcbridge/bridge"
	"github.com/bazelment/yoloswe/ipcbridge/protocol"
)

var (
	serveSocket string
	serveClient bool
	serveGreet  string
	serveWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge and log its events until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		var extra []bridge.Option
		switch {
		case serveClient:
			extra = append(extra, bridge.WithClientMode(serveSocket))
		case serveSocket != "":
			extra = append(extra, bridge.WithSocketPath(serveSocket))
		}

		opts, err := bridgeOptions(log, extra...)
		if err != nil {
			return err
		}
		b, err := bridge.New(opts...)
		if err != nil {
			return fmt.Errorf("create bridge: %w", err)
		}

		out := cmd.OutOrStdout()
		printEvents(b, out, serveGreet)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := b.Start(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("start bridge: %w", err)
		}
		defer b.Stop()

		fmt.Fprintf(out, "Bridge started on path %s\n", b.SocketPath())

		if serveWatch {
			return watchBinary(ctx, b, log)
		}
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveSocket, "socket", "", "Socket path (server: optional, client: required)")
	serveCmd.Flags().BoolVar(&serveClient, "client", false, "Connect to an existing socket instead of listening")
	serveCmd.Flags().StringVar(&serveGreet, "greet", "", "Message sent to every client that connects")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Restart the bridge when its binary changes")
}

// printEvents writes one line per bridge event to out. When greet is set,
// each connecting client is sent greet as a base64 payload.
func printEvents(b *bridge.Bridge, out io.Writer, greet string) {
	b.OnConnect(func(m protocol.ConnectMessage) {
		fmt.Fprintf(out, "Client connected id=%s pid=%d\n", m.ID, m.PID)
		if greet == "" {
			return
		}
		msg := protocol.OutgoingMessage{ID: m.ID, Msg: base64.StdEncoding.EncodeToString([]byte(greet))}
		if err := b.Send(msg); err != nil {
			fmt.Fprintf(out, "Greeting %s failed: %v\n", m.ID, err)
		}
	})
	b.OnDisconnect(func(m protocol.DisconnectMessage) {
		fmt.Fprintf(out, "Client disconnected id=%s\n", m.ID)
	})
	b.OnMessage(func(m protocol.IncomingMessage) {
		fmt.Fprintf(out, "Received message id=%s: %s\n", m.ID, decodePayload(m.Msg))
	})
	b.OnError(func(m protocol.ErrorMessage) {
		fmt.Fprintf(out, "Bridge error: %s: %s\n", m.Error, m.Details)
	})
}

// decodePayload shows a base64 payload as text, or the raw payload if it is
// not valid base64.
func decodePayload(msg string) string {
	data, err := base64.StdEncoding.DecodeString(msg)
	if err != nil {
		return msg
	}
	return string(data)
}

// restart stops the bridge and starts it again with the same options. An
// interrupt that lands during the restart is a clean shutdown.
func restart(ctx context.Context, b *bridge.Bridge, log *slog.Logger) error {
	log.Info("restarting bridge", "path", b.BinaryPath())
	if err := b.Stop(); err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		if ctx.Err() != nil {
			log.Info("restart interrupted", "error", err)
			return nil
		}
		return fmt.Errorf("restart bridge: %w", err)
	}
	log.Info("bridge restarted", "socket", b.SocketPath())
	return nil
}
