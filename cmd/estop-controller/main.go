// Command estop-controller manages a software e-stop output line: one-shot
// commands for scripting plus a monitor daemon that publishes transitions to
// MQTT and serves an HTTP status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/estop-controller/internal/estop"
	"github.com/sweeney/estop-controller/internal/mqtt"
	"github.com/sweeney/estop-controller/internal/polarity"
	"github.com/sweeney/estop-controller/internal/status"
	"github.com/sweeney/estop-controller/internal/web"
)

const usage = `usage: estop-controller [flags] <command>

Commands:
  status         print the current e-stop status (default)
  activate       engage the e-stop (manual override)
  reset          clear the manual override
  set-mode nc|no set the wiring mode (takes effect on next activate/reset)
  monitor        run as a daemon: poll status, publish MQTT, serve HTTP
  toggle         demo: alternate activate/reset until interrupted
`

func main() {
	pin := flag.Int("pin", 0, "GPIO pin override, BCM numbering (0 = persisted config)")
	configPath := flag.String("config", "", "config file path (default ~/.estop_config.json)")
	poll := flag.Duration("poll", 100*time.Millisecond, "status polling interval (monitor)")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "heartbeat interval, 0 to disable (monitor)")
	broker := flag.String("broker", "", "MQTT broker address, empty to disable telemetry (monitor)")
	httpAddr := flag.String("http", "", "HTTP status address, empty to disable (monitor)")
	interval := flag.Duration("interval", time.Second, "toggle interval (toggle)")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "status"
	}

	if err := run(cmd, flag.Args(), *pin, *configPath, *poll, *heartbeat, *broker, *httpAddr, *interval); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cmd string, args []string, pin int, configPath string, poll, heartbeat time.Duration, broker, httpAddr string, interval time.Duration) error {
	ctrl := estop.New(estop.Options{ConfigPath: configPath, Pin: pin})

	// One-shot commands deliberately do NOT call Shutdown: shutdown asserts
	// the engaged level, which would undo a reset the moment the process
	// exits. The line keeps the state the command drove. Only the daemon
	// modes (monitor, toggle) own the line's lifetime and shut down.
	switch cmd {
	case "status":
		printStatus(ctrl.QueryStatus())
		return nil

	case "activate":
		if err := ctrl.Activate(); err != nil {
			return fmt.Errorf("activate: %w", err)
		}
		fmt.Println("e-stop activated")
		printStatus(ctrl.QueryStatus())
		return nil

	case "reset":
		if err := ctrl.Reset(); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Println("e-stop reset")
		printStatus(ctrl.QueryStatus())
		return nil

	case "set-mode":
		if len(args) < 2 {
			return fmt.Errorf("set-mode: missing mode argument (nc or no)")
		}
		mode, ok := polarity.ParseMode(strings.ToLower(args[1]))
		if !ok {
			return fmt.Errorf("set-mode: unknown mode %q (want nc or no)", args[1])
		}
		if err := ctrl.SetMode(mode); err != nil {
			return fmt.Errorf("set-mode: %w", err)
		}
		fmt.Printf("mode set to %s (%s)\n", mode, mode.Description())
		return nil

	case "monitor":
		return runMonitor(ctrl, poll, heartbeat, broker, httpAddr)

	case "toggle":
		return runToggle(ctrl, interval)
	}

	flag.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

func printStatus(st estop.Status) {
	fmt.Printf("State:           %s\n", st.State)
	fmt.Printf("Wiring mode:     %s (%s)\n", st.Mode, st.Mode.Description())
	fmt.Printf("Output level:    %s\n", levelString(st.Level))
	fmt.Printf("Manual override: %v\n", st.ManualOverride)
	fmt.Printf("GPIO pin:        %d\n", st.Pin)
	fmt.Printf("Output:          %s\n", outputString(st.OutputAvailable))
	fmt.Printf("Platform:        %s\n", st.Platform)
	if st.Terminated {
		fmt.Println("Controller:      shut down")
	}
}

func levelString(level bool) string {
	if level {
		return "HIGH"
	}
	return "LOW"
}

func outputString(available bool) string {
	if available {
		return "hardware"
	}
	return "simulation (no GPIO)"
}

func runMonitor(ctrl *estop.Controller, poll, heartbeat time.Duration, broker, httpAddr string) error {
	var publisher mqtt.Publisher
	var connStatus mqtt.ConnectionStatus
	if broker != "" {
		real := mqtt.NewRealPublisher(broker)
		defer real.Close()
		publisher = real
		connStatus = real
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      poll.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPAddr:    httpAddr,
		ConfigPath:  ctrl.ConfigPath(),
	})
	tracker.Update(ctrl.QueryStatus())

	if publisher != nil {
		snap := tracker.Snapshot()
		event := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("monitoring: poll=%v heartbeat=%v broker=%q", poll, heartbeat, broker)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return monitorLoop(ctrl, publisher, connStatus, tracker, heartbeat, time.Now, ticker.C, sigCh)
}

func monitorLoop(ctrl *estop.Controller, publisher mqtt.Publisher, connStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastState := ctrl.QueryStatus().State
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			// Fail-safe level first: the shutdown write must not wait on
			// telemetry.
			if err := ctrl.Shutdown(); err != nil {
				log.Printf("controller shutdown: %v", err)
			}

			if tracker != nil {
				if connStatus != nil {
					tracker.SetMQTTConnected(connStatus.IsConnected())
				}
				tracker.Update(ctrl.QueryStatus())
			}
			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			t := now()
			st := ctrl.QueryStatus()

			if st.State != lastState {
				log.Printf("transition: %s -> %s (mode=%s level=%s)", lastState, st.State, st.Mode, levelString(st.Level))
				if publisher != nil {
					event := mqtt.TransitionEvent{
						Timestamp: t,
						Type:      transitionFor(st.State),
						State:     st.State,
						Mode:      st.Mode,
						Level:     st.Level,
					}
					if err := publisher.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
				lastState = st.State
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				log.Printf("heartbeat: state=%s mode=%s override=%v", st.State, st.Mode, st.ManualOverride)
				if publisher != nil {
					event := mqtt.SystemEvent{
						Timestamp: t,
						Event:     "HEARTBEAT",
					}
					if tracker != nil {
						if connStatus != nil {
							tracker.SetMQTTConnected(connStatus.IsConnected())
						}
						tracker.Update(st)
						snap := tracker.Snapshot()
						event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
					}
					if err := publisher.PublishSystem(event); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			if tracker != nil {
				tracker.Update(st)
				if connStatus != nil {
					tracker.SetMQTTConnected(connStatus.IsConnected())
				}
			}
		}
	}
}

func transitionFor(state polarity.State) mqtt.TransitionType {
	if state == polarity.StateEngaged {
		return mqtt.TransitionActivated
	}
	return mqtt.TransitionReset
}

func runToggle(ctrl *estop.Controller, interval time.Duration) error {
	log.Printf("toggle demo: alternating every %v (Ctrl+C to stop)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return toggleLoop(ctrl, ticker.C, sigCh)
}

func toggleLoop(ctrl *estop.Controller, tick <-chan time.Time, sig <-chan os.Signal) error {
	engage := true
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, stopping toggle demo", s)
			return ctrl.Shutdown()

		case <-tick:
			var err error
			if engage {
				err = ctrl.Activate()
			} else {
				err = ctrl.Reset()
			}
			if err != nil {
				log.Printf("toggle error: %v", err)
				continue
			}
			st := ctrl.QueryStatus()
			log.Printf("state=%s level=%s mode=%s", st.State, levelString(st.Level), st.Mode)
			engage = !engage
		}
	}
}
