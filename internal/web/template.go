package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/estop-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"levelString": func(level bool) string {
		if level {
			return "HIGH"
		}
		return "LOW"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>E-Stop Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.engaged { color: red; font-weight: bold; }
.disengaged { color: green; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.warn { color: orange; }
</style>
</head>
<body>
<h1>E-Stop Controller</h1>

<h2>State</h2>
<table>
<tr><th>E-Stop</th><td class="{{if eq (stateOrUnknown (printf "%s" .Estop.State)) "ENGAGED"}}engaged{{else if eq (stateOrUnknown (printf "%s" .Estop.State)) "DISENGAGED"}}disengaged{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Estop.State)}}</td></tr>
<tr><th>Output level</th><td>{{levelString .Estop.Level}}</td></tr>
<tr><th>Wiring mode</th><td>{{.Estop.Mode.Description}}</td></tr>
<tr><th>Manual override</th><td>{{if .Estop.ManualOverride}}set{{else}}clear{{end}}</td></tr>
<tr><th>GPIO pin</th><td>{{.Estop.Pin}}</td></tr>
<tr><th>Output</th><td{{if not .Estop.OutputAvailable}} class="warn"{{end}}>{{if .Estop.OutputAvailable}}hardware{{else}}simulation{{end}}</td></tr>
<tr><th>Platform</th><td>{{.Estop.Platform}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Poll interval</th><td>{{.Config.PollMs}} ms</td></tr>
<tr><th>Config file</th><td>{{.Config.ConfigPath}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render error: %v", err)
	}
}
