package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ac-controller/internal/status"
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
	"temp": func(v float64) string {
		return fmt.Sprintf("%.1f °C", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AC Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.restricted { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>AC Controller</h1>

<h2>State</h2>
<table>
<tr><th>Temperature</th><td>{{if .HaveReading}}{{temp .Temperature}}{{else}}no reading yet{{end}}</td></tr>
<tr><th>AC Power</th><td class="{{if not .Ready}}unknown{{else if .Unit.Power}}on{{else}}off{{end}}">{{if not .Ready}}UNKNOWN{{else if .Unit.Power}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>Target</th><td>{{temp .Unit.TargetTemp}}</td></tr>
<tr><th>Restricted window</th><td{{if .Restricted}} class="restricted"{{end}}>{{.Window}}{{if .Restricted}} (active){{end}}</td></tr>
<tr><th>Band</th><td>on above {{temp .Band.On}}, off below {{temp .Band.Off}}</td></tr>
</table>

<h2>Unit</h2>
<table>
<tr><th>Name</th><td>{{.UnitInfo.Name}}</td></tr>
<tr><th>ID</th><td>{{.UnitInfo.ID}}</td></tr>
<tr><th>Address</th><td>{{.UnitInfo.Addr}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.SensorHost}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>AC ON</th><td>{{.Counts.TurnOn}}</td></tr>
<tr><th>AC OFF</th><td>{{.Counts.TurnOff}}</td></tr>
<tr><th>Sensor faults</th><td>{{.Counts.SensorFaults}}</td></tr>
<tr><th>Unit read faults</th><td>{{.Counts.ReadFaults}}</td></tr>
<tr><th>Unit push faults</th><td>{{.Counts.PushFaults}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Cycle interval</th><td>{{.Config.IntervalMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
