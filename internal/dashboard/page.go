package dashboard

import "html/template"

var pageTemplate = template.Must(template.New("dashboard").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Email Tracking Dashboard</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f5f6f8; color: #222; }
header { background: #1a237e; color: #fff; padding: 16px 32px; }
header h1 { margin: 0; font-size: 20px; }
.cards { display: flex; gap: 16px; padding: 24px 32px 0; flex-wrap: wrap; }
.card { background: #fff; border-radius: 8px; padding: 16px 24px; min-width: 140px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.card .value { font-size: 28px; font-weight: 600; }
.card .label { color: #666; font-size: 13px; }
.charts { display: flex; gap: 16px; padding: 24px 32px; flex-wrap: wrap; }
.chart-box { background: #fff; border-radius: 8px; padding: 16px; flex: 1; min-width: 280px; max-width: 420px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.records { margin: 0 32px 32px; background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.1); overflow-x: auto; }
table { border-collapse: collapse; width: 100%; font-size: 13px; }
th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #eee; white-space: nowrap; }
th { color: #666; font-weight: 600; }
.yes { color: #2e7d32; font-weight: 600; }
.no { color: #999; }
</style>
</head>
<body>
<header><h1>Email Tracking Dashboard</h1></header>

<div class="cards">
  <div class="card"><div class="value">{{.Summary.TotalSent}}</div><div class="label">Sent</div></div>
  <div class="card"><div class="value">{{.Summary.TotalOpened}}</div><div class="label">Opened</div></div>
  <div class="card"><div class="value">{{.Summary.TotalClicked}}</div><div class="label">Clicked</div></div>
  <div class="card"><div class="value">{{.OpenRate}}</div><div class="label">Open Rate</div></div>
  <div class="card"><div class="value">{{.ClickRate}}</div><div class="label">Click Rate</div></div>
</div>

<div class="charts">
  <div class="chart-box"><canvas id="opens"></canvas></div>
  <div class="chart-box"><canvas id="clicks"></canvas></div>
  <div class="chart-box"><canvas id="devices"></canvas></div>
</div>

<div class="records">
<table>
<thead><tr>
  <th>Email</th><th>Sent</th><th>Opened</th><th>Opens</th><th>Clicked</th><th>Clicks</th>
  <th>Device</th><th>OS</th><th>Browser</th><th>Engagement (s)</th>
</tr></thead>
<tbody>
{{range .Records}}
<tr>
  <td>{{.Email}}</td>
  <td>{{.SentAt.Format "2006-01-02 15:04"}}</td>
  <td>{{if .Opened}}<span class="yes">yes</span>{{else}}<span class="no">no</span>{{end}}</td>
  <td>{{.OpenCount}}</td>
  <td>{{if .ButtonClicked}}<span class="yes">yes</span>{{else}}<span class="no">no</span>{{end}}</td>
  <td>{{.ClickCount}}</td>
  <td>{{.DeviceType}}</td>
  <td>{{.OS}}</td>
  <td>{{.Browser}}</td>
  <td>{{.EngagementTime}}</td>
</tr>
{{end}}
</tbody>
</table>
</div>

<script>
const charts = {{.ChartsJSON}};
new Chart(document.getElementById("opens"), {type: charts.opens.type, data: charts.opens.data});
new Chart(document.getElementById("clicks"), {type: charts.clicks.type, data: charts.clicks.data});
new Chart(document.getElementById("devices"), {type: charts.devices.type, data: charts.devices.data,
  options: {scales: {y: {beginAtZero: true, ticks: {precision: 0}}}, plugins: {legend: {display: false}}}});
</script>
</body>
</html>
`
