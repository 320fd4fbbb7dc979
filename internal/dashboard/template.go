package dashboard

import (
	"html/template"

	"secagent/internal/store"
)

type homeData struct {
	Stats store.Stats
	Scans []store.ScanSummary
}

func riskClass(score float64) string {
	switch {
	case score <= 3:
		return "risk-low"
	case score <= 6:
		return "risk-medium"
	case score <= 8:
		return "risk-high"
	default:
		return "risk-critical"
	}
}

var homeTemplate = template.Must(template.New("home").Funcs(template.FuncMap{
	"riskClass": riskClass,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>secagent dashboard</title>
<style>
  body { font-family: sans-serif; margin: 2rem; color: #222; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #ddd; }
  .cards { display: flex; gap: 1rem; margin-bottom: 2rem; }
  .card { border: 1px solid #ddd; border-radius: 6px; padding: 1rem 1.5rem; }
  .card h2 { margin: 0; font-size: 1.8rem; }
  .card span { color: #666; font-size: 0.85rem; }
  .risk-low { color: #1a7f37; }
  .risk-medium { color: #9a6700; }
  .risk-high { color: #bc4c00; }
  .risk-critical { color: #cf222e; }
  .degraded { color: #9a6700; }
</style>
</head>
<body>
<h1>secagent dashboard</h1>

<div class="cards">
  <div class="card"><h2>{{.Stats.TotalScans}}</h2><span>total scans</span></div>
  <div class="card"><h2>{{printf "%.2f" .Stats.AverageRiskScore}}</h2><span>average risk score</span></div>
  <div class="card"><h2>{{.Stats.HighRiskScans}}</h2><span>high risk scans</span></div>
</div>

<h2>Recent scans</h2>
{{if .Scans}}
<table>
  <tr>
    <th>When</th><th>Project</th><th>Branch</th><th>Target</th>
    <th>Risk</th><th>Dependency vulns</th><th>Code issues</th><th></th>
  </tr>
  {{range .Scans}}
  <tr>
    <td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td>
    <td>{{.Project}}</td>
    <td>{{.Branch}}</td>
    <td><code>{{.Target}}</code></td>
    <td class="{{riskClass .RiskScore}}">{{printf "%.2f" .RiskScore}}</td>
    <td>{{.DependencyVulnerabilities}}</td>
    <td>{{.CodeIssues}}</td>
    <td>{{if .Degraded}}<span class="degraded">partial</span>{{end}}
        <a href="/api/scans/{{.ScanID}}">json</a></td>
  </tr>
  {{end}}
</table>
{{else}}
<p>No scans recorded yet. Run <code>secagent scan --save</code> first.</p>
{{end}}
</body>
</html>
`))
