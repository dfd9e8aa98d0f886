package report

// htmlTemplate is the single-page report layout. Styles are inlined so the
// file is self-contained and viewable offline.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Signal Box Cost Analysis Report</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  line-height: 1.6; color: #333;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  min-height: 100vh; padding: 20px;
}
.container {
  max-width: 1200px; margin: 0 auto; background: white;
  border-radius: 12px; box-shadow: 0 20px 40px rgba(0,0,0,0.1); overflow: hidden;
}
.report-header {
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
  color: white; padding: 40px; text-align: center;
}
.report-header h1 { font-size: 2.5rem; margin-bottom: 20px; font-weight: 700; }
.meta-info { display: flex; justify-content: center; gap: 30px; flex-wrap: wrap; font-size: 1.1rem; }
.meta-info span { background: rgba(255,255,255,0.2); padding: 8px 16px; border-radius: 20px; }
.section { padding: 40px; }
.section h2 {
  color: #2d3748; font-size: 1.8rem; margin-bottom: 20px;
  border-bottom: 3px solid #667eea; padding-bottom: 10px;
}
.executive-summary { background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); color: white; text-align: center; }
.metrics-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin-top: 30px; }
.metric-card { background: rgba(255,255,255,0.2); padding: 20px; border-radius: 12px; text-align: center; }
.metric-value { font-size: 2.5rem; font-weight: bold; margin-bottom: 5px; display: block; }
.metric-label { font-size: 0.9rem; opacity: 0.9; }
.savings-highlight { color: #48bb78; text-shadow: 1px 1px 2px rgba(0,0,0,0.1); }
table {
  width: 100%; border-collapse: collapse; margin: 20px 0; background: white;
  border-radius: 8px; overflow: hidden; box-shadow: 0 4px 6px rgba(0,0,0,0.1);
}
th { background: #667eea; color: white; padding: 15px; text-align: left; font-weight: 600; }
td { padding: 12px 15px; border-bottom: 1px solid #e2e8f0; }
tr:hover { background: #f7fafc; }
.total-row { font-weight: bold; background: #f7fafc; }
.calculation-box {
  background: #f7fafc; border: 1px solid #e2e8f0; border-radius: 6px; padding: 10px;
  font-family: 'SF Mono', Monaco, monospace; font-size: 0.85rem; white-space: pre-wrap; margin: 5px 0;
}
.optimization-badge {
  background: #48bb78; color: white; padding: 4px 8px; border-radius: 12px;
  font-size: 0.75rem; font-weight: 500; display: inline-block;
}
.assumptions { background: #fffbeb; border: 1px solid #f6e05e; border-radius: 8px; padding: 20px; margin: 20px 0; }
.assumptions h3 { color: #92400e; margin-bottom: 15px; }
.recommendations { background: #f0fff4; border: 1px solid #68d391; border-radius: 8px; padding: 20px; margin: 20px 0; }
.recommendations h3 { color: #2f855a; margin-bottom: 15px; }
.recommendation-item { background: white; border-left: 4px solid #48bb78; padding: 15px; margin: 10px 0; border-radius: 0 8px 8px 0; }
.report-footer { background: #2d3748; color: white; padding: 30px; text-align: center; }
.component-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(300px, 1fr)); gap: 20px; margin: 20px 0; }
.component-card { background: white; border: 1px solid #e2e8f0; border-radius: 8px; padding: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.05); }
.component-header { font-weight: 600; color: #2d3748; margin-bottom: 10px; font-size: 1.1rem; }
.component-meta { font-size: 0.9rem; color: #718096; margin-bottom: 10px; }
</style>
</head>
<body>
<div class="container">
<header class="report-header">
  <h1>Signal Box Cost Analysis Report</h1>
  <div class="meta-info">
    <span>Generated: {{.Generated}}</span>
    <span>Framework: <strong>{{.Framework}}</strong></span>
    {{if .Config.ShowConfidenceScores}}<span>Detection Confidence: <strong>{{.Run.Detection.Confidence}}</strong></span>{{end}}
  </div>
</header>

<section class="section executive-summary">
  <h2>Executive Summary</h2>
  <div class="metrics-grid">
    <div class="metric-card">
      <span class="metric-value savings-highlight">{{pct .Run.Workflow.SavingsPercent}}</span>
      <span class="metric-label">Cost Reduction</span>
    </div>
    <div class="metric-card">
      <span class="metric-value">{{usd .Run.Workflow.TotalOriginalCost}}</span>
      <span class="metric-label">Baseline Cost</span>
    </div>
    <div class="metric-card">
      <span class="metric-value">{{usd .Run.Workflow.TotalOptimizedCost}}</span>
      <span class="metric-label">Optimized Cost</span>
    </div>
    <div class="metric-card">
      <span class="metric-value savings-highlight">{{usd .Run.Workflow.TotalSavings}}</span>
      <span class="metric-label">Savings per Run</span>
    </div>
  </div>
  <p style="margin-top: 30px; font-size: 1.2rem;">
    Signal Box can reduce your AI costs by <strong>{{pct .Run.Workflow.SavingsPercent}}</strong>,
    saving <strong>{{usd .Run.Workflow.TotalSavings}}</strong> per workflow execution.
  </p>
</section>

{{if .Config.IncludeCalculations}}
<section class="section">
  <h2>Cost Breakdown</h2>

  <h3>Baseline Execution</h3>
  <table>
    <thead>
      <tr><th>Step</th><th>Component</th><th>Model</th><th>Tokens</th><th>Calculation</th><th>Cost</th></tr>
    </thead>
    <tbody>
      {{range $i, $calc := .Run.Workflow.OriginalCalculations}}
      <tr>
        <td>{{add1 $i}}</td>
        <td>{{$calc.Description}}</td>
        <td>{{$calc.Model}}</td>
        <td>{{$calc.InputTokens}} in / {{$calc.OutputTokens}} out</td>
        <td><div class="calculation-box">{{$calc.TotalCalculation}}</div></td>
        <td>{{usd $calc.TotalCost}}</td>
      </tr>
      {{end}}
      <tr class="total-row">
        <td colspan="3">TOTAL</td>
        <td>{{.BaselineTokens}}</td>
        <td></td>
        <td>{{usd .Run.Workflow.TotalOriginalCost}}</td>
      </tr>
    </tbody>
  </table>

  <h3>Optimized Execution</h3>
  <table>
    <thead>
      <tr><th>Step</th><th>Component</th><th>Optimization</th><th>Tokens</th><th>Calculation</th><th>Cost</th><th>Savings</th></tr>
    </thead>
    <tbody>
      {{range $i, $row := .OptimizedRows}}
      <tr>
        <td>{{add1 $i}}</td>
        <td>{{$row.Calc.Description}}</td>
        <td>{{if $row.Result}}<span class="optimization-badge">{{label $row.Result.Type}}</span>{{end}}</td>
        <td>{{$row.Calc.InputTokens}} in / {{$row.Calc.OutputTokens}} out</td>
        <td><div class="calculation-box">{{$row.Calc.TotalCalculation}}</div></td>
        <td>{{usd $row.Calc.TotalCost}}</td>
        <td>{{if $row.Result}}<span class="savings-highlight">{{usd $row.Result.Savings}}</span>{{else}}-{{end}}</td>
      </tr>
      {{end}}
      <tr class="total-row">
        <td colspan="3">TOTAL</td>
        <td>{{.OptimizedTokens}}</td>
        <td></td>
        <td>{{usd .Run.Workflow.TotalOptimizedCost}}</td>
        <td class="savings-highlight">{{usd .OptimizedSavings}}</td>
      </tr>
    </tbody>
  </table>
</section>

{{if .Run.Workflow.OptimizationResults}}
<section class="section">
  <h2>Optimization Details</h2>
  {{range .Run.Workflow.OptimizationResults}}
  <div class="optimization-detail">
    <h4>{{label .Type}}</h4>
    <p><strong>Savings:</strong> {{usd .Savings}} ({{pct .SavingsPercent}})</p>
    <p><strong>Explanation:</strong> {{.Explanation}}</p>
    <div class="calculation-box">{{.CalculationDetails}}</div>
  </div>
  {{end}}
</section>
{{end}}
{{end}}

<section class="section">
  <h2>Component Analysis</h2>
  <div class="component-grid">
    {{range .Run.Detection.Components}}
    <div class="component-card">
      <div class="component-header">{{.Name}}</div>
      <div class="component-meta">
        <strong>Type:</strong> {{.Type}}<br>
        <strong>Model:</strong> {{if .Model}}{{.Model}}{{else}}Not specified{{end}}<br>
        <strong>Tokens:</strong> {{.EstimatedTokens}}<br>
        <strong>Location:</strong> {{.FilePath}}:{{.LineNumber}}
      </div>
    </div>
    {{end}}
  </div>
</section>

{{if and .Config.IncludeRecommendations .Run.Workflow.Recommendations}}
<section class="section">
  <div class="recommendations">
    <h3>Implementation Recommendations</h3>
    {{range .Run.Workflow.Recommendations}}
    <div class="recommendation-item">{{.}}</div>
    {{end}}
  </div>
</section>
{{end}}

{{if .Config.IncludeAssumptions}}
<section class="section">
  <div class="assumptions">
    <h3>Assumptions &amp; Methodology</h3>
    <p>All calculations are based on transparent, conservative assumptions:</p>
    <h4>Key Assumptions</h4>
    <ul>
      <li><strong>Token Estimation:</strong> ~4 characters per token with operation-specific adjustments</li>
      <li><strong>Cache Hit Rate:</strong> Conservative 15% for semantic caching</li>
      <li><strong>Model Pricing:</strong> Current published rates from providers</li>
      <li><strong>Output Ratio:</strong> 30% of input tokens for typical operations</li>
    </ul>
    <h4>Optimization Strategies</h4>
    <ul>
      <li><strong>Smart Model Routing:</strong> Use efficient models for simple tasks</li>
      <li><strong>Semantic Caching:</strong> Cache similar queries based on vector similarity</li>
      <li><strong>Token Optimization:</strong> Compress prompts and reduce redundancy</li>
      <li><strong>Parallel Execution:</strong> Run independent operations concurrently</li>
    </ul>
    <p><strong>Note:</strong> Real-world savings may be higher with higher cache hit
    rates, more aggressive model substitution, and better prompt engineering.</p>
  </div>
</section>
{{end}}

<footer class="report-footer">
  <p>This report is fully auditable. All calculations, assumptions, and optimizations are transparent.</p>
  <p><strong>Signal Box</strong> - Enterprise AI Cost Optimization</p>
</footer>
</div>
</body>
</html>
`
