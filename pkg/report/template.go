package report

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Heading}}{{if ne .Heading .Title}} - {{.Title}}{{end}}</title>
    <link rel="stylesheet" href="{{.Root}}style.css">
    <script src="{{.Root}}tree.js" defer></script>
</head>
<body>
<nav class="sidebar">
    <input class="tree-search" type="search" placeholder="Search" aria-label="Search packages and classes">
    {{.Tree}}
</nav>
<main>
    <h1>{{.Heading}}</h1>
    {{with .Node}}{{if .Coverage}}
    <p class="summary">Coverage <span class="badge {{badgeClass .Coverage}}">{{markup .Coverage}}</span></p>
    {{end}}{{end}}
    {{with .Class}}
    <section class="class-detail">
        <p class="summary">
            <code>{{.ID}}</code>, lines {{.StartLine}} to {{.EndLine}}.
            {{.Covered}} of {{.Total}} lines covered
            (<span class="{{colorClass .Pct}}">{{formatPct .Pct}}</span>),
            {{len .Tests}} tests: <span class="pass">{{.Pass}} passed</span>, <span class="fail">{{.Fail}} failed</span>.
        </p>
        {{if .Methods}}
        <h2>Methods</h2>
        <ul class="methods">
        {{range .Methods}}<li>lines {{.StartLine}} to {{.EndLine}}</li>{{end}}
        </ul>
        {{end}}
        {{if .Tests}}
        <h2>Tests</h2>
        <table class="tests">
            <thead><tr><th>Test</th><th>Result</th><th>Methods</th><th>Statements</th></tr></thead>
            <tbody>
            {{range .Tests}}
            <tr class="{{if .Pass}}pass{{else}}fail{{end}}" id="test-{{.ID}}">
                <td>{{.Name}}</td><td>{{if .Pass}}pass{{else}}fail{{end}}</td><td>{{.Methods}}</td><td>{{.Statements}}</td>
            </tr>
            {{end}}
            </tbody>
        </table>
        {{end}}
        {{if .Lines}}
        <h2>Lines</h2>
        <table class="lines">
            <tbody>
            {{range .Lines}}
            <tr class="{{if .Tests}}covered{{else}}uncovered{{end}}" id="L{{.Number}}">
                <td class="line-num">{{.Number}}</td><td class="line-tests">{{.Tests}}</td><td>{{.Names}}</td>
            </tr>
            {{end}}
            </tbody>
        </table>
        {{end}}
    </section>
    {{end}}
    <aside class="legend">
    {{range .Legends}}{{.}}{{end}}
    </aside>
    <footer>Generated {{.Generated}}</footer>
</main>
</body>
</html>
`

const styleCSS = `body { margin: 0; display: flex; font: 14px/1.4 system-ui, sans-serif; }
.sidebar { width: 360px; height: 100vh; overflow: hidden; border-right: 1px solid #ddd; position: relative; }
main { flex: 1; padding: 1em 2em; overflow: auto; height: 100vh; box-sizing: border-box; }
.package-tree { position: relative; height: calc(100% - 2.5em); overflow: hidden; outline: none; }
.package-tree:focus .node.selected > .row { outline: 1px dotted #4a6fa5; }
.tree-scroll { overflow-x: auto; overflow-y: auto; height: 100%; margin-right: 56px; }
.tree-root, .children { list-style: none; margin: 0; padding: 0; }
.hidden, .search-hidden { display: none; }
.row { white-space: nowrap; line-height: 22px; cursor: default; }
.row .arrow { display: inline-block; width: 1em; cursor: pointer; }
.row .icon { display: inline-block; width: 1em; }
.node.selected > .row { background: #dbe9ff; }
.node.hover > .row { background: #f2f2f2; }
.node.current > .row { font-weight: bold; }
.node.match > .row .label, .node.match > .row a { background: #fff3b0; }
.badge-strip { position: absolute; top: 0; right: 0; width: 56px; }
.badge-slot { height: 22px; line-height: 22px; text-align: right; padding-right: 4px; }
.no-results { padding: 1em; color: #888; }
.tree-search { width: calc(100% - 1em); margin: .5em; }
.excellent { color: #1a7f37; } .good { color: #4d9a1f; } .moderate { color: #b08800; }
.poor { color: #d1570f; } .critical { color: #cf222e; }
.pass { color: #1a7f37; } .fail { color: #cf222e; }
tr.uncovered { background: #fff0f0; } tr.covered { background: #f0fff4; }
.line-num { text-align: right; color: #888; padding-right: 1em; }
`
