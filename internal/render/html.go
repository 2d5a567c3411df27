package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
)

const pageTemplate = `<html><body>
<h2>Hello! This is the envreport page that {{ default "someone" .Name }} created.</h2>
<h3>This app is running in region [<b>{{ .Report.Region }}</b>]</h3>
{{- with .Report.Identity }}
{{- if .OK }}
{{- $id := index .Items 0 }}
<h3>My IAM User: [<b>{{ default "UNKNOWN" $id.Name }}</b>]</h3>
<ul>
<li><b>IAM user creation date:</b> {{ dateInZone "2006-01-02 15:04:05 MST" $id.CreatedAt "UTC" }}</li>
</ul>
{{- else }}
<h3 class="failure"><b>SDK request for IAM user details failed!</b> ({{ .Failure.Cause }})</h3>
{{- end }}
{{- end }}
{{- with .Report.Clusters }}
{{- if .OK }}
<h3>My ECS clusters ({{ len .Items }} in total)</h3>
{{- if .Items }}
<ul>
{{- range .Items }}
<li><b>name:</b> {{ .Name }} | <b>containers:</b> {{ .RegisteredContainerCount }} | <b>services:</b> {{ .ActiveServiceCount }} | <b>tasks:</b> {{ .RunningTaskCount }}</li>
{{- end }}
</ul>
{{- end }}
{{- else }}
<h3 class="failure"><b>SDK request for ECS cluster details failed!</b> ({{ .Failure.Cause }})</h3>
{{- end }}
{{- end }}
{{- with .Report.Buckets }}
{{- if .OK }}
<h3>My S3 buckets ({{ len .Items }} in total)</h3>
{{- if .Items }}
<ul>
{{- range .Items }}
<li><b>name:</b> {{ .Name }} | <b>creation date:</b> {{ dateInZone "2006-01-02 15:04:05 MST" .CreatedAt "UTC" }}</li>
{{- end }}
</ul>
{{- end }}
{{- else }}
<h3 class="failure"><b>SDK request for S3 buckets list failed!</b> ({{ .Failure.Cause }})</h3>
{{- end }}
{{- end }}
<h3>Files in my volume ({{ len .Files }} in total)</h3>
{{- if .Files }}
<ul>
{{- range .Files }}
<li><b>file path:</b> [{{ .Path }}] | <b>last modified:</b> {{ dateInZone "2006-01-02 15:04:05 MST" .ModTime "UTC" }} | <b>size:</b> {{ .Size }} | <b>is directory?:</b> {{ .IsDir }}</li>
{{- end }}
</ul>
{{- end }}
<p><small>report {{ .Report.ID }} collected {{ dateInZone "2006-01-02 15:04:05 MST" .Report.CollectedAt "UTC" }}</small></p>
</body></html>
`

var pageTmpl = template.Must(template.New("page").Funcs(sprig.FuncMap()).Parse(pageTemplate))

func renderHTML(out io.Writer, p *Page) error {
	if err := pageTmpl.Execute(out, p); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}
