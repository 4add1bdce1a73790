package kdcpay

import (
	"html/template"
	"io"
)

var formTemplate = template.Must(template.New("kdcpay_form").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Redirecting to KDCpay</title></head>
<body>
<div id="tix">
  <form action="{{.Action}}" method="{{.Method}}" id="kdcpay_payment_form">
{{- range .Fields.Fields}}
    <input type="hidden" name="{{.Name}}" value="{{.Value}}" readonly="readonly" />
{{- end}}
    <input type="submit" value="Continue to KDCpay" />
    <a href="{{.CancelURL}}">Cancel</a>
    <script type="text/javascript">
      document.getElementById("kdcpay_payment_form").submit();
    </script>
  </form>
</div>
</body></html>
`))

// Render writes the auto-submitting HTML form for r.
func (r *CheckoutRequest) Render(w io.Writer) error {
	return formTemplate.Execute(w, r)
}
