package service

import (
	"fmt"
	"html/template"
	"io"

	"tienda/models"
)

// paymentFormTemplate posts the hidden fields to the provider as soon as the page loads
var paymentFormTemplate = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting to payment</title></head>
<body onload="document.forms[0].submit()">
<form method="POST" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
</body>
</html>
`))

// FormRedirector renders the payment request as an auto-submitting HTML form
type FormRedirector struct{}

// NewFormRedirector creates a new FormRedirector
func NewFormRedirector() *FormRedirector {
	return &FormRedirector{}
}

// Ensure FormRedirector implements PaymentRedirector
var _ PaymentRedirector = (*FormRedirector)(nil)

// Redirect writes the form page to w
func (r *FormRedirector) Redirect(w io.Writer, req *models.PaymentRequest) error {
	data := struct {
		Action string
		Fields []models.FormField
	}{
		Action: req.Endpoint,
		Fields: req.FormFields(),
	}
	if err := paymentFormTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render payment form: %w", err)
	}
	return nil
}
