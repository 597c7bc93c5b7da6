package sendleadnotification

import (
	"bytes"
	"fmt"
	"text/template"

	"cotiza-workers/internal/models"
)

type message struct {
	Subject string
	Body    string
}

var (
	customerSubject = template.Must(template.New("customer-subject").Parse(
		`Recibimos tu solicitud de cotización{{if .ProductName}}: {{.ProductName}}{{end}}`))
	customerBody = template.Must(template.New("customer-body").Parse(
		`Hola {{.Lead.CustomerName}},

Gracias por cotizar con nosotros. Un ejecutivo te contactará a la brevedad
para continuar con tu {{if eq .Lead.ProductKind "insurance"}}seguro{{else}}vehículo{{end}}{{if .ProductName}} {{.ProductName}}{{end}}.

Número de solicitud: {{.Lead.ID}}
`))
	salesSubject = template.Must(template.New("sales-subject").Parse(
		`Nuevo lead {{.Lead.ProductKind}} ({{.Lead.Score}} pts): {{.Lead.CustomerName}}`))
	salesBody = template.Must(template.New("sales-body").Parse(
		`Lead: {{.Lead.ID}}
Cliente: {{.Lead.CustomerName}}
Email: {{.Lead.Email}}
Teléfono: {{if .Lead.Phone}}{{.Lead.Phone}}{{else}}-{{end}}
RUT: {{if .Lead.RUT}}{{.Lead.RUT}}{{else}}-{{end}}
Producto: {{.Lead.ProductKind}} {{.Lead.ProductID}}{{if .ProductName}} ({{.ProductName}}){{end}}
Puntaje: {{.Lead.Score}}
`))
	smsBody = template.Must(template.New("sms").Parse(
		`Hola {{.Lead.CustomerName}}, recibimos tu cotización {{.Lead.ID}}. Te llamaremos pronto.`))
)

type templateData struct {
	Lead        models.Lead
	ProductName string
}

func render(subject, body *template.Template, data templateData) (message, error) {
	var s, b bytes.Buffer
	if subject != nil {
		if err := subject.Execute(&s, data); err != nil {
			return message{}, fmt.Errorf("render %s: %w", subject.Name(), err)
		}
	}
	if err := body.Execute(&b, data); err != nil {
		return message{}, fmt.Errorf("render %s: %w", body.Name(), err)
	}
	return message{Subject: s.String(), Body: b.String()}, nil
}
