package notify

import (
	"fmt"
	"strings"
	"text/template"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(
	`Hi {{.ClientName}},

{{.CompanyLine}}Your onboarding is ready. Follow the link below to get started:

{{.PortalURL}}

The portal walks you through each step and saves your progress as you go.
{{if .DueDate}}
Please aim to finish by {{.DueDate}}.
{{end}}`))

var reminderTemplate = template.Must(template.New("reminder").Parse(
	`Hi {{.ClientName}},

Just a nudge: your onboarding is {{.Progress}}% done and waiting for you.

Pick up where you left off:

{{.PortalURL}}
{{if .DueDate}}
It is due by {{.DueDate}}.
{{end}}`))

var completionTemplate = template.Must(template.New("completion").Parse(
	`Hi {{.ClientName}},

You have completed every step of your onboarding. Nothing else is needed
from you right now; we will be in touch with next steps.

Thanks for getting everything in!`))

type templateData struct {
	ClientName  string
	CompanyLine string
	PortalURL   string
	Progress    int
	DueDate     string
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}

	return buf.String(), nil
}
