package admin

import "html/template"

const layoutTmpl = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body class="wp-admin">
<div class="wrap ccp_page">
<h1>{{.Title}}</h1>
{{range .Notices}}{{.HTML}}{{end}}
{{if .Ready}}{{template "content" .}}{{end}}
</div>
</body>
</html>{{end}}`

const gatewaysTmpl = `{{define "content"}}<p class="description">{{.Description}}</p>
<h2>Enable the Crypto Payment Gateways</h2>
<div class="ccp-inner">
<form action="" method="post">
<div class="ccp_gateways_wrapper">
{{range .Gateways}}<div class="ccp-{{.Name}}-gateway">
<label for="ccp-{{.Name}}" class="{{if .Enabled}}ccp-enable{{end}}">
<strong class="description">Enable {{.Label}}</strong>
<span class="ccp-input-wrapper"><input type="checkbox" name="ccp-gateways[]" value="{{.Name}}" id="ccp-{{.Name}}" class="input-control"{{if .Enabled}} checked{{end}}></span>
</label>
{{if .SettingsURL}}<a href="{{.SettingsURL}}">Manage</a>{{end}}
</div>
{{end}}<input type="hidden" name="{{.NonceField}}" value="{{.Nonce}}">
<p class="submit"><input type="submit" name="submit" id="submit" class="button button-primary" value="Save Changes"></p>
</div>
</form>
</div>{{end}}`

const gatewaySettingsTmpl = `{{define "content"}}<h2>{{.MethodTitle}}</h2>
<form action="" method="post">
<table class="form-table">
{{range .Fields}}{{if eq .Type "title"}}<tr><th colspan="2"><h3>{{.Title}}</h3>{{if .Description}}<p>{{.Description}}</p>{{end}}</th></tr>
{{else}}<tr valign="top">
<th scope="row" class="titledesc"><label for="{{.Name}}">{{.Title}}</label></th>
<td class="forminp">
{{if eq .Type "checkbox"}}<label for="{{.Name}}"><input type="checkbox" name="{{.Name}}" id="{{.Name}}" value="1"{{if .Checked}} checked{{end}}> {{.Label}}</label>
{{else if eq .Type "textarea"}}<textarea name="{{.Name}}" id="{{.Name}}">{{.Value}}</textarea>
{{else if eq .Type "password"}}<input type="password" name="{{.Name}}" id="{{.Name}}" value="" autocomplete="off">
{{else}}<input type="text" name="{{.Name}}" id="{{.Name}}" value="{{.Value}}">
{{end}}{{if .Description}}<p class="description">{{.Description}}</p>{{end}}
</td>
</tr>
{{end}}{{end}}</table>
<input type="hidden" name="{{.NonceField}}" value="{{.Nonce}}">
<p class="submit"><input type="submit" name="save" class="button-primary" value="Save changes"></p>
</form>{{end}}`

var (
	gatewaysPage        = template.Must(template.Must(template.New("gateways").Parse(layoutTmpl)).Parse(gatewaysTmpl))
	gatewaySettingsPage = template.Must(template.Must(template.New("gateway_settings").Parse(layoutTmpl)).Parse(gatewaySettingsTmpl))
)

type page struct {
	Title   string
	Notices []Notice
	Ready   bool
}

type gatewayRow struct {
	Name        string
	Label       string
	Enabled     bool
	SettingsURL string
}

type gatewaysView struct {
	page
	Description string
	Gateways    []gatewayRow
	NonceField  string
	Nonce       string
}

type fieldView struct {
	Name        string
	Type        string
	Title       string
	Label       string
	Description string
	Value       string
	Checked     bool
}

type gatewaySettingsView struct {
	page
	MethodTitle string
	Fields      []fieldView
	NonceField  string
	Nonce       string
}
