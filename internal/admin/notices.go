package admin

import (
	"fmt"
	"html"
	"html/template"
)

type NoticeType string

const (
	NoticeSuccess NoticeType = "success"
	NoticeWarning NoticeType = "warning"
	NoticeError   NoticeType = "error"
	NoticeInfo    NoticeType = "info"
)

// Admin notice messages.
const (
	MsgNonceExpired     = "Nonce expired. Please refresh the page and try again."
	MsgSaveFailed       = "Unable to save the settings. Some internal error occurred. Please try again."
	MsgSaved            = "Settings were successfully Saved."
	MsgCommerceMissing  = "Please install and activate WooCommerce plugin to use Crypto Cart Lite by WPRobo."
	MsgGatewaySaved     = "Your settings have been saved."
	MsgGatewaySaveError = "Your settings have not been saved."
)

type Notice struct {
	Message     string
	Type        NoticeType
	Dismissible bool
}

func (n Notice) HTML() template.HTML {
	dismissible := ""
	if n.Dismissible {
		dismissible = "is-dismissible"
	}
	return template.HTML(fmt.Sprintf(
		`<div class="notice notice-%s %s"><p>%s</p></div>`,
		html.EscapeString(string(n.Type)),
		dismissible,
		html.EscapeString(n.Message),
	))
}

func errorNotice(msg string) Notice {
	return Notice{Message: msg, Type: NoticeError}
}

func warningNotice(msg string) Notice {
	return Notice{Message: msg, Type: NoticeWarning}
}

func successNotice(msg string) Notice {
	return Notice{Message: msg, Type: NoticeSuccess, Dismissible: true}
}
