package platform

import (
	"bytes"
	"encoding/xml"
	"path/filepath"
	"strings"
)

// toastXML returns the ToastGeneric document for m.
func (m Message) toastXML() string {
	var b bytes.Buffer
	text := func(s string) {
		b.WriteString("<text>")
		_ = xml.EscapeText(&b, []byte(s))
		b.WriteString("</text>")
	}
	b.WriteString(`<toast><visual><binding template="ToastGeneric">`)
	text(m.Title)
	text(m.Body)
	if m.Icon != "" {
		b.WriteString(`<image placement="hero" src="`)
		_ = xml.EscapeText(&b, []byte("file:///"+strings.TrimPrefix(filepath.ToSlash(m.Icon), "/")))
		b.WriteString(`"/>`)
	}
	b.WriteString(`</binding></visual></toast>`)
	return b.String()
}

// toastScript returns the PowerShell program that shows m as a toast.
func (m Message) toastScript() string {
	return `[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=WindowsRuntime] > $null; ` +
		`[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom, ContentType=WindowsRuntime] > $null; ` +
		`$xml = New-Object Windows.Data.Xml.Dom.XmlDocument; ` +
		`$xml.LoadXml(` + psQuote(m.toastXML()) + `); ` +
		`$toast = New-Object Windows.UI.Notifications.ToastNotification $xml; ` +
		`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(` + psQuote(AppName) + `).Show($toast)`
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
