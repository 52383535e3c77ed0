package captcha

import (
	"html"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/session"
)

type Type string

const (
	Visible   Type = "visible"
	Invisible Type = "invisible"
)

const (
	defaultCacheSize   = 1024
	defaultOnLoadClass = "onloadCallBack"
)

var (
	ErrVerifyRequest  = errors.New("captcha verification request failed")
	ErrUnknownAdapter = errors.New("unknown captcha adapter")
)

type Config struct {
	SiteKey   string
	SecretKey string
	Type      Type
}

// Captcha renders a challenge widget and verifies the token a client sends
// back.
type Captcha interface {
	// Display renders the widget for the form with the given id.
	Display(formID string, attrs map[string]string) string
	// RenderJs renders the script tag loading the client API.
	RenderJs(lang string, callback bool, onLoadClass string) string
	JsLink(lang string, callback bool, onLoadClass string) string
	// VerifyResponse asks the provider whether response is a solved
	// challenge. HTTP calls go through the REST session s.
	VerifyResponse(s session.Session, response, clientIP string) (bool, error)
}

// New builds the adapter registered under name: "hcaptcha" or "recaptcha".
func New(name string, cfg Config, opts ...Option) (Captcha, error) {
	switch strings.ToLower(name) {
	case "hcaptcha":
		return NewHcaptcha(cfg, opts...), nil
	case "recaptcha":
		return NewRecaptcha(cfg, opts...), nil
	}
	return nil, errors.Wrap(ErrUnknownAdapter, name)
}

// sanitizeFormID strips characters that could break out of the generated
// script.
func sanitizeFormID(formID string) string {
	return strings.NewReplacer("-", "", "=", "", "'", "", `"`, "", "<", "", ">", "", "`", "").Replace(formID)
}

func buildAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = html.EscapeString(k) + `="` + html.EscapeString(attrs[k]) + `"`
	}
	return " " + strings.Join(parts, " ")
}

func jsLink(clientAPI, lang string, callback bool, onLoadClass string) string {
	params := url.Values{}
	if callback {
		if onLoadClass == "" {
			onLoadClass = defaultOnLoadClass
		}
		params.Set("render", "explicit")
		params.Set("onload", onLoadClass)
	}
	if lang != "" {
		params.Set("hl", lang)
	}
	if len(params) == 0 {
		return clientAPI
	}
	return clientAPI + "?" + params.Encode()
}
