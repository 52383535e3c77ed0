package captcha

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/krew-solutions/quantum-go/quantum/session"
	"github.com/krew-solutions/quantum-go/quantum/session/rest"
)

// Adapter talks to a siteverify style provider. hCaptcha and reCAPTCHA share
// the protocol and differ in endpoints and the widget class.
type Adapter struct {
	cfg         Config
	widgetClass string
	clientAPI   string
	verifyURL   string
	cacheSize   int
	verified    *lru.Cache[string, struct{}]
}

type Option func(*Adapter)

func WithVerifyURL(u string) Option {
	return func(a *Adapter) {
		a.verifyURL = u
	}
}

func WithClientAPI(u string) Option {
	return func(a *Adapter) {
		a.clientAPI = u
	}
}

// WithCacheSize bounds the number of remembered verified responses.
func WithCacheSize(n int) Option {
	return func(a *Adapter) {
		a.cacheSize = n
	}
}

func newAdapter(cfg Config, widgetClass, clientAPI, verifyURL string, opts ...Option) *Adapter {
	a := &Adapter{
		cfg:         cfg,
		widgetClass: widgetClass,
		clientAPI:   clientAPI,
		verifyURL:   verifyURL,
		cacheSize:   defaultCacheSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cacheSize < 1 {
		a.cacheSize = defaultCacheSize
	}
	// lru.New fails only for a non-positive size.
	a.verified, _ = lru.New[string, struct{}](a.cacheSize)
	return a
}

func (a *Adapter) Display(formID string, attrs map[string]string) string {
	switch Type(strings.ToLower(string(a.cfg.Type))) {
	case Visible:
		return a.visibleElement(attrs)
	case Invisible:
		return a.invisibleElement(formID)
	}
	return ""
}

func (a *Adapter) RenderJs(lang string, callback bool, onLoadClass string) string {
	return `<script src="` + a.JsLink(lang, callback, onLoadClass) + `" async defer></script>` + "\n"
}

func (a *Adapter) JsLink(lang string, callback bool, onLoadClass string) string {
	return jsLink(a.clientAPI, lang, callback, onLoadClass)
}

func (a *Adapter) VerifyResponse(s session.Session, response, clientIP string) (bool, error) {
	if response == "" {
		return false, nil
	}
	// A provider accepts a token only once, so verified tokens are remembered.
	if a.verified.Contains(response) {
		return true, nil
	}

	form := url.Values{}
	form.Set("secret", a.cfg.SecretKey)
	form.Set("response", response)
	if clientIP != "" {
		form.Set("remoteip", clientIP)
	}

	req, err := http.NewRequestWithContext(s.Context(), http.MethodPost, a.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, errors.Wrap(ErrVerifyRequest, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := rest.ExtractHttpClient(s).Do(req)
	if err != nil {
		return false, errors.Wrap(ErrVerifyRequest, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errors.Wrap(ErrVerifyRequest, err.Error())
	}
	if !gjson.ValidBytes(body) {
		return false, errors.Wrapf(ErrVerifyRequest, "invalid response body, status %d", resp.StatusCode)
	}

	if gjson.GetBytes(body, "success").Type != gjson.True {
		return false, nil
	}
	a.verified.Add(response, struct{}{})
	return true, nil
}

func (a *Adapter) visibleElement(attrs map[string]string) string {
	prepared := make(map[string]string, len(attrs)+2)
	for k, v := range attrs {
		prepared[k] = v
	}
	prepared["data-sitekey"] = a.cfg.SiteKey
	prepared["class"] = strings.TrimSpace(a.widgetClass + " " + prepared["class"])
	return "<div" + buildAttributes(prepared) + "></div>"
}

// invisibleElement binds the widget to the first button of the page. The
// callback name is derived from the sanitized form id, while the form itself
// is looked up by its id as given.
func (a *Adapter) invisibleElement(formID string) string {
	functionName := "onSubmit" + sanitizeFormID(formID)
	return fmt.Sprintf(`<script>
    document.addEventListener("DOMContentLoaded", function() {
        let button = document.getElementsByTagName("button");

        button[0].setAttribute("data-sitekey", "%s");
        button[0].setAttribute("data-callback", "%s");
        button[0].classList.add("%s");
    })

    function %s(){
        document.getElementById("%s").submit();
    }
</script>`, a.cfg.SiteKey, functionName, a.widgetClass, functionName, template.JSEscapeString(formID))
}
