package captcha

const (
	RecaptchaClientAPI = "https://www.google.com/recaptcha/api.js"
	RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
)

func NewRecaptcha(cfg Config, opts ...Option) *Adapter {
	return newAdapter(cfg, "g-recaptcha", RecaptchaClientAPI, RecaptchaVerifyURL, opts...)
}
